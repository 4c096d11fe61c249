package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// jsonCache keeps short-lived JSON copies of read-mostly upstream data in
// Redis. A nil client or non-positive TTL turns every call into a miss.
type jsonCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func newJSONCache(rdb *redis.Client, prefix string, ttl time.Duration) jsonCache {
	return jsonCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c jsonCache) enabled() bool { return c.rdb != nil && c.ttl > 0 }

// get decodes the cached value into out and reports whether it was found.
// Redis errors are treated as misses.
func (c jsonCache) get(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	bs, err := c.rdb.Get(ctx, c.prefix+":"+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, out) == nil
}

func (c jsonCache) set(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.SetEx(ctx, c.prefix+":"+key, bs, c.ttl).Err()
}
