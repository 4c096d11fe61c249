package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-studio-site/internal/config"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisCacheHit(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := config.CacheConfig{
		Enabled:              true,
		Methods:              map[string]bool{http.MethodGet: true},
		TTL:                  30 * time.Second,
		Prefix:               "fitsite",
		MaxBodyBytes:         1 << 20,
		StaleWhileRevalidate: time.Minute,
	}
	e := echo.New()
	n := 0
	e.GET("/schedule", func(c echo.Context) error {
		n++
		return c.JSON(http.StatusOK, echo.Map{"n": n})
	}, CacheControl(cfg.TTL, cfg.StaleWhileRevalidate), NewRedisCache(cfg, rdb))

	var bodies []string
	for i, want := range []string{"MISS", "HIT"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule?studioId=msk_elfit", nil))
		require.Equal(t, http.StatusOK, rec.Code, i)
		assert.Equal(t, want, rec.Header().Get("X-Cache"), i)
		assert.Equal(t, "public, s-maxage=30, stale-while-revalidate=60", rec.Header().Get(echo.HeaderCacheControl), i)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, 1, n)
	assert.JSONEq(t, `{"n":1}`, bodies[1])
	assert.Equal(t, bodies[0], bodies[1])

	// a different query is a different entry
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule?studioId=spb_hkc", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, n)
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "fitsite"}
	e := echo.New()
	n := 0
	e.GET("/schedule", func(c echo.Context) error {
		n++
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "studioId"})
	}, NewRedisCache(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, n)
}

func TestTokenBucketBlocksOverCapacity(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "fitsite:rl",
	}
	e := echo.New()
	e.POST("/leads", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/leads", nil)
		req.RemoteAddr = addr
		req.Header.Set("Accept-Language", "en")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < cfg.Capacity; i++ {
		rec := send("10.0.0.1:1000")
		require.Equal(t, http.StatusNoContent, rec.Code, i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := send("10.0.0.1:1000")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), "Too many requests")

	// other clients have their own bucket
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1000").Code)
}
