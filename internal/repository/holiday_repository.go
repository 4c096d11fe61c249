package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/model"
)

const holidayService = "holidays"

// HolidayRepo fetches a year's production calendar from an isdayoff-style
// API that answers GET /api/getdata?year=YYYY with one digit per day.
type HolidayRepo struct {
	cfg    config.HolidaysConfig
	client *http.Client
	cache  jsonCache
}

// NewHolidayRepo constructs a HolidayRepo. rdb may be nil.
func NewHolidayRepo(cfg config.HolidaysConfig, client *http.Client, rdb *redis.Client, prefix string, ttl time.Duration) *HolidayRepo {
	if client == nil {
		client = http.DefaultClient
	}
	return &HolidayRepo{cfg: cfg, client: client, cache: newJSONCache(rdb, prefix+":holidays", ttl)}
}

// YearCalendar returns the calendar of one year.
func (r *HolidayRepo) YearCalendar(ctx context.Context, year int) (model.Calendar, error) {
	codes, err := r.dayCodes(ctx, year)
	if err != nil {
		return model.Calendar{}, err
	}
	return model.CalendarFromDayCodes(year, codes), nil
}

func (r *HolidayRepo) dayCodes(ctx context.Context, year int) (string, error) {
	if r.cfg.APIURL == "" {
		return "", apperr.ErrConfigMissing
	}
	key := strconv.Itoa(year)
	var codes string
	if r.cache.get(ctx, key, &codes) {
		return codes, nil
	}

	q := url.Values{}
	q.Set("year", key)
	if r.cfg.CountryCode != "" {
		q.Set("cc", r.cfg.CountryCode)
	}
	u := strings.TrimRight(r.cfg.APIURL, "/") + "/api/getdata?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("holidays: build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", apperr.Unreachable(holidayService, "getdata", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Unreachable(holidayService, "getdata", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.RequestFailed(holidayService, "getdata", resp.StatusCode, raw)
	}
	codes = strings.TrimSpace(string(raw))
	// A year has 365 or 366 days; anything else is an error payload.
	if len(codes) < 365 || strings.Trim(codes, "0123456789") != "" {
		return "", apperr.RequestFailed(holidayService, "getdata", resp.StatusCode, raw)
	}
	r.cache.set(ctx, key, codes)
	return codes, nil
}
