package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/handler"
	"github.com/iliyamo/fitness-studio-site/internal/payment"
	"github.com/iliyamo/fitness-studio-site/internal/repository"
	"github.com/iliyamo/fitness-studio-site/internal/schedule"
	"github.com/iliyamo/fitness-studio-site/internal/utils"
)

// newTestServer wires the routes against unconfigured upstreams and no Redis.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Config{
		Cache:     config.CacheConfig{Enabled: true, TTL: 30 * time.Second, StaleWhileRevalidate: time.Minute},
		RateLimit: config.RateLimitConfig{Enabled: true},
		LinkToken: config.LinkTokenConfig{Secret: "link-secret", TTL: time.Hour},
	}
	store := repository.NewRecordStore(cfg.Airtable, nil)
	purchases := repository.NewPurchaseRepo(store, "")
	h := Handlers{
		Schedule: handler.NewScheduleHandler(schedule.NewService(nil, nil, nil)),
		Payments: handler.NewPaymentHandler(payment.NewRobokassa(cfg.Robokassa), purchases, nil, nil, nil, cfg.LinkToken.Secret, cfg.LinkToken.TTL),
		Leads:    handler.NewLeadHandler(repository.NewLeadRepo(store, ""), nil, nil, nil),
		Support:  handler.NewSupportHandler(nil, nil),
	}
	e := echo.New()
	Register(e, h, cfg, nil)
	return e
}

func do(e *echo.Echo, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRegistered(t *testing.T) {
	e := newTestServer(t)

	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /studios",
		"GET /schedule",
		"POST /payments",
		"POST /payments/check",
		"GET /payments/webhook",
		"POST /payments/webhook",
		"GET /payments/link",
		"POST /leads",
		"POST /support-chat",
		"POST /test-signup",
	} {
		assert.True(t, got[want], want)
	}
}

func TestScheduleSetsCacheControl(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/schedule?studioId=msk_elfit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, s-maxage=30, stale-while-revalidate=60", rec.Header().Get(echo.HeaderCacheControl))

	rec = do(e, http.MethodGet, "/schedule", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderCacheControl))
}

func TestWebhookFailsClosedWithoutSecrets(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/payments/webhook?OutSum=10.00&InvId=1&SignatureValue=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad signature", rec.Body.String())
}

func TestLinkRequiresToken(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/payments/link", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/payments/link", "", echo.HeaderAuthorization, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewLinkToken("link-secret", "42", time.Hour, time.Now())
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/payments/link", "", echo.HeaderAuthorization, "Bearer "+tok)
	// authenticated; the unconfigured record store fails the lookup
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLeadsWithoutStore(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/leads",
		`{"fullName":"A","phone":"1","city":"Москва","studio":"msk_elfit"}`,
		echo.HeaderContentType, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
