package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/handler"
	"github.com/iliyamo/fitness-studio-site/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Schedule *handler.ScheduleHandler
	Payments *handler.PaymentHandler
	Leads    *handler.LeadHandler
	Support  *handler.SupportHandler
}

// RegisterRoutes registers non-authenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo) {
	// used by load balancers and uptime monitors
	e.GET("/healthz", handler.Health)
}

// RegisterSchedule mounts the read-only catalogue endpoints. /schedule sits
// behind the Redis response cache and advertises shared-cache headers.
func RegisterSchedule(e *echo.Echo, s *handler.ScheduleHandler, cfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/studios", s.Studios)
	e.GET("/schedule", s.Schedule,
		middleware.CacheControl(cfg.TTL, cfg.StaleWhileRevalidate),
		middleware.NewRedisCache(cfg, rdb),
	)
}

// RegisterForms mounts the public POST endpoints behind the token bucket.
// The gateway callback is not rate limited: retries must always get through.
func RegisterForms(e *echo.Echo, h Handlers, rl config.RateLimitConfig, rdb *redis.Client) {
	limit := middleware.NewTokenBucket(rl, rdb)
	e.POST("/payments", h.Payments.Create, limit)
	e.POST("/payments/check", h.Payments.Check, limit)
	e.POST("/leads", h.Leads.Create, limit)
	e.POST("/support-chat", h.Support.Chat, limit)
	e.POST("/test-signup", h.Support.TestSignup, limit)

	e.Match([]string{http.MethodGet, http.MethodPost}, "/payments/webhook", h.Payments.Webhook)
}

// RegisterLink mounts the Telegram bot lookup, authenticated by the link
// token issued on payment confirmation.
func RegisterLink(e *echo.Echo, p *handler.PaymentHandler, linkSecret string) {
	e.GET("/payments/link", p.Link, middleware.LinkTokenAuth(linkSecret))
}

// Register wires every route.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	RegisterRoutes(e)
	RegisterSchedule(e, h.Schedule, cfg.Cache, rdb)
	RegisterForms(e, h, cfg.RateLimit, rdb)
	RegisterLink(e, h.Payments, cfg.LinkToken.Secret)
}
