package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fitness-studio-site/internal/app"
	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/handler"
	"github.com/iliyamo/fitness-studio-site/internal/middleware"
	"github.com/iliyamo/fitness-studio-site/internal/payment"
	"github.com/iliyamo/fitness-studio-site/internal/queue"
	"github.com/iliyamo/fitness-studio-site/internal/repository"
	"github.com/iliyamo/fitness-studio-site/internal/router"
	"github.com/iliyamo/fitness-studio-site/internal/schedule"
	"github.com/iliyamo/fitness-studio-site/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable, caching and rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	store := repository.NewRecordStore(cfg.Airtable, client)
	if !cfg.Airtable.Configured() {
		logger.Warn("record store not configured")
	}
	purchases := repository.NewPurchaseRepo(store, cfg.Airtable.PurchasesTable)
	leads := repository.NewLeadRepo(store, cfg.Airtable.LeadsTable)
	exceptions := exceptionSource(cfg, store, rdb, logger)

	var calendar schedule.CalendarSource
	if cfg.Holidays.APIURL != "" {
		calendar = repository.NewHolidayRepo(cfg.Holidays, client, rdb, cfg.Cache.Prefix, 24*time.Hour)
	}
	slots := schedule.NewService(exceptions, calendar, logger.Named("schedule"))

	notifier, err := service.NewNotifier(cfg.Telegram, client, 0, logger.Named("telegram"))
	if err != nil {
		return err
	}
	if !notifier.Enabled() {
		logger.Warn("telegram notifications disabled")
	}
	crm := service.NewCRMForwarder(cfg.CRM, client, logger.Named("crm"))
	publisher := service.NewPublisher(cfg.Queue, logger)

	if cfg.LinkToken.Secret == "" {
		logger.Warn("LINK_TOKEN_SECRET not set, telegram link tokens will not be issued")
	}

	h := router.Handlers{
		Schedule: handler.NewScheduleHandler(slots),
		Payments: handler.NewPaymentHandler(payment.NewRobokassa(cfg.Robokassa), purchases, crm, notifier, publisher,
			cfg.LinkToken.Secret, cfg.LinkToken.TTL),
		Leads:   handler.NewLeadHandler(leads, crm, notifier, publisher),
		Support: handler.NewSupportHandler(service.NewSupportBot(cfg.SupportBot, client), notifier),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(logger))
	router.Register(e, h, cfg, rdb)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if cfg.Queue.ConsumerEnabled && cfg.Queue.Configured() {
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.LogDir, logger)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// exceptionSource returns nil when the record store or its exceptions table
// is not configured, so the schedule runs without exceptions instead of
// logging a failed fetch on every request.
func exceptionSource(cfg config.Config, store *repository.RecordStore, rdb *redis.Client, logger *zap.Logger) schedule.ExceptionSource {
	if !cfg.Airtable.Configured() || cfg.Airtable.ExceptionsTable == "" {
		return nil
	}
	return repository.NewExceptionRepo(store, cfg.Airtable.ExceptionsTable, rdb, cfg.Cache.Prefix, cfg.Cache.TTL, logger)
}
