// Package app wires together all dependencies and runs the storefront server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ErFjeldheim/haugalandsved/internal/auth"
	"github.com/ErFjeldheim/haugalandsved/internal/cache"
	"github.com/ErFjeldheim/haugalandsved/internal/config"
	"github.com/ErFjeldheim/haugalandsved/internal/event"
	handler "github.com/ErFjeldheim/haugalandsved/internal/handler/http"
	"github.com/ErFjeldheim/haugalandsved/internal/mail"
	"github.com/ErFjeldheim/haugalandsved/internal/payment"
	"github.com/ErFjeldheim/haugalandsved/internal/repository/record"
	"github.com/ErFjeldheim/haugalandsved/internal/service"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
	"github.com/ErFjeldheim/haugalandsved/pkg/health"
	"github.com/ErFjeldheim/haugalandsved/pkg/httpclient"
	pkgkafka "github.com/ErFjeldheim/haugalandsved/pkg/kafka"
	"github.com/ErFjeldheim/haugalandsved/pkg/tracing"
)

// App wires together all dependencies and runs the storefront server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	checkout       *service.Checkout
	producer       *pkgkafka.Producer
	redisClient    *redis.Client
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName:    "haugalandsved-storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Record store client behind a retrying HTTP client and circuit breaker.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})
	cbCfg := httpclient.DefaultCircuitBreakerConfig("record-store")
	cbCfg.MinRequests = cfg.CBMinRequests
	cbCfg.Timeout = cfg.CBTimeout
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)

	storeClient := store.New(cfg.StoreURL, cbClient)
	provider := record.NewProvider(storeClient, cfg.StoreAdminEmail, cfg.StoreAdminPassword, cfg.InventoryRecordID)
	logger.Info("record store client initialized", slog.String("url", cfg.StoreURL))

	// Optional Redis price cache.
	var redisClient *redis.Client
	var priceCache cache.PriceCache
	if cfg.CacheEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		priceCache = cache.NewRedisPriceCache(redisClient, cfg.PriceCacheTTL)
		logger.Info("price cache initialized", slog.String("addr", cfg.RedisAddr))
	}

	// Optional Kafka event producer.
	var producer *pkgkafka.Producer
	var events *event.Producer
	if cfg.EventsEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Optional SMTP notifications.
	var mailer mail.Sender
	if cfg.MailEnabled() {
		smtpSender, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:            cfg.SMTPHost,
			Port:            cfg.SMTPPort,
			Username:        cfg.SMTPUsername,
			Password:        cfg.SMTPPassword,
			From:            cfg.SMTPFrom,
			AdminRecipients: cfg.AdminEmails,
		})
		if err != nil {
			return nil, fmt.Errorf("init smtp sender: %w", err)
		}
		mailer = smtpSender
		logger.Info("smtp sender initialized", slog.String("host", cfg.SMTPHost))
	} else {
		logger.Warn("smtp not configured, order notifications disabled")
	}

	payments := payment.NewStripeProvider(cfg.StripeSecretKey)

	// Build the dependency graph.
	storefront := service.NewStorefront(provider, priceCache, logger)
	checkout := service.NewCheckout(
		provider,
		payments,
		storefront,
		mailer,
		events,
		logger,
		cfg.BaseURL,
		cfg.ReservationTTL,
	)

	authBridge := auth.NewBridge(storeClient, logger, cfg.IsProduction())
	authBridge.OnChange(func(ctx context.Context, previous, current auth.State) {
		if previous.Authenticated && !current.Authenticated {
			logger.InfoContext(ctx, "user session invalidated",
				slog.String("user_id", previous.User.ID))
		}
	})

	// Health checks.
	healthHandler := health.NewHandler()
	// The storefront keeps serving during a store outage (default prices,
	// fail-closed availability), so the record store does not gate readiness.
	healthHandler.RegisterNonCritical("record-store", func(ctx context.Context) error {
		return storeClient.Ping(ctx)
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := handler.NewRouter(handler.RouterConfig{
		Storefront:    storefront,
		Checkout:      checkout,
		AuthBridge:    authBridge,
		HealthHandler: healthHandler,
		Logger:        logger,
		BaseURL:       cfg.BaseURL,
		StaticDir:     cfg.StaticDir,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		checkout:       checkout,
		producer:       producer,
		redisClient:    redisClient,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the reservation sweeper and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.sweepReservations(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// sweepReservations periodically releases expired stock holds.
func (a *App) sweepReservations(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.ReservationSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := a.checkout.ReleaseExpired(sweepCtx); err != nil {
				a.logger.Warn("reservation sweep failed", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

// Shutdown gracefully stops all components: the HTTP server first so
// in-flight requests drain, then the tracer so their spans flush, then the
// messaging and cache connections.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d error(s): %w", len(errs), errors.Join(errs...))
	}

	a.logger.Info("shutdown complete")
	return nil
}
