package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/propdesk-ai-platform/cmd/mainconfig"
	"github.com/wolfman30/propdesk-ai-platform/internal/api/router"
	"github.com/wolfman30/propdesk-ai-platform/internal/app/bootstrap"
	"github.com/wolfman30/propdesk-ai-platform/internal/chatbot"
	appconfig "github.com/wolfman30/propdesk-ai-platform/internal/config"
	"github.com/wolfman30/propdesk-ai-platform/internal/events"
	httpmiddleware "github.com/wolfman30/propdesk-ai-platform/internal/http/middleware"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/propdesk-ai-platform/internal/webchat"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting propdesk-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"conversation_store", cfg.ConversationStore,
		"lead_store", cfg.LeadStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// No WriteTimeout: websocket connections stay open for the whole chat.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     svc.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// app is the assembled HTTP surface plus the resources it must release.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setupMetrics builds a private registry so tests can assemble several apps.
func setupMetrics() (http.Handler, *metrics.ChatbotMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.NewChatbotMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), chatMetrics
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	metricsHandler, chatMetrics := setupMetrics()
	checks := map[string]router.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.ConversationStore == bootstrap.StoreRedis {
		redisClient = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
		if redisClient != nil {
			a.closers = append(a.closers, func() { _ = redisClient.Close() })
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	var sqlDB *sql.DB
	if cfg.ConversationStore == bootstrap.StorePostgres {
		db, err := bootstrap.OpenSQLDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		sqlDB = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		checks["postgres"] = db.PingContext
	}

	var pool *pgxpool.Pool
	if cfg.LeadStore == bootstrap.StorePostgres {
		p, err := bootstrap.OpenPGXPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		pool = p
		a.closers = append(a.closers, p.Close)
		checks["leads_postgres"] = p.Ping
	}

	convStore, err := bootstrap.BuildConversationStore(cfg, redisClient, sqlDB, logger)
	if err != nil {
		return fail(err)
	}
	leadRepo, err := bootstrap.BuildLeadRepository(cfg, pool, logger)
	if err != nil {
		return fail(err)
	}

	var sesClient *sesv2.Client
	if cfg.EmailProvider == bootstrap.EmailSES {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fail(fmt.Errorf("load aws config: %w", err))
		}
		sesClient = mainconfig.NewSESClient(awsCfg, cfg)
	}
	sender, err := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	if err != nil {
		return fail(err)
	}
	emailNotifier, err := bootstrap.BuildLeadNotifier(cfg, sender, logger)
	if err != nil {
		return fail(err)
	}
	var notifier chatbot.LeadNotifier = emailNotifier
	if pool != nil {
		outbox := events.NewOutboxStore(pool)
		notifier = events.NewOutboxLeadNotifier(outbox)
		deliverer := events.NewDeliverer(outbox, events.NewLeadCreatedHandler(emailNotifier), logger).
			WithInterval(cfg.OutboxPollInterval)
		deliverCtx, cancel := context.WithCancel(ctx)
		a.closers = append(a.closers, cancel)
		go deliverer.Start(deliverCtx)
		logger.Info("lead notifications routed through outbox", "interval", cfg.OutboxPollInterval.String())
	}

	brands := chatbot.BrandCatalog{
		DefaultName:         cfg.BrandDefaultName,
		RentalsName:         cfg.BrandRentalsName,
		RentalsPathPrefixes: cfg.BrandRentalsPathPrefixes,
	}
	materializer := chatbot.NewMaterializer(leadRepo, notifier, chatMetrics, logger)
	chatService := chatbot.NewService(convStore, materializer, brands, chatMetrics, logger)

	var limiter *httpmiddleware.RateLimiter
	if cfg.ChatRateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.ChatRateLimitRPS, cfg.ChatRateLimitBurst)
		a.closers = append(a.closers, limiter.Stop)
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin routes disabled")
	}

	a.handler = router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadRepo, logger),
		WebChatHandler:     webchat.NewHandler(chatService, convStore, cfg.CORSAllowedOrigins, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRateLimiter:    limiter,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		ReadinessChecks:    checks,
	})
	return a, nil
}
