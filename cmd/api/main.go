// Package main is the entrypoint for the UTMKit API server.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/Alirezastar2/utmkit-sub000/internal/cache"
	"github.com/Alirezastar2/utmkit-sub000/internal/config"
	"github.com/Alirezastar2/utmkit-sub000/internal/enrich"
	"github.com/Alirezastar2/utmkit-sub000/internal/handler"
	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/realtime"
	"github.com/Alirezastar2/utmkit-sub000/internal/report"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
	"github.com/Alirezastar2/utmkit-sub000/internal/resolver"
	"github.com/Alirezastar2/utmkit-sub000/internal/server"
	"github.com/Alirezastar2/utmkit-sub000/internal/service"
	"github.com/Alirezastar2/utmkit-sub000/internal/shortcode"
	"github.com/Alirezastar2/utmkit-sub000/internal/webhook"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// The webhook repository uses database/sql for its delivery queue
	// (FOR UPDATE SKIP LOCKED batches), so it gets its own connection.
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open webhook database connection",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error(
			"failed to ping webhook database connection",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewInMemory()

	// Webhook delivery pipeline: dispatcher fans events into the
	// durable queue, the worker drains it in the background.
	webhookRepo := webhook.NewRepository(sqlDB)
	dispatcher := webhook.NewDispatcher(webhookRepo, logger)
	worker := webhook.NewWorker(webhookRepo, logger, metricsRecorder)
	worker.SetPollInterval(cfg.WebhookPollInterval)

	workerCtx, workerCancel := context.WithCancel(ctx)
	go func() {
		if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("webhook worker stopped", "error", err)
		}
	}()

	// Realtime fanout and click enrichment
	hub := realtime.NewHub(cacheClient.Client(), logger)
	geoClient := enrich.NewGeoClient(cfg.GeoIPEndpoint, cfg.GeoIPTimeout, logger)
	enricher := enrich.New(repo, geoClient, hub, dispatcher, logger, metricsRecorder)

	// Initialize services
	allocator := shortcode.NewAllocator(repo.ShortCodeExists, shortcode.DefaultLength)
	linkService := service.NewLinkService(repo, cacheClient, allocator, dispatcher, cfg.BaseURL, logger, metricsRecorder)
	linkResolver := resolver.New(linkService, repo, logger)

	// Scheduled report engine
	reportEngine := report.NewEngine(repo, dispatcher, logger, metricsRecorder)
	if err := reportEngine.Start(); err != nil {
		logger.Error("failed to start report engine", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	linkHandler := handler.NewLinkHandler(linkService, logger)
	redirectHandler := handler.NewRedirectHandler(linkResolver, enricher, cfg.BaseURL, logger, metricsRecorder)
	statsHandler := handler.NewStatsHandler(linkService, repo, logger)
	exportHandler := handler.NewExportHandler(linkService, repo, logger)
	realtimeHandler := handler.NewRealtimeHandler(linkService, repo, hub, cfg.HeartbeatInterval, logger, metricsRecorder)
	webhookHandler := handler.NewWebhookHandler(webhookRepo, logger)
	reportHandler := handler.NewReportHandler(repo, logger)

	// Setup router
	r := setupRouter(
		healthHandler,
		linkHandler,
		redirectHandler,
		statsHandler,
		exportHandler,
		realtimeHandler,
		webhookHandler,
		reportHandler,
		logger,
	)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("webhook worker", func(ctx context.Context) error {
		workerCancel()
		return nil
	})
	srv.OnShutdown("report engine", reportEngine.Stop)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	linkHandler *handler.LinkHandler,
	redirectHandler *handler.RedirectHandler,
	statsHandler *handler.StatsHandler,
	exportHandler *handler.ExportHandler,
	realtimeHandler *handler.RealtimeHandler,
	webhookHandler *handler.WebhookHandler,
	reportHandler *handler.ReportHandler,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Public redirect surface
	r.Get("/l/{shortCode}", redirectHandler.Redirect)
	r.Get("/link-expired", redirectHandler.LinkExpired)

	// API routes (require caller identity)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Route("/links", func(r chi.Router) {
			r.Get("/", linkHandler.List)
			r.Post("/", linkHandler.Create)
			r.Get("/{id}", linkHandler.Get)
			r.Patch("/{id}", linkHandler.Update)
			r.Delete("/{id}", linkHandler.Delete)

			r.Get("/{id}/stats", statsHandler.Stats)
			r.Get("/{id}/clicks", statsHandler.RecentClicks)
			r.Get("/{id}/export", exportHandler.Export)
			r.Get("/{id}/realtime", realtimeHandler.Stream)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", webhookHandler.List)
			r.Post("/", webhookHandler.Create)
			r.Get("/{id}", webhookHandler.Get)
			r.Patch("/{id}", webhookHandler.Update)
			r.Delete("/{id}", webhookHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.List)
			r.Post("/", reportHandler.Create)
			r.Get("/{id}", reportHandler.Get)
			r.Patch("/{id}", reportHandler.Update)
			r.Delete("/{id}", reportHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
