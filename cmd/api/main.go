// Package main is the entrypoint for the Mailgate API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mailgate/mailgate/internal/accesslog"
	"github.com/mailgate/mailgate/internal/cache"
	"github.com/mailgate/mailgate/internal/config"
	"github.com/mailgate/mailgate/internal/handler"
	"github.com/mailgate/mailgate/internal/identity"
	"github.com/mailgate/mailgate/internal/mailer"
	"github.com/mailgate/mailgate/internal/metrics"
	"github.com/mailgate/mailgate/internal/middleware"
	"github.com/mailgate/mailgate/internal/ratelimit"
	"github.com/mailgate/mailgate/internal/repository"
	"github.com/mailgate/mailgate/internal/server"
	"github.com/mailgate/mailgate/internal/service"
	"github.com/mailgate/mailgate/internal/token"
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

	// Initialize gate components
	validator, err := identity.NewValidator(cfg.AllowedDomain)
	if err != nil {
		logger.Error("invalid allowed domain", "error", err)
		os.Exit(1)
	}

	codec, err := token.NewCodec(cfg.SigningSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("invalid token configuration", "error", err)
		os.Exit(1)
	}

	notifier, err := mailer.NewSMTPMailer(cfg)
	if err != nil {
		logger.Error("invalid SMTP configuration", "error", err)
		os.Exit(1)
	}

	limiter := buildLimiter(cfg, cacheClient, logger)

	metricsRecorder := metrics.NewInMemory()

	// Access log pipeline: publish on the request path, persist in the
	// background worker.
	eventRepo := repository.NewAccessEventRepository(repo)
	publisher := accesslog.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	worker := accesslog.NewWorker(
		cacheClient.Client(),
		eventRepo,
		logger,
		"worker-"+uuid.New().String()[:8],
		metricsRecorder,
	)

	// Initialize services
	accessService := service.NewAccessService(
		validator,
		limiter,
		codec,
		notifier,
		publisher,
		cfg.BaseURL,
		logger,
		metricsRecorder,
	)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	gateHandler := handler.NewGateHandler(accessService, logger, cfg.DownstreamURL, cfg.RedirectDelay)
	statsHandler := handler.NewStatsHandler(eventRepo, logger)

	// Setup router
	r := setupRouter(h, healthHandler, gateHandler, statsHandler, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Start the access log worker and tie it into graceful shutdown.
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	go func() {
		if err := worker.Run(workerCtx); err != nil && err != context.Canceled {
			logger.Error("access log worker error", "error", err)
		}
	}()
	srv.OnShutdown("accesslog-worker", worker.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"allowed_domain", cfg.AllowedDomain,
		"rate_limit_backend", cfg.RateLimitBackend,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildLimiter selects the rate limiter backend from configuration.
func buildLimiter(cfg *config.Config, cacheClient *cache.Cache, logger *slog.Logger) ratelimit.Limiter {
	switch cfg.RateLimitBackend {
	case config.RateLimitBackendRedis:
		logger.Info("using Redis rate limiter", "request_limit", cfg.RequestLimit)
		return ratelimit.NewRedisLimiter(cacheClient.Client(), cfg.RequestLimit)
	default:
		logger.Info("using in-memory rate limiter", "request_limit", cfg.RequestLimit)
		return ratelimit.NewMemoryLimiter(cfg.RequestLimit)
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
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	gateHandler *handler.GateHandler,
	statsHandler *handler.StatsHandler,
	cfg *config.Config,
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

	// Gate flow: entry URL and access request form
	r.Get("/", gateHandler.Entry)
	r.Post("/request", gateHandler.Request)

	// Admin statistics (key auth, responds 404 when no key is configured)
	adminAuthCfg := middleware.AdminAuthConfig{
		Logger:  logger,
		KeyHash: cfg.AdminKeyHash,
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(adminAuthCfg))
		r.Get("/stats", statsHandler.Stats)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
