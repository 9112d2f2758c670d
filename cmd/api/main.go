package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "medidocs/docs" // This is for Swagger
	"medidocs/internal/auth"
	"medidocs/internal/config"
	"medidocs/internal/email"
	"medidocs/internal/handlers"
	"medidocs/internal/logger"
	"medidocs/internal/middleware"
	"medidocs/internal/notify"
	"medidocs/internal/scheduler"
	"medidocs/internal/service"
)

// @title MediDocs API
// @version 1.0
// @description Document routing, approval and sharing workflow for hospital departments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@medidocs.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", logger.GetLevel(cfg.Log.Level),
		"store", cfg.Store.Backend,
		"signing", cfg.Signing.Backend,
	)

	ctx, cancel := getContext(60 * time.Second)
	defer cancel()

	// Persistence
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	if cfg.Store.SeedFile != "" {
		if err := seedDirectory(ctx, st.directory, cfg.Store.SeedFile); err != nil {
			return err
		}
	}

	checks := map[string]healthCheck{}
	if st.health != nil {
		checks["database"] = st.health
	}

	// Decision signing
	signer, signerHealth, err := newSigner(ctx, cfg)
	if err != nil {
		return err
	}
	if signerHealth != nil {
		checks["vault"] = signerHealth
	}

	// Redis for live notifications and shared rate limits
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = newRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("Failed to close redis client", "error", err)
			}
		}()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		slog.Info("Redis connection established", "addr", cfg.Redis.Address)
	}

	// Notifications
	emailService := email.NewService(&cfg.Email)
	var notifiers notify.Multi
	var emailNotifier *notify.EmailNotifier
	var redisNotifier *notify.RedisNotifier
	if emailService.Enabled() {
		emailNotifier = notify.NewEmailNotifier(emailService, st.directory)
		notifiers = append(notifiers, emailNotifier)
	} else {
		slog.Warn("Email notifications are disabled")
	}
	if redisClient != nil {
		redisNotifier = notify.NewRedisNotifier(redisClient, cfg.Redis.ChannelPrefix)
		notifiers = append(notifiers, redisNotifier)
	}

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	auditService := service.NewAuditService(st.audit, st.tx, service.SystemClock())
	submissionService := service.NewSubmissionService(st.submissions, st.directory, auditService, notifiers, signer, service.SystemClock())
	shareService := service.NewShareService(st.shares, st.directory, auditService, notifiers, service.SystemClock())
	inboxService := service.NewInboxService(submissionService, shareService)

	// Initialize scheduler
	var mailer scheduler.Mailer
	if emailService.Enabled() {
		mailer = emailService
	}
	sched := scheduler.NewScheduler(auditService, submissionService, st.directory, mailer, &cfg.Scheduler)
	sched.Start()
	defer sched.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, st.directory)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)

	var limiterStore middleware.LimiterStore
	if redisClient != nil {
		limiterStore = middleware.NewRedisLimiterStore(redisClient, cfg.Redis.ChannelPrefix, &cfg.RateLimit)
	} else {
		memoryLimiter := middleware.NewMemoryLimiterStore(&cfg.RateLimit)
		defer memoryLimiter.Close()
		limiterStore = memoryLimiter
	}
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, limiterStore)

	// Setup router
	router := (&api{
		authMw:      authMw,
		submissions: handlers.NewSubmissionHandler(submissionService),
		shares:      handlers.NewShareHandler(shareService),
		inbox:       handlers.NewInboxHandler(inboxService),
		audit:       handlers.NewAuditHandler(auditService),
		checks:      checks,
		version:     cfg.App.Version,
	}).routes()

	// Apply global middleware
	handler := middleware.SecurityHeaders(
		corsMw.Handler(
			rateLimiter.Limit(
				middleware.LoggingMiddleware(router),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	slog.Info("Server shutting down")

	shutdownCtx, shutdownCancel := getContext(30 * time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// queued notifications go out before the stores close
	if emailNotifier != nil {
		emailNotifier.Wait()
	}
	if redisNotifier != nil {
		redisNotifier.Wait()
	}

	slog.Info("Server stopped")
	return nil
}
