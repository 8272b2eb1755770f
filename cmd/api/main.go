package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/garage-auth/internal/api/http"
	"github.com/spec-kit/garage-auth/internal/api/http/handlers"
	"github.com/spec-kit/garage-auth/internal/auth"
	"github.com/spec-kit/garage-auth/internal/config"
	"github.com/spec-kit/garage-auth/internal/events"
	"github.com/spec-kit/garage-auth/internal/observability"
	"github.com/spec-kit/garage-auth/internal/persistence"
	"github.com/spec-kit/garage-auth/internal/ratelimit"
	"github.com/spec-kit/garage-auth/internal/repository"
	"github.com/spec-kit/garage-auth/internal/service"
	"github.com/spec-kit/garage-auth/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("garage_auth")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	userRepo := repository.NewUserRepository(pg.PoolHandle())

	var limiter *ratelimit.LoginLimiter
	if cfg.RateLimit.Enabled() {
		limiter = ratelimit.NewLoginLimiter(ratelimit.NewRedisCounter(redis.Client),
			cfg.RateLimit.MaxFailures, cfg.RateLimit.Window(), logger)
	}

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		Users:      userRepo,
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}
	logger.Info("token signing ready",
		zap.String("alg", authService.Codec().Algorithm()),
		zap.String("access_ttl", cfg.Auth.AccessTokenTTL),
		zap.String("refresh_ttl", cfg.Auth.RefreshTokenTTL),
		zap.Bool("enforce_token_use", cfg.Auth.EnforceTokenUse))

	cookies := auth.NewCookieManager(auth.CookieConfig{
		AccessName:  cfg.Cookie.AccessName,
		RefreshName: cfg.Cookie.RefreshName,
		Domain:      cfg.Cookie.Domain,
		Secure:      cfg.Cookie.Secure,
		SameSite:    cfg.Cookie.SameSite,
	}, nil)
	authenticator := auth.NewRequestAuthenticator(authService.Codec(), userRepo,
		auth.NewTokenResolver(cfg.Auth.HeaderPrefix, cfg.Cookie.AccessName), logger, metrics, cfg.Auth.EnforceTokenUse)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:          handlers.NewAuthHandler(authService, cookies, auth.NewTokenResolver(cfg.Auth.HeaderPrefix, cfg.Cookie.RefreshName)),
		Authenticator: authenticator,
		Metrics:       metrics,
	})

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
