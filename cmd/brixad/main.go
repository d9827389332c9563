package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	brixauth "github.com/Paurakh977/BRIXA-sub000"
	"github.com/Paurakh977/BRIXA-sub000/edge"
	"github.com/Paurakh977/BRIXA-sub000/handler"
	"github.com/Paurakh977/BRIXA-sub000/middleware"
	"github.com/Paurakh977/BRIXA-sub000/store/postgres"
)

type serverConfig struct {
	Addr          string        `env:"BRIXA_ADDR" env-default:":8080"`
	DatabaseURL   string        `env:"BRIXA_DATABASE_URL" env-required:"true"`
	RedisAddr     string        `env:"BRIXA_REDIS_ADDR"`
	AccessSecret  string        `env:"BRIXA_ACCESS_SECRET" env-required:"true"`
	RefreshSecret string        `env:"BRIXA_REFRESH_SECRET" env-required:"true"`
	Issuer        string        `env:"BRIXA_ISSUER" env-default:"brixa"`
	AccessTTL     time.Duration `env:"BRIXA_ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `env:"BRIXA_REFRESH_TTL" env-default:"168h"`
	CacheTTL      time.Duration `env:"BRIXA_CACHE_TTL" env-default:"5m"`
	SecureCookies bool          `env:"BRIXA_SECURE_COOKIES" env-default:"false"`
	Production    bool          `env:"BRIXA_PRODUCTION" env-default:"false"`
	Metrics       bool          `env:"BRIXA_METRICS" env-default:"true"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var cfg serverConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	authCfg := defaultedConfig(cfg)

	builder := brixauth.New().
		WithConfig(authCfg).
		WithStore(postgres.New(pool, logger)).
		WithMetricsEnabled(cfg.Metrics).
		WithLatencyHistograms(cfg.Metrics)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		defer rdb.Close()
		builder = builder.WithRedis(rdb)
	} else {
		logger.Warn("no redis configured, login and refresh throttling disabled")
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	// The edge verifier is constructed eagerly so a missing secret kills
	// the process at startup instead of surfacing as per-request 401s.
	verifier, err := edge.New([]byte(cfg.AccessSecret), authCfg.JWT.Leeway)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	authHandler := handler.NewAuthHandler(engine, authCfg.Cookie.RefreshName)
	adminHandler := handler.NewAdminHandler(engine)

	gate := middleware.EdgeGate(verifier, middleware.GateConfig{
		AccessCookieName: authCfg.Cookie.AccessName,
	})
	requireIdentity := middleware.RequireIdentity(engine)

	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/logout", authHandler.Logout, gate)
	e.GET("/auth/me", authHandler.Me, gate, requireIdentity)

	admin := e.Group("/admin", gate, requireIdentity, middleware.RequireRole("ADMIN"))
	admin.PUT("/users/:id/role", adminHandler.SetRole)
	admin.PUT("/users/:id/active", adminHandler.SetActive)
	admin.PUT("/users/:id/verified", adminHandler.MarkVerified)

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Addr)
	}()
	logger.Info("server started", "addr", cfg.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func defaultedConfig(cfg serverConfig) brixauth.Config {
	out := brixauth.DefaultConfig()
	out.JWT.AccessSecret = []byte(cfg.AccessSecret)
	out.JWT.RefreshSecret = []byte(cfg.RefreshSecret)
	out.JWT.AccessTTL = cfg.AccessTTL
	out.JWT.RefreshTTL = cfg.RefreshTTL
	out.JWT.Issuer = cfg.Issuer
	out.Cache.TTL = cfg.CacheTTL
	out.Cookie.Secure = cfg.SecureCookies
	out.Security.ProductionMode = cfg.Production
	return out
}
