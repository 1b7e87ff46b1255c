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

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/emssupply/docs/swagger"
	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/config"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/pkg/telemetry"
	agencyApi "github.com/ghuser/emssupply/services/agency/application/api"
	alertApi "github.com/ghuser/emssupply/services/alerts/application/api"
	catalogApi "github.com/ghuser/emssupply/services/catalog/application/api"
	identityApi "github.com/ghuser/emssupply/services/identity/application/api"
	identitySvcs "github.com/ghuser/emssupply/services/identity/application/services"
	ledgerApi "github.com/ghuser/emssupply/services/ledger/application/api"
)

const shutdownTimeout = 30 * time.Second

// @title						EMS Supply API
// @version					1.0
// @description				Multi-tenant inventory, ordering and alerting for EMS agencies.
// @license.name				MIT
// @license.url				https://opensource.org/licenses/MIT
// @host						localhost:8080
// @BasePath					/api/v1
// @schemes					http https
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	a, closeInfra, err := app.Bootstrap(ctx, cfg, log, app.Options{Forwarder: true})
	if err != nil {
		return err
	}
	defer closeInfra()

	if err := a.EventBus.StartForwarder(ctx); err != nil {
		return fmt.Errorf("start event forwarder: %w", err)
	}
	a.Tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	a.TokenStore = auth.NewRedisTokenStore(a.Redis.Client())

	serverCfg := httpx.ServerConfig{
		Addr:               cfg.HTTPAddr,
		IsDevelopment:      cfg.Environment == config.EnvDevelopment,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestsPerMinute:  cfg.RateLimitPerMinute,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		HandlerTimeout:     cfg.RequestTimeout,
	}
	r := httpx.NewRouter(
		serverCfg,
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)
	r.Get("/health", httpx.HealthHandler(2*time.Second,
		httpx.HealthCheck{Name: "database", Pinger: a.Db},
		httpx.HealthCheck{Name: "redis", Pinger: a.Redis},
		httpx.HealthCheck{Name: "event_bus", Pinger: a.EventBus},
	))
	r.Handle("/metrics", metricsHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api/v1", func(r chi.Router) {
		registerRoutes(r, a)
	})

	srv := httpx.NewServer(serverCfg, r)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// registerRoutes mounts all service routes under /api/v1. Only /auth is
// public; every other context sits behind bearer authentication.
func registerRoutes(r chi.Router, a *app.Application) {
	identity := identitySvcs.New(a)
	identityApi.AuthRoutes(r, identity, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a.Tokens, identity.Repo, a.Logger))
		identityApi.UserRoutes(r, identity, a.Logger)
		alertApi.AlertRoutes(r, a)
		agencyApi.AgencyRoutes(r, a)
		catalogApi.CatalogRoutes(r, a)
		ledgerApi.LedgerRoutes(r, a)
	})
}
