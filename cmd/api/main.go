package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/shopmate/ingest/internal/auth"
	"github.com/shopmate/ingest/internal/config"
	"github.com/shopmate/ingest/internal/database"
	"github.com/shopmate/ingest/internal/events"
	ordershttp "github.com/shopmate/ingest/internal/orders/adapters/http"
	orderspostgres "github.com/shopmate/ingest/internal/orders/adapters/postgres"
	ordersapp "github.com/shopmate/ingest/internal/orders/app"
	ordersmetrics "github.com/shopmate/ingest/internal/orders/metrics"
	rawadapters "github.com/shopmate/ingest/internal/raworders/adapters"
	rawhttp "github.com/shopmate/ingest/internal/raworders/adapters/http"
	rawpostgres "github.com/shopmate/ingest/internal/raworders/adapters/postgres"
	rawapp "github.com/shopmate/ingest/internal/raworders/app"
	rawmetrics "github.com/shopmate/ingest/internal/raworders/metrics"
	"github.com/shopmate/ingest/internal/server"
	"github.com/shopmate/ingest/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))

	if cfg.UsesInsecureDefaults() {
		logger.Warn("running with development default secrets; set SECRET_KEY and WEBHOOK_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create database metrics: %w", err)
	}
	ingestMetrics, err := rawmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create raw order metrics: %w", err)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create order metrics: %w", err)
	}
	httpMetrics, err := server.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}

	authenticator := auth.New(auth.Config{
		Secret:        cfg.Auth.Secret,
		WebhookSecret: cfg.Auth.WebhookSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
	})

	passwordHash, err := authenticator.HashPassword(cfg.Auth.BootstrapPass)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	publisher := events.NewNoopPublisher()

	rawRepo := rawadapters.NewObservableRepository(rawpostgres.NewRepository(pool), dbMetrics)
	rawService := rawapp.NewService(rawRepo, publisher, logger, ingestMetrics)

	orderRepo := orderspostgres.NewRepository(pool)
	orderService := ordersapp.NewService(orderRepo, publisher, logger, orderMetrics)

	router := server.NewRouter(server.Deps{
		Auth: authenticator,
		Credentials: server.Credentials{
			Username:     cfg.Auth.BootstrapUser,
			PasswordHash: passwordHash,
		},
		RawOrders: rawhttp.NewHandler(rawService),
		Orders:    ordershttp.NewHandler(orderService),
		CheckHealth: func(ctx context.Context) error {
			return database.CheckHealth(ctx, pool)
		},
		Metrics: httpMetrics,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
