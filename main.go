package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/config"
	"github.com/ascot-inc/intake-hub/pkg/crypto"
	"github.com/ascot-inc/intake-hub/pkg/database"
	"github.com/ascot-inc/intake-hub/pkg/handlers"
	"github.com/ascot-inc/intake-hub/pkg/metrics"
	"github.com/ascot-inc/intake-hub/pkg/middleware"
	"github.com/ascot-inc/intake-hub/pkg/providers"
	"github.com/ascot-inc/intake-hub/pkg/repositories"
	"github.com/ascot-inc/intake-hub/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

const betfairCertLoginURL = "https://identitysso-cert.betfair.com/api/certlogin"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Host),
		zap.Duration("upstream_timeout", cfg.Intake.UpstreamTimeout()),
		zap.Duration("monitor_interval", cfg.Monitor.Interval()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	cipher, err := crypto.NewTokenCipher(cfg.CredentialsKey)
	if err != nil {
		logger.Fatal("Failed to initialize credential cipher", zap.Error(err))
	}

	// Repositories
	providerRepo := repositories.NewProviderRepository(db)
	credentialRepo := repositories.NewCredentialRepository(db)
	rawRepo := repositories.NewRawRecordRepository(db)
	normalizedRepo := repositories.NewNormalizedRecordRepository(db)

	// Services
	providerService := services.NewProviderService(providerRepo, logger)
	credentialService := services.NewCredentialService(credentialRepo, cipher, logger)

	httpClient := &http.Client{Timeout: cfg.Intake.UpstreamTimeout()}
	session := providers.NewSessionService(credentialService, betfairCertLoginURL, cfg.Intake.UpstreamTimeout(), logger)

	registry := providers.NewRegistry(providerRepo,
		providers.NewBetfairAdapter(credentialService, session, httpClient, ""),
		providers.NewSportradarAdapter(credentialService, httpClient, ""),
		providers.NewRacingAPIAdapter(credentialService, httpClient, ""),
		providers.NewPodiumAdapter(credentialService, httpClient, ""),
	)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	normalizer := services.NewNormalizationService(normalizedRepo, logger)
	intake := services.NewIntakeService(registry, rawRepo, normalizer, nil, m, logger)
	monitor := services.NewMonitor(registry, cfg.Monitor.Interval(), m, logger)
	go monitor.Start(ctx)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewProviderHandler(providerService, logger).RegisterRoutes(mux)
	handlers.NewCredentialHandler(credentialService, logger).RegisterRoutes(mux)
	handlers.NewIntakeHandler(intake, logger).RegisterRoutes(mux)
	handlers.NewMonitorHandler(monitor, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting intake-hub",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.MigrationsPath, logger)
}
