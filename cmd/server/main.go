// Package main provides the entry point for the value-finder API server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/edge-finder/internal/api"
	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/health"
	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/model"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/predictor"
	"github.com/yourusername/edge-finder/internal/repository"
	"github.com/yourusername/edge-finder/internal/scheduler"
	"github.com/yourusername/edge-finder/internal/service"
)

var errNoModels = errors.New("no trained models registered")

func main() {
	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Edge Finder API server starting")

	metrics.InitRegistry()

	// Initialize database and schema
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Audit trail
	var audit *logger.AuditLogger
	if cfg.Audit.Enabled {
		if cfg.Audit.Path != "" {
			audit, err = logger.NewFileAuditLogger(cfg.Audit.Path, logrus.InfoLevel)
			if err != nil {
				appLog.WithError(err).Fatal("Failed to open audit log")
			}
			defer audit.Close()
		} else {
			audit = logger.NewAuditLogger(appLog)
		}
	}

	// Odds providers
	factory := oddsfeed.NewFactory(appLog)
	providers, err := factory.NewProviders(cfg.OddsProviders)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize odds providers")
	}
	metrics.EnabledProviders.Set(float64(len(providers)))

	// Model registry and predictor
	registry, err := model.NewRegistry(cfg.Model.RegistryDir)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to open model registry")
	}
	metrics.RegisteredModels.Set(float64(len(registry.List())))

	pred := predictor.NewCachedPredictor(
		predictor.NewPredictor(registry, appLog),
		cfg.Model.PredictionCacheTTL(),
		cfg.Model.CacheMaxSize,
	)

	// Services
	recommendSvc := service.NewRecommendationService(
		providers, pred, repos, audit,
		cfg.Recommendation,
		providerCacheTTL(cfg),
		appLog,
	)
	historySvc := service.NewHistoryService(repos, audit, appLog)

	// Websocket hub for live odds, fed by an in-process polling scheduler
	hub := api.NewOddsHub(appLog)
	go hub.Run()

	ingestionSvc := service.NewIngestionService(providers, repos, appLog, cfg.Ingestion.BatchSize)
	ingestionSvc.SetQuoteSink(hub)

	sched := scheduler.NewScheduler(ingestionSvc, appLog)
	for name := range providers {
		if err := sched.ScheduleProviderPolling(cfg.Ingestion.PollingIntervalSeconds, name); err != nil {
			appLog.WithError(err).WithField("provider", name).Fatal("Failed to schedule provider polling")
		}
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start polling scheduler")
	}

	// Health server on its own port
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Logger:      appLog,
	})
	healthServer.AddDatabaseCheck(db)
	healthServer.AddCheck("models", func(ctx context.Context) error {
		if len(registry.List()) == 0 {
			return errNoModels
		}
		return nil
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// HTTP API
	router := api.NewRouter(api.RouterConfig{
		Recommend:   recommendSvc,
		History:     historySvc,
		Hub:         hub,
		Logger:      appLog,
		Server:      cfg.Server,
		Environment: cfg.App.Environment,
	})

	server := &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.WithField("address", cfg.Server.ListenAddress).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Fatal("HTTP server error")
		}
	}()

	healthServer.SetReady(true)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Error during HTTP server shutdown")
	}
	cancel()

	appLog.Info("Edge Finder API server shut down successfully")
}

// providerCacheTTL picks the shortest configured provider cache TTL so the
// recommendation odds cache never outlives any provider's own freshness
// window
func providerCacheTTL(cfg *config.Config) time.Duration {
	ttl := 30 * time.Second
	for _, p := range cfg.OddsProviders {
		if p.CacheTTLSecs > 0 {
			candidate := time.Duration(p.CacheTTLSecs) * time.Second
			if candidate < ttl {
				ttl = candidate
			}
		}
	}
	return ttl
}
