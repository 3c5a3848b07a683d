// Package main provides the entry point for the scheduled odds ingestion
// service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/health"
	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/oddsfeed"
	"github.com/yourusername/edge-finder/internal/repository"
	"github.com/yourusername/edge-finder/internal/scheduler"
	"github.com/yourusername/edge-finder/internal/service"
)

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
	}).Info("Edge Finder odds ingestion service starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database and schema
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

	// Odds providers
	factory := oddsfeed.NewFactory(appLog)
	providers, err := factory.NewProviders(cfg.OddsProviders)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize odds providers")
	}
	metrics.EnabledProviders.Set(float64(len(providers)))

	ingestionSvc := service.NewIngestionService(providers, repos, appLog, cfg.Ingestion.BatchSize)

	// Scheduler: one full sweep on the cron schedule, plus fast polling
	// per provider
	sched := scheduler.NewScheduler(ingestionSvc, appLog)
	if err := sched.ScheduleFullSync(cfg.Ingestion.Schedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule full sync")
	}
	for name := range providers {
		if err := sched.ScheduleProviderPolling(cfg.Ingestion.PollingIntervalSeconds, name); err != nil {
			appLog.WithError(err).WithField("provider", name).Fatal("Failed to schedule provider polling")
		}
	}

	// Health server
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name + "-ingestion",
		Logger:      appLog,
	})
	healthServer.AddDatabaseCheck(db)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := ":" + strconv.Itoa(cfg.Metrics.Port)
			appLog.WithField("address", addr).Info("Metrics server listening")
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// Run a first sweep immediately so fresh data is available on boot
	if _, err := ingestionSvc.IngestAll(ctx); err != nil {
		appLog.WithError(err).Warn("Initial ingestion sweep failed")
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)
	appLog.WithField("next_run", sched.GetNextRun()).Info("Ingestion scheduler running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}
	cancel()

	appLog.Info("Edge Finder odds ingestion service shut down successfully")
}
