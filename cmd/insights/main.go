package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/courseloop/insights/internal/catalog/sqldb"
	"github.com/courseloop/insights/internal/config"
	"github.com/courseloop/insights/internal/eventstore"
	"github.com/courseloop/insights/internal/eventstore/badgerdb"
	"github.com/courseloop/insights/internal/orchestrator"
	"github.com/courseloop/insights/internal/server"
	"github.com/courseloop/insights/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "insights.yaml", "path to the yaml config file")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("courseloop-insights", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	catalog, err := sqldb.New(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalog.Close()

	store, err := badgerdb.Open(badgerdb.Config{
		Path:     cfg.Events.Path,
		InMemory: cfg.Events.InMemory,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to open event store: %v", err)
	}
	defer store.Close()

	var clientOpts []eventstore.Option
	if cfg.Events.FanOut > 0 {
		clientOpts = append(clientOpts, eventstore.WithFanOut(cfg.Events.FanOut))
	}
	if cfg.Events.PageSize > 0 {
		clientOpts = append(clientOpts, eventstore.WithPageSize(cfg.Events.PageSize))
	}
	events := eventstore.NewClient(store, logger, clientOpts...)

	orch := orchestrator.New(catalog, events, logger, orchestrator.Options{
		MaxWindow:  time.Duration(cfg.Analytics.MaxWindowDays) * 24 * time.Hour,
		MaxRecords: cfg.Analytics.MaxRecords,
	})

	srv := server.New(cfg.Server.Port, logger, orch,
		time.Duration(cfg.Server.RequestTimeoutSeconds)*time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-sigChan:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
