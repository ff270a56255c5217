package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/metar-etl/internal/adapter/awc"
	httpadapter "github.com/couchcryptid/metar-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/metar-etl/internal/adapter/kafka"
	"github.com/couchcryptid/metar-etl/internal/adapter/stations"
	"github.com/couchcryptid/metar-etl/internal/config"
	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
	"github.com/couchcryptid/metar-etl/internal/pipeline"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table, err := loadStations(cfg.StationFile)
	if err != nil {
		logger.Error("failed to load station table", "error", err)
		os.Exit(1)
	}
	metrics.StationTableSize.Set(float64(len(table)))
	logger.Info("station table loaded", "stations", len(table), "file", cfg.StationFile)

	// Remote station lookup for ids missing from the table (STATION_LOOKUP_ENABLED).
	var resolver domain.StationResolver
	if cfg.StationLookupEnabled {
		client := awc.NewClient(cfg.StationLookupURL, cfg.StationLookupTimeout, metrics, logger)
		resolver = awc.NewCachedResolver(client, cfg.StationCacheSize, metrics)
		metrics.StationLookupEnabled.Set(1)
		logger.Info("station lookup enabled", "url", cfg.StationLookupURL, "cache_size", cfg.StationCacheSize, "timeout", cfg.StationLookupTimeout)
	} else {
		logger.Info("station lookup disabled")
	}

	decoder := domain.NewDecoder(table, nil)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(decoder, resolver, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize, cfg.DecodeWorkers)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, decoder, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func loadStations(path string) (domain.StationTable, error) {
	if path == "" {
		return stations.Default()
	}
	return stations.LoadFile(path)
}
