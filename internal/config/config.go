package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultStationLookupURL = "https://aviationweather.gov/api/data/stationinfo"
	maxDecodeWorkers        = 64
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration
	DecodeWorkers      int

	// StationFile is a CSV station table; empty uses the built-in table.
	StationFile string

	// Remote station lookup for ids missing from the table.
	StationLookupEnabled bool
	StationLookupURL     string
	StationLookupTimeout time.Duration
	StationCacheSize     int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	lookupTimeoutStr := sharedcfg.EnvOrDefault("STATION_LOOKUP_TIMEOUT", "5s")
	lookupTimeout, err2 := time.ParseDuration(lookupTimeoutStr)
	if err2 != nil || lookupTimeout <= 0 {
		return nil, errors.New("invalid STATION_LOOKUP_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	workers, err := parseDecodeWorkers()
	if err != nil {
		return nil, err
	}

	lookupEnabled := false
	if v := os.Getenv("STATION_LOOKUP_ENABLED"); v != "" {
		lookupEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STATION_LOOKUP_ENABLED %q", v)
		}
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-metar-reports"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "decoded-observations"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "metar-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		DecodeWorkers:      workers,

		StationFile: os.Getenv("STATION_FILE"),

		StationLookupEnabled: lookupEnabled,
		StationLookupURL:     sharedcfg.EnvOrDefault("STATION_LOOKUP_URL", defaultStationLookupURL),
		StationLookupTimeout: lookupTimeout,
		StationCacheSize:     parseStationCacheSize(),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.StationLookupEnabled && cfg.StationLookupURL == "" {
		return nil, errors.New("STATION_LOOKUP_ENABLED is true but STATION_LOOKUP_URL is empty")
	}

	return cfg, nil
}

func parseDecodeWorkers() (int, error) {
	s := os.Getenv("DECODE_WORKERS")
	if s == "" {
		return 4, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxDecodeWorkers {
		return 0, fmt.Errorf("invalid DECODE_WORKERS %q: must be between 1 and %d", s, maxDecodeWorkers)
	}
	return n, nil
}

func parseStationCacheSize() int {
	if s := os.Getenv("STATION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
