package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Map building.
	JobsFile          string
	OutputDir         string
	GeoJSONPath       string
	BuildConcurrency  int
	BoundaryCacheSize int

	// Optional per-region Kafka sink.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	// Optional Mapbox basemap.
	MapboxToken   string
	MapboxStyle   string
	MapboxEnabled bool
	MapboxTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	concurrency, err := parseIntInRange("BUILD_CONCURRENCY", 4, 1, 16)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntInRange("BOUNDARY_CACHE_SIZE", 8, 1, 1024)
	if err != nil {
		return nil, err
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	kafkaEnabled := brokers != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		JobsFile:          sharedcfg.EnvOrDefault("JOBS_FILE", "jobs.yaml"),
		OutputDir:         sharedcfg.EnvOrDefault("OUTPUT_DIR", "maps"),
		GeoJSONPath:       sharedcfg.EnvOrDefault("GEOJSON_PATH", "us_congressional_districts.geojson"),
		BuildConcurrency:  concurrency,
		BoundaryCacheSize: cacheSize,

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "spending-regions"),
		KafkaEnabled: kafkaEnabled,

		MapboxToken:   mapboxToken,
		MapboxStyle:   sharedcfg.EnvOrDefault("MAPBOX_STYLE", "mapbox/light-v11"),
		MapboxEnabled: mapboxEnabled,
		MapboxTimeout: mapboxTimeout,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: %q (want %d-%d)", key, s, lo, hi)
	}
	return n, nil
}
