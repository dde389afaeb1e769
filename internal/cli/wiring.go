package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/spending-maps/internal/adapter/csvfile"
	"github.com/couchcryptid/spending-maps/internal/adapter/filestore"
	kafkaadapter "github.com/couchcryptid/spending-maps/internal/adapter/kafka"
	"github.com/couchcryptid/spending-maps/internal/adapter/mapbox"
	"github.com/couchcryptid/spending-maps/internal/boundary"
	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/observability"
	"github.com/couchcryptid/spending-maps/internal/pipeline"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// app is a fully wired pipeline plus the resources that must be closed
// with it.
type app struct {
	pipeline *pipeline.Pipeline
	kafka    *kafkaadapter.Writer
	logger   *slog.Logger
}

// newApp wires extract, map and load stages from cfg. Maps are written to
// outDir; regions are published to Kafka when it is enabled.
func newApp(ctx context.Context, cfg *config.Config, outDir string, metrics *observability.Metrics, logger *slog.Logger) (*app, error) {
	cache, err := boundary.NewCache(cfg.BoundaryCacheSize, metrics)
	if err != nil {
		return nil, err
	}

	var mapOpts []spendingmap.Option
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxStyle, cfg.MapboxTimeout, metrics, logger)
		if err := client.CheckStyle(ctx); err != nil {
			logger.Warn("mapbox basemap unavailable, using default tiles", "style", cfg.MapboxStyle, "error", err)
		} else {
			mapOpts = append(mapOpts, spendingmap.WithBasemap(client.Basemap()))
			logger.Info("mapbox basemap enabled", "style", cfg.MapboxStyle)
		}
	}

	a := &app{logger: logger}
	loaders := []pipeline.Loader{filestore.NewWriter(outDir, logger)}
	if cfg.KafkaEnabled {
		a.kafka = kafkaadapter.NewWriter(cfg, metrics, logger)
		loaders = append(loaders, a.kafka)
		logger.Info("kafka region sink enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	a.pipeline = pipeline.New(
		csvfile.NewReader(logger),
		pipeline.NewMapper(cache, logger, mapOpts...),
		loaders,
		logger,
		metrics,
		cfg.BuildConcurrency,
	)
	return a, nil
}

func (a *app) Close() error {
	if a.kafka == nil {
		return nil
	}
	if err := a.kafka.Close(); err != nil {
		return fmt.Errorf("kafka writer close: %w", err)
	}
	return nil
}
