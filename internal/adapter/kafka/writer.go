// Package kafka publishes per-region map results to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/domain"
	"github.com/couchcryptid/spending-maps/internal/observability"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// RegionRecord is the message value published for each mapped region.
type RegionRecord struct {
	Job         string    `json:"job"`
	Level       string    `json:"level"`
	JoinKey     string    `json:"join_key"`
	Value       float64   `json:"value"`
	FillColor   string    `json:"fill_color"`
	Formatted   string    `json:"formatted"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Writer produces one message per region to the configured topic.
// It implements pipeline.Loader.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured region topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Load publishes every region of res in a single WriteMessages call.
// Messages are keyed by join key so a region always lands on the same
// partition.
func (w *Writer) Load(ctx context.Context, job config.Job, res *spendingmap.Result) error {
	msgs, err := regionMessages(job, res)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish regions: %w", err)
	}
	w.metrics.RegionsPublished.Add(float64(len(msgs)))
	w.logger.Info("regions published", "job", job.Name, "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// regionMessages builds the messages for res in join-key order.
func regionMessages(job config.Job, res *spendingmap.Result) ([]kafkago.Message, error) {
	styles := res.Map.Styles()
	generatedAt := res.Map.GeneratedAt.UTC()

	keys := slices.Sorted(maps.Keys(res.Data))
	msgs := make([]kafkago.Message, 0, len(keys))
	for _, k := range keys {
		v := res.Data[k]
		fill := domain.ColorNoData
		if s, ok := styles[k]; ok {
			fill = s.FillColor
		}
		msg, err := serializeToMessage(RegionRecord{
			Job:         job.Name,
			Level:       string(job.Level),
			JoinKey:     k,
			Value:       v,
			FillColor:   fill,
			Formatted:   domain.FormatAmountShort(v),
			GeneratedAt: generatedAt,
		})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals a RegionRecord into a Kafka message.
func serializeToMessage(rec RegionRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize region record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.JoinKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "job", Value: []byte(rec.Job)},
			{Key: "level", Value: []byte(rec.Level)},
			{Key: "generated_at", Value: []byte(rec.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
