package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/vhi-dashboard/internal/config"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the adapter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces observation records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured observation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes a batch of one snapshot's observations
// in a single WriteMessages call. Keys hash by region so a region's weeks stay
// ordered within one partition.
func (w *Writer) LoadBatch(ctx context.Context, ds *domain.Dataset, batch []domain.Observation) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch))
	for i := range batch {
		msg, err := serializeToMessage(batch[i], ds)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("observations published", "count", len(msgs), "snapshot_id", ds.ID.String())
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey identifies one region-week: "region|year|week".
func MessageKey(o domain.Observation) string {
	return o.Region + "|" + strconv.Itoa(o.Year) + "|" + strconv.Itoa(o.Week)
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(o domain.Observation, ds *domain.Dataset) (kafkago.Message, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(o)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(o.Region)},
			{Key: "snapshot_id", Value: []byte(ds.ID.String())},
			{Key: "loaded_at", Value: []byte(ds.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
