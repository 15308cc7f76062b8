// Package pipeline streams a loaded dataset snapshot to a downstream sink in
// batches.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
)

// BatchLoader writes multiple observations of one snapshot to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, ds *domain.Dataset, batch []domain.Observation) error
}

// Retry defaults: start at 200ms, double each retry, cap at 5s.
const (
	DefaultBatchSize  = 500
	defaultAttempts   = 5
	defaultBackoff    = 200 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
)

// Pipeline publishes snapshots batch by batch, retrying a failed batch with
// exponential backoff before giving up.
type Pipeline struct {
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
}

// New creates a Pipeline. A batchSize below 1 selects DefaultBatchSize.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		maxAttempts: defaultAttempts,
		backoff:     defaultBackoff,
		maxBackoff:  defaultMaxBackoff,
	}
}

// Publish writes every observation of ds in dataset order and returns how
// many were published. A batch that still fails after all retries stops the
// run; earlier batches stay published.
func (p *Pipeline) Publish(ctx context.Context, ds *domain.Dataset) (int, error) {
	start := time.Now()
	rows := ds.Rows()
	p.logger.Info("publish started", "snapshot_id", ds.ID.String(), "rows", len(rows), "batch_size", p.batchSize)

	published := 0
	for lo := 0; lo < len(rows); lo += p.batchSize {
		hi := min(lo+p.batchSize, len(rows))
		if err := p.loadWithRetry(ctx, ds, rows[lo:hi]); err != nil {
			p.logger.Error("publish failed", "snapshot_id", ds.ID.String(), "published", published, "error", err)
			return published, err
		}
		published += hi - lo
		p.metrics.RecordsPublished.Add(float64(hi - lo))
	}

	p.logger.Info("publish complete",
		"snapshot_id", ds.ID.String(),
		"published", published,
		"duration", time.Since(start),
	)
	return published, nil
}

func (p *Pipeline) loadWithRetry(ctx context.Context, ds *domain.Dataset, batch []domain.Observation) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, ds, batch); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == p.maxAttempts {
			break
		}
		p.logger.Warn("load batch failed, retrying",
			"error", err,
			"attempt", attempt,
			"backoff", backoff,
			"batch_size", len(batch),
		)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("load batch after %d attempts: %w", p.maxAttempts, err)
}
