package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockLoader struct {
	batches  [][]domain.Observation
	failures int // fail this many calls before succeeding
	err      error
	calls    int
}

func (m *mockLoader) LoadBatch(_ context.Context, _ *domain.Dataset, batch []domain.Observation) error {
	m.calls++
	if m.calls <= m.failures {
		return m.err
	}
	m.batches = append(m.batches, batch)
	return nil
}

func newTestPipeline(l BatchLoader, batchSize int) (*Pipeline, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	p := New(l, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics, batchSize)
	p.backoff = time.Millisecond
	p.maxBackoff = 2 * time.Millisecond
	return p, metrics
}

func dataset(n int) *domain.Dataset {
	rows := make([]domain.Observation, n)
	for i := range rows {
		rows[i] = domain.Observation{Year: 2015, Week: i + 1, VHI: domain.Num(float64(i)), Region: "Kyiv"}
	}
	return domain.NewDataset("vhi_data", nil, rows)
}

// --- tests ---

func TestPipeline_Publish_Batches(t *testing.T) {
	ldr := &mockLoader{}
	p, metrics := newTestPipeline(ldr, 2)

	n, err := p.Publish(context.Background(), dataset(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.Len(t, ldr.batches, 3)
	assert.Len(t, ldr.batches[0], 2)
	assert.Len(t, ldr.batches[2], 1)
	assert.Equal(t, 5, ldr.batches[2][0].Week, "dataset order is preserved")
	assert.InDelta(t, 5.0, testutil.ToFloat64(metrics.RecordsPublished), 1e-9)
}

func TestPipeline_Publish_Empty(t *testing.T) {
	ldr := &mockLoader{}
	p, _ := newTestPipeline(ldr, 2)

	n, err := p.Publish(context.Background(), dataset(0))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, ldr.calls)
}

func TestPipeline_Publish_RetriesTransientFailure(t *testing.T) {
	ldr := &mockLoader{failures: 2, err: errors.New("leader not available")}
	p, _ := newTestPipeline(ldr, 10)

	n, err := p.Publish(context.Background(), dataset(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, ldr.calls)
}

func TestPipeline_Publish_GivesUp(t *testing.T) {
	boom := errors.New("broker down")
	ldr := &mockLoader{failures: 100, err: boom}
	p, metrics := newTestPipeline(ldr, 10)

	n, err := p.Publish(context.Background(), dataset(3))
	require.ErrorIs(t, err, boom)
	assert.Zero(t, n)
	assert.Equal(t, defaultAttempts, ldr.calls)
	assert.Zero(t, testutil.ToFloat64(metrics.RecordsPublished))
}

func TestPipeline_Publish_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{failures: 100, err: errors.New("broker down")}
	p, _ := newTestPipeline(ldr, 10)
	p.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Publish(ctx, dataset(3))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, ldr.calls)
}

func TestNew_DefaultBatchSize(t *testing.T) {
	p := New(&mockLoader{}, slog.Default(), observability.NewMetricsForTesting(), 0)
	assert.Equal(t, DefaultBatchSize, p.batchSize)
}
