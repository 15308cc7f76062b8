// Package dashboard evaluates the three dashboard tabs against the dataset
// held in a source directory.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	"github.com/google/uuid"
)

// DatasetLoader builds the dataset for a source directory.
type DatasetLoader interface {
	Load(ctx context.Context, dir string) (*domain.Dataset, error)
}

// cacheClearer is implemented by loaders that memoize datasets.
type cacheClearer interface {
	Clear()
}

// Snapshot describes the dataset a view was computed from.
type Snapshot struct {
	ID        uuid.UUID            `json:"id"`
	Directory string               `json:"directory"`
	LoadedAt  time.Time            `json:"loaded_at"`
	Rows      int                  `json:"rows"`
	Files     []domain.FileSummary `json:"files"`
}

// Service runs one synchronous evaluation pass per call: load (or reuse) the
// dataset, filter it and project the requested view.
type Service struct {
	loader  DatasetLoader
	dir     string
	catalog *domain.RegionCatalog
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// NewService creates a Service reading from dir.
func NewService(loader DatasetLoader, dir string, catalog *domain.RegionCatalog, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		loader:  loader,
		dir:     dir,
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
}

// Dataset returns the current dataset. Fatal ingestion errors propagate
// unchanged.
func (s *Service) Dataset(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.loader.Load(ctx, s.dir)
	if err != nil {
		return nil, err
	}
	s.ready.Store(true)
	return ds, nil
}

// Table returns the table tab: filtered, optionally sorted rows projected
// onto the selected indicator.
func (s *Service) Table(ctx context.Context, q domain.Query) ([]domain.TableRow, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	rows := domain.Table(domain.Filter(ds, q), q.Indicator)
	s.observe("table", q, len(rows))
	return rows, nil
}

// Weekly returns the line chart tab: one series per year.
func (s *Service) Weekly(ctx context.Context, q domain.Query) ([]domain.YearSeries, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	rows := domain.Filter(ds, q)
	s.observe("weekly", q, len(rows))
	return domain.WeeklySeries(rows, q.Indicator), nil
}

// Comparison returns the region comparison tab. Region and sort selection do
// not apply here.
func (s *Service) Comparison(ctx context.Context, q domain.Query) ([]domain.RegionBox, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	rows := domain.Compare(ds, q)
	s.observe("comparison", q, len(rows))
	return domain.BoxStats(rows, q.Indicator), nil
}

// Regions lists the catalog in code order.
func (s *Service) Regions() []domain.Region {
	return s.catalog.Regions()
}

// Snapshot describes the dataset currently served.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:        ds.ID,
		Directory: ds.Directory,
		LoadedAt:  ds.LoadedAt,
		Rows:      ds.Len(),
		Files:     ds.Files,
	}, nil
}

// ClearCache drops memoized datasets so the next call re-reads the directory.
// It reports false when the loader does not cache.
func (s *Service) ClearCache() bool {
	c, ok := s.loader.(cacheClearer)
	if !ok {
		return false
	}
	c.Clear()
	s.logger.Info("dataset cache cleared", "directory", s.dir)
	return true
}

// CheckReadiness returns nil once a dataset has been loaded successfully.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

func (s *Service) observe(view string, q domain.Query, rows int) {
	s.metrics.QueryRequests.WithLabelValues(view).Inc()
	s.metrics.QueryRows.Observe(float64(rows))
	s.logger.Debug("view evaluated",
		"view", view,
		"indicator", q.Indicator,
		"region", q.Region,
		"years", q.Years,
		"weeks", q.Weeks,
		"order", q.Order().String(),
		"rows", rows,
	)
}
