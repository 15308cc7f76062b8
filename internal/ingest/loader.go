package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
)

// DefaultPattern selects source files in the data directory.
const DefaultPattern = "*.csv"

// Loader turns a directory of per-region source files into a unified dataset.
// It holds no state between calls and does no caching.
type Loader struct {
	pattern string
	catalog *domain.RegionCatalog
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader matching file names against pattern (doublestar
// syntax, e.g. "*.csv").
func NewLoader(pattern string, catalog *domain.RegionCatalog, logger *slog.Logger, metrics *observability.Metrics) (*Loader, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid source pattern %q", pattern)
	}
	return &Loader{
		pattern: pattern,
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Load creates dir if needed, parses every matching file in listing order and
// concatenates the surviving rows. Any file-level failure aborts the call and
// no partial dataset is returned.
func (l *Loader) Load(ctx context.Context, dir string) (*domain.Dataset, error) {
	start := time.Now()
	l.metrics.IngestRuns.Inc()

	ds, err := l.load(ctx, dir)
	if err != nil {
		l.metrics.IngestErrors.Inc()
		l.logger.Error("ingest failed", "directory", dir, "error", err)
		return nil, err
	}

	l.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	l.metrics.DatasetRows.Set(float64(ds.Len()))
	l.logger.Info("dataset loaded",
		"directory", dir,
		"files", len(ds.Files),
		"rows", ds.Len(),
		"snapshot_id", ds.ID.String(),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (l *Loader) load(ctx context.Context, dir string) (*domain.Dataset, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	names, err := l.discover(dir)
	if err != nil {
		return nil, err
	}

	var rows []domain.Observation
	files := make([]domain.FileSummary, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, fileRows, err := l.loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", name, err)
		}
		files = append(files, summary)
		rows = append(rows, fileRows...)
	}
	if rows == nil {
		rows = []domain.Observation{}
	}

	return domain.NewDataset(dir, files, rows), nil
}

// discover lists matching regular files in directory-listing order.
func (l *Loader) discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list data directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(l.pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", e.Name(), err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *Loader) loadFile(path string) (domain.FileSummary, []domain.Observation, error) {
	name := filepath.Base(path)
	region, ok := RegionFromFilename(name)
	if !ok {
		l.metrics.MalformedFilenames.Inc()
		l.logger.Warn("source file name has no region segment, using file name as region",
			"file", name,
			"region", region,
		)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.FileSummary{}, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	res, err := Parse(f, region, l.catalog)
	if err != nil {
		return domain.FileSummary{}, nil, err
	}

	dropped := res.RowsRead - len(res.Rows)
	l.metrics.FilesIngested.Inc()
	l.metrics.RowsRead.Add(float64(res.RowsRead))
	l.metrics.RowsDropped.Add(float64(dropped))
	if dropped > 0 {
		l.logger.Debug("dropped non-numeric rows", "file", name, "dropped", dropped)
	}

	summary := domain.FileSummary{
		Name:     name,
		Region:   region,
		RowsRead: res.RowsRead,
		RowsKept: len(res.Rows),
	}
	if code, ok := l.catalog.Code(region); ok {
		summary.RegionID = &code
	}
	return summary, res.Rows, nil
}
