package noaa

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Downloader fetches one province series as CSV text.
type Downloader interface {
	Download(ctx context.Context, provinceID, yearStart, yearEnd int) ([]byte, error)
}

// FetcherConfig controls which years are requested and how hard NOAA is hit.
type FetcherConfig struct {
	Dir         string
	YearStart   int
	YearEnd     int
	Rate        float64 // requests per second
	Concurrency int
	// Replace deletes a region's previously fetched files once its new file
	// is written, so the directory holds one file per region.
	Replace bool
}

// Fetcher writes one source file per catalog region into the data directory.
type Fetcher struct {
	client  Downloader
	catalog *domain.RegionCatalog
	cfg     FetcherConfig
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFetcher creates a Fetcher. Rate and Concurrency default to 1 when unset.
func NewFetcher(client Downloader, catalog *domain.RegionCatalog, cfg FetcherConfig, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Fetcher{
		client:  client,
		catalog: catalog,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
		logger:  logger,
		metrics: metrics,
	}
}

// FileName builds the source file name for a region. The region name lands in
// the third underscore-separated segment, which is where ingestion reads it.
func FileName(code int, region string, at time.Time) string {
	return fmt.Sprintf("vhi_%d_%s_%s.csv", code, region, at.Format("20060102150405"))
}

// FetchAll downloads every catalog region.
func (f *Fetcher) FetchAll(ctx context.Context) ([]string, error) {
	return f.Fetch(ctx, f.catalog.Regions()...)
}

// Fetch downloads the given regions concurrently and returns the written
// paths sorted by name. The first failure cancels outstanding downloads.
func (f *Fetcher) Fetch(ctx context.Context, regions ...domain.Region) ([]string, error) {
	if err := os.MkdirAll(f.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	stamp := domain.Now()
	paths := make([]string, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)
	for i, region := range regions {
		g.Go(func() error {
			path, err := f.fetchOne(gctx, region, stamp)
			if err != nil {
				return fmt.Errorf("fetch %s (%d): %w", region.Name, region.Code, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	f.logger.Info("noaa fetch complete", "directory", f.cfg.Dir, "files", len(paths))
	return paths, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, region domain.Region, stamp time.Time) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	body, err := f.client.Download(ctx, region.Code, f.cfg.YearStart, f.cfg.YearEnd)
	f.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		f.metrics.FetchRequests.WithLabelValues("error").Inc()
		return "", err
	}
	f.metrics.FetchRequests.WithLabelValues("success").Inc()

	name := FileName(region.Code, region.Name, stamp)
	path := filepath.Join(f.cfg.Dir, name)
	if err := writeFileAtomic(path, body); err != nil {
		return "", err
	}

	if f.cfg.Replace {
		if err := f.removeStale(region.Code, name); err != nil {
			return "", err
		}
	}

	f.logger.Info("noaa series saved",
		"region", region.Name,
		"province_id", region.Code,
		"file", name,
		"bytes", len(body),
	)
	return path, nil
}

// removeStale deletes earlier files of the same province, keeping keep.
func (f *Fetcher) removeStale(code int, keep string) error {
	pattern := fmt.Sprintf("vhi_%d_*.csv", code)
	matches, err := doublestar.Glob(os.DirFS(f.cfg.Dir), pattern)
	if err != nil {
		return fmt.Errorf("list previous files: %w", err)
	}
	for _, m := range matches {
		if m == keep {
			continue
		}
		if err := os.Remove(filepath.Join(f.cfg.Dir, m)); err != nil {
			return fmt.Errorf("remove previous file: %w", err)
		}
		f.logger.Debug("removed previous series", "file", m)
	}
	return nil
}

// writeFileAtomic writes through a temp file so a concurrent ingestion never
// sees a partial source file. The temp name does not match "*.csv".
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vhi-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
