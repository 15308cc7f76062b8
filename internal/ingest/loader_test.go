package ingest_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/ingest"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "meta line\nyear,week, SMN,SMT,VCI,TCI, VHI\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoader(t *testing.T) (*ingest.Loader, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	l, err := ingest.NewLoader("*.csv", domain.Catalog, discardLogger(), metrics)
	require.NoError(t, err)
	return l, metrics
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoader_EndToEndKyivOdessa(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_11_Kyiv_20240501.csv", header+"2015,5,0.05,260.1,40.0,50.0,45.2,\n")
	writeFile(t, dir, "vhi_17_Odessa_20240501.csv", header+"2015,5,0.05,260.1,40.0,50.0,45.2,\n")

	l, _ := newLoader(t)
	ds, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	q := domain.Query{
		Indicator: domain.VHI,
		Region:    "Kyiv",
		Years:     domain.Range{From: 2015, To: 2015},
		Weeks:     domain.Range{From: 1, To: 10},
	}
	got := domain.Filter(ds, q)
	require.Len(t, got, 1)

	row := got[0]
	assert.Equal(t, 2015, row.Year)
	assert.Equal(t, 5, row.Week)
	assert.Equal(t, "Kyiv", row.Region)
	require.NotNil(t, row.RegionID)
	assert.Equal(t, 11, *row.RegionID)
	assert.InDelta(t, 45.2, row.VHI.Number, 1e-9)
}

func TestLoader_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_11_Kyiv_1.csv", header+"2015,5,0,0,N/A,1,45.2,\n2015,6,0,0,3,1,N/A,\n")
	writeFile(t, dir, "vhi_18_Poltava_1.csv", header+"2016,1,0,0,3,1,12,\n")

	l, _ := newLoader(t)
	first, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	second, err := l.Load(context.Background(), dir)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Rows(), second.Rows()); diff != "" {
		t.Fatalf("rows differ between loads (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Files, second.Files); diff != "" {
		t.Fatalf("file summaries differ (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, first.ID, second.ID, "each load is a new snapshot")
}

func TestLoader_ConcatenatesInListingOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_18_Poltava_1.csv", header+"2016,1,0,0,0,0,3\n2016,2,0,0,0,0,4\n")
	writeFile(t, dir, "vhi_11_Kyiv_1.csv", header+"2015,1,0,0,0,0,1\n2015,2,0,0,0,0,2\n")

	l, _ := newLoader(t)
	ds, err := l.Load(context.Background(), dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var wantRegions []string
	for _, e := range entries {
		region, _ := ingest.RegionFromFilename(e.Name())
		wantRegions = append(wantRegions, region, region)
	}

	var gotRegions []string
	for _, o := range ds.Rows() {
		gotRegions = append(gotRegions, o.Region)
	}
	assert.Equal(t, wantRegions, gotRegions)
	require.Len(t, ds.Files, 2)
	assert.Equal(t, entries[0].Name(), ds.Files[0].Name)
}

func TestLoader_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vhi_data")

	l, _ := newLoader(t)
	ds, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.NotNil(t, ds.Rows())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoader_SkipsNonMatchingEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_11_Kyiv_1.csv", header+"2015,5,0,0,0,0,45.2\n")
	writeFile(t, dir, "README.txt", "not data")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested_dir_x.csv"), 0o755))

	l, _ := newLoader(t)
	ds, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Len(t, ds.Files, 1)
}

func TestLoader_OneBadFileAbortsTheCall(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_11_Kyiv_1.csv", header+"2015,5,0,0,0,0,45.2\n")
	writeFile(t, dir, "vhi_17_Odessa_1.csv", header+"2015,5,0,0,0,0,45.2,x,y,z\n")

	l, metrics := newLoader(t)
	ds, err := l.Load(context.Background(), dir)
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ingest.ErrMalformedFile)
	assert.Contains(t, err.Error(), "vhi_17_Odessa_1.csv")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.IngestErrors), 1e-9)
}

func TestLoader_MalformedFilenameDegrades(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kyiv.csv", header+"2015,5,0,0,0,0,45.2\n")

	l, metrics := newLoader(t)
	ds, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	o := ds.At(0)
	assert.Equal(t, "kyiv", o.Region)
	assert.Nil(t, o.RegionID)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MalformedFilenames), 1e-9)
}

func TestLoader_Metrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_11_Kyiv_1.csv", header+"2015,5,0,0,0,0,45.2\n2015,6,0,0,0,0,N/A\n")

	l, metrics := newLoader(t)
	_, err := l.Load(context.Background(), dir)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.IngestRuns), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FilesIngested), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.RowsRead), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RowsDropped), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.DatasetRows), 1e-9)
}

func TestLoader_ContextCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhi_11_Kyiv_1.csv", header+"2015,5,0,0,0,0,45.2\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l, _ := newLoader(t)
	_, err := l.Load(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewLoader_InvalidPattern(t *testing.T) {
	_, err := ingest.NewLoader("[", domain.Catalog, discardLogger(), observability.NewMetricsForTesting())
	require.Error(t, err)
}
