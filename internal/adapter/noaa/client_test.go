package noaa

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `<html><head><title>VHI</title></head><body>
<tt><pre>Ukraine, province= 11: Kyiv, VHI time series, weekly, 1981-2024<br>
year,week, SMN,SMT,VCI,TCI, VHI<br>
1982,  1,  0.053,260.31, 45.01, 39.46, 42.23,<br>
1982,  2,  0.054,262.29, 46.83, 31.75, 39.29,<br>
</pre></tt></body></html>
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, discardLogger())
}

func TestClient_Download_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "UKR", q.Get("country"))
		assert.Equal(t, "11", q.Get("provinceID"))
		assert.Equal(t, "1981", q.Get("year1"))
		assert.Equal(t, "2024", q.Get("year2"))
		assert.Equal(t, "Mean", q.Get("type"))

		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	body, err := testClient(srv.URL).Download(context.Background(), 11, 1981, 2024)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Ukraine, province= 11: Kyiv, VHI time series, weekly, 1981-2024", lines[0])
	assert.Equal(t, "year,week, SMN,SMT,VCI,TCI, VHI", lines[1])
	assert.Equal(t, "1982,  1,  0.053,260.31, 45.01, 39.46, 42.23,", lines[2])
	assert.NotContains(t, string(body), "<")
}

func TestClient_Download_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Download(context.Background(), 11, 1981, 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestClient_Download_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html><body><tt><pre></pre></tt></body></html>")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Download(context.Background(), 11, 1981, 2024)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Download_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Download(ctx, 11, 1981, 2024)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripHTML_PlainText(t *testing.T) {
	out, err := StripHTML([]byte("meta\n\nyear,week\n1982,1\n"))
	require.NoError(t, err)
	assert.Equal(t, "meta\nyear,week\n1982,1\n", string(out))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", time.Second, discardLogger())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
