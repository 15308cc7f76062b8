// Package noaa downloads weekly vegetation health time series from NOAA STAR.
package noaa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the NOAA STAR province time series endpoint.
const DefaultBaseURL = "https://www.star.nesdis.noaa.gov/smcd/emb/vci/VH/get_TS_admin.php"

// ErrEmptyResponse is returned when NOAA answers without any CSV text.
var ErrEmptyResponse = errors.New("noaa returned no data")

// maxBodyBytes bounds a single province download; a full 1981-2024 series is
// well under 200 KiB.
const maxBodyBytes = 8 << 20

// Client requests one province's mean weekly series at a time.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a NOAA STAR client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Download returns the province series as plain CSV text: a metadata line,
// the column header line and one line per week.
func (c *Client) Download(ctx context.Context, provinceID, yearStart, yearEnd int) ([]byte, error) {
	params := url.Values{
		"country":    {"UKR"},
		"provinceID": {strconv.Itoa(provinceID)},
		"year1":      {strconv.Itoa(yearStart)},
		"year2":      {strconv.Itoa(yearEnd)},
		"type":       {"Mean"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("province %d request: %w", provinceID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("noaa API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	text, err := StripHTML(body)
	if err != nil {
		return nil, fmt.Errorf("province %d: %w", provinceID, err)
	}
	c.logger.Debug("noaa series downloaded", "province_id", provinceID, "bytes", len(text))
	return text, nil
}

// StripHTML removes the <tt><pre> wrapper and <br> line breaks NOAA puts
// around the CSV text. Blank lines and trailing whitespace are dropped so the
// metadata and header are always the first two lines.
func StripHTML(body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	sel := doc.Find("pre")
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}

	var out strings.Builder
	for _, line := range strings.Split(sel.Text(), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if out.Len() == 0 {
		return nil, ErrEmptyResponse
	}
	return []byte(out.String()), nil
}
