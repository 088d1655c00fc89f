package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/acspacelit/indicadores/internal/config"
)

// HTTPSource downloads the table from a URL, typically a published Google
// Sheets CSV export.
type HTTPSource struct {
	client   *http.Client
	url      string
	format   string
	sheet    string
	maxBytes int64
	logger   *slog.Logger
}

// NewHTTPSource creates a source reading rawURL with client. The client's
// timeout bounds a whole fetch; there are no retries.
func NewHTTPSource(client *http.Client, rawURL, format, sheet string, maxBytes int64, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: config.DefaultFetchTimeout}
	}
	return &HTTPSource{
		client:   client,
		url:      rawURL,
		format:   format,
		sheet:    sheet,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Name returns the URL without its query string.
func (s *HTTPSource) Name() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return s.url
	}
	u.RawQuery = ""
	return u.String()
}

// Fetch downloads and decodes the table.
func (s *HTTPSource) Fetch(ctx context.Context) (*Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fetchError(s.Name(), err)
	}
	req.Header.Set("User-Agent", config.AppName+"/"+config.AppVersion)
	req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fetchError(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetchError(s.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := readLimited(resp.Body, s.maxBytes)
	if err != nil {
		return nil, fetchError(s.Name(), err)
	}

	format := detectFormat(s.format, req.URL.Path, resp.Header.Get("Content-Type"), body)
	records, stats, err := decodeTable(body, format, s.sheet)
	if err != nil {
		return nil, fetchError(s.Name(), err)
	}

	s.logger.DebugContext(ctx, "table downloaded",
		slog.String("source", s.Name()),
		slog.String("format", format),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))

	return &Dataset{
		Records:   records,
		Stats:     stats,
		Origin:    s.Name(),
		Format:    format,
		FetchedAt: time.Now(),
	}, nil
}
