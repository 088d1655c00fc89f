// Package source fetches the stations table from a URL, a local file or a
// Google Sheets spreadsheet and decodes it into records.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/acspacelit/indicadores/internal/config"
	"github.com/acspacelit/indicadores/internal/dataprocessing"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Table formats.
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Source fetches one snapshot of the stations table.
type Source interface {
	// Name describes the origin for logs and status reports.
	Name() string
	Fetch(ctx context.Context) (*Dataset, error)
}

// Dataset is a decoded snapshot of the stations table.
type Dataset struct {
	Records   []domain.Record
	Stats     dataprocessing.LoadStats
	Origin    string
	Format    string
	FetchedAt time.Time
}

// FetchError wraps every failure to obtain or decode the table.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports FetchError as domain.ErrDatasetUnavailable.
func (e *FetchError) Is(target error) bool {
	return target == domain.ErrDatasetUnavailable
}

func fetchError(source string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Source: source, Err: err}
}

// New builds the source selected by cfg.
func New(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "source"))

	switch cfg.Kind() {
	case "sheets":
		return NewSheetsSource(ctx, cfg.SpreadsheetID, cfg.SheetsRange, cfg.Timeout, logger, sheetsOptions(cfg)...)
	case "file":
		return NewFileSource(cfg.File, cfg.Format, cfg.Sheet, cfg.MaxBytes, logger), nil
	default:
		client := &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		return NewHTTPSource(client, cfg.URL, cfg.Format, cfg.Sheet, cfg.MaxBytes, logger), nil
	}
}
