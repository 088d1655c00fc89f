package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/acspacelit/indicadores/internal/config"
)

// SheetsSource reads a range of a spreadsheet through the Google Sheets API.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	timeout       time.Duration
	logger        *slog.Logger
}

// NewSheetsSource creates a Sheets API client for spreadsheetID.
func NewSheetsSource(ctx context.Context, spreadsheetID, readRange string, timeout time.Duration, logger *slog.Logger, opts ...option.ClientOption) (*SheetsSource, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	if readRange == "" {
		readRange = config.DefaultSheetsRange
	}
	return &SheetsSource{
		service:       service,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		timeout:       timeout,
		logger:        logger,
	}, nil
}

func sheetsOptions(cfg config.SourceConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if cfg.SheetsAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.SheetsAPIKey))
	}
	return opts
}

// Name identifies the spreadsheet and range.
func (s *SheetsSource) Name() string {
	return fmt.Sprintf("sheets:%s/%s", s.spreadsheetID, s.readRange)
}

// Fetch reads the range as formatted values and decodes it, header first.
func (s *SheetsSource) Fetch(ctx context.Context) (*Dataset, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fetchError(s.Name(), err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}

	records, stats, err := decodeRowsChecked(rows)
	if err != nil {
		return nil, fetchError(s.Name(), err)
	}

	s.logger.DebugContext(ctx, "range read from sheets api",
		slog.String("source", s.Name()),
		slog.Int("rows", len(rows)))

	return &Dataset{
		Records:   records,
		Stats:     stats,
		Origin:    s.Name(),
		Format:    "sheets",
		FetchedAt: time.Now(),
	}, nil
}
