package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/acspacelit/indicadores/internal/charts"
	"github.com/acspacelit/indicadores/internal/exporter"
	"github.com/acspacelit/indicadores/internal/infrastructure"
)

// ExportService renders reports as files: a workbook, single-table CSV
// files and chart images. Output is fully built in memory before it is
// returned so that a failure never leaves a half-written response.
type ExportService struct {
	reports *ReportService
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewExportService creates an export service. metrics may be nil.
func NewExportService(reports *ReportService, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		reports: reports,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "export_service"),
	}
}

// Workbook returns the XLSX workbook of the report for q
func (s *ExportService) Workbook(ctx context.Context, q ReportQuery) ([]byte, error) {
	report, err := s.reports.Report(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := exporter.WriteWorkbook(&buf, report.DashboardReport); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.record(ctx, "xlsx", "workbook", buf.Len())
	return buf.Bytes(), nil
}

// CSV returns one table of the report for q as CSV with a UTF-8 BOM
func (s *ExportService) CSV(ctx context.Context, q ReportQuery, table string) ([]byte, error) {
	report, err := s.reports.Report(ctx, q)
	if err != nil {
		return nil, err
	}

	t, err := exporter.TableByName(report.DashboardReport, table)
	if err != nil {
		return nil, unknownExport(err)
	}

	var buf bytes.Buffer
	if err := exporter.WriteCSV(&buf, t, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		return nil, fmt.Errorf("write %s: %w", table, err)
	}
	s.record(ctx, "csv", table, buf.Len())
	return buf.Bytes(), nil
}

// Chart returns a chart of the report for q as PNG
func (s *ExportService) Chart(ctx context.Context, q ReportQuery, chart string) ([]byte, error) {
	report, err := s.reports.Report(ctx, q)
	if err != nil {
		return nil, err
	}

	img, err := charts.PNG(chart, report.DashboardReport)
	if err != nil {
		if errors.Is(err, charts.ErrUnknownChart) {
			return nil, unknownExport(err)
		}
		return nil, err
	}
	s.record(ctx, "png", chart, len(img))
	return img, nil
}

func unknownExport(err error) error {
	return fmt.Errorf("%w: %v", ErrUnknownExport, err)
}

func (s *ExportService) record(ctx context.Context, format, name string, size int) {
	s.logger.DebugContext(ctx, "Export rendered",
		slog.String("format", format),
		slog.String("name", name),
		slog.Int("bytes", size))
	if s.metrics == nil {
		return
	}
	s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("name", name)))
}
