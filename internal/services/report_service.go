package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/acspacelit/indicadores/internal/config"
	"github.com/acspacelit/indicadores/internal/dataprocessing"
	"github.com/acspacelit/indicadores/internal/infrastructure"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// welcomeText is the dashboard introduction shown on the overview
var welcomeText = []string{
	"Explorar y analizar datos de eficiencia operativa de estaciones en varios países.",
	"Visualizar métricas clave, como el tiempo promedio de proyectos, el total de proyectos por estación y país, así como el aporte financiero de FONPLATA.",
	"Utilizar gráficos que ayudan a entender la distribución de KPI promedio por país y estación, el porcentaje de aporte FONPLATA por país y el recuento de IDEtapas por sector.",
}

// DatasetReader exposes the served dataset snapshot
type DatasetReader interface {
	Snapshot() ([]domain.Record, domain.FilterOptions, DatasetStatus)
}

// ReportQuery is a selection in which every part is optional. Missing
// parts take the dataset defaults. A nil Countries selects every country;
// an empty non-nil one selects none.
type ReportQuery struct {
	From      *int
	To        *int
	Station   string
	Countries []string
}

// Report is a dashboard report together with the dataset it was computed
// over.
type Report struct {
	domain.DashboardReport
	Dataset DatasetStatus `json:"dataset"`
}

// Overview describes the dashboard and the choices available.
type Overview struct {
	Title            string                 `json:"title"`
	Welcome          string                 `json:"welcome"`
	Features         []string               `json:"features"`
	Options          domain.FilterOptions   `json:"options"`
	DefaultSelection domain.FilterSelection `json:"default_selection"`
	Dataset          DatasetStatus          `json:"dataset"`
}

// ReportService computes dashboard reports over the current dataset
type ReportService struct {
	dataset DatasetReader
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(dataset DatasetReader, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	return &ReportService{
		dataset: dataset,
		metrics: metrics,
		tracer:  tracer,
		logger:  infrastructure.WithComponent(logger, "report_service"),
	}
}

// ResolveSelection completes q with the defaults of opts. Without any
// station in the dataset the approval station is used so that an empty
// dataset still yields an (empty) report.
func ResolveSelection(q ReportQuery, opts domain.FilterOptions) domain.FilterSelection {
	sel := opts.DefaultSelection()
	if sel.Station == "" {
		sel.Station = domain.StationApproval
	}
	if q.From != nil {
		sel.Years.From = *q.From
	}
	if q.To != nil {
		sel.Years.To = *q.To
	}
	if station := strings.TrimSpace(q.Station); station != "" {
		sel.Station = domain.Station(station)
	}

	switch {
	case q.Countries == nil:
	case len(q.Countries) == 0:
		sel.Countries = domain.SpecificCountries()
	default:
		sel.Countries = domain.ParseCountrySelection(q.Countries)
	}
	return sel
}

// Report computes the dashboard for q
func (s *ReportService) Report(ctx context.Context, q ReportQuery) (*Report, error) {
	records, opts, status := s.dataset.Snapshot()
	sel := ResolveSelection(q, opts)

	ctx, span := s.tracer.Start(ctx, "dashboard.report", trace.WithAttributes(
		attribute.Int("selection.from", sel.Years.From),
		attribute.Int("selection.to", sel.Years.To),
		attribute.String("selection.station", string(sel.Station)),
		attribute.StringSlice("selection.countries", sel.Countries.Countries()),
	))
	defer span.End()

	start := time.Now()
	report, err := dataprocessing.ComputeReport(records, sel)
	elapsed := time.Since(start)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.record(ctx, "invalid", elapsed)
		s.logger.DebugContext(ctx, "Report rejected", slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.Int("report.records", report.RecordCount))
	s.record(ctx, "success", elapsed)
	s.logger.DebugContext(ctx, "Report computed",
		slog.Int("records", report.RecordCount),
		slog.String("station", string(sel.Station)),
		slog.Duration("duration", elapsed))

	return &Report{DashboardReport: report, Dataset: status}, nil
}

// Options returns the filter choices of the current dataset
func (s *ReportService) Options() (domain.FilterOptions, DatasetStatus) {
	_, opts, status := s.dataset.Snapshot()
	return opts, status
}

// Overview returns the dashboard introduction with its options
func (s *ReportService) Overview() Overview {
	opts, status := s.Options()
	return Overview{
		Title:            config.AppTitle,
		Welcome:          "¡Bienvenido al Dashboard de Análisis de Eficiencia Operativa!",
		Features:         welcomeText,
		Options:          opts,
		DefaultSelection: ResolveSelection(ReportQuery{}, opts),
		Dataset:          status,
	}
}

func (s *ReportService) record(ctx context.Context, outcome string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.metrics.ReportsTotal.Add(ctx, 1, attrs)
	s.metrics.ReportDuration.Record(ctx, elapsed.Seconds(), attrs)
}
