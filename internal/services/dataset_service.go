package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/acspacelit/indicadores/internal/dataprocessing"
	"github.com/acspacelit/indicadores/internal/infrastructure"
	"github.com/acspacelit/indicadores/internal/source"
	ws "github.com/acspacelit/indicadores/internal/websocket"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// Notifier receives dataset events. The websocket hub implements it.
type Notifier interface {
	Broadcast(ctx context.Context, messageType string, data interface{})
}

// DatasetStatus describes the snapshot currently served
type DatasetStatus struct {
	Source        string     `json:"source"`
	Format        string     `json:"format,omitempty"`
	Loaded        bool       `json:"loaded"`
	Rows          int        `json:"rows"`
	Records       int        `json:"records"`
	SkippedRows   int        `json:"skipped_rows"`
	ParseWarnings int        `json:"parse_warnings"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	AttemptedAt   time.Time  `json:"attempted_at"`
	Error         string     `json:"error,omitempty"`
}

type datasetSnapshot struct {
	records []domain.Record
	options domain.FilterOptions
	status  DatasetStatus
}

// DatasetService keeps the stations table in memory
type DatasetService struct {
	source   source.Source
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger

	current atomic.Pointer[datasetSnapshot]
	group   singleflight.Group
}

// NewDatasetService creates a dataset service over src. The service starts
// empty; call Reload to fetch the table. notifier and metrics may be nil.
func NewDatasetService(src source.Source, notifier Notifier, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}

	s := &DatasetService{
		source:   src,
		notifier: notifier,
		metrics:  metrics,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "dataset_service"),
	}
	s.current.Store(&datasetSnapshot{
		options: dataprocessing.Options(nil),
		status:  DatasetStatus{Source: src.Name()},
	})

	s.logger.Info("DatasetService initialized", slog.String("source", src.Name()))
	return s
}

// Snapshot returns the records, filter options and status served now.
// The records are shared between readers and must not be modified.
func (s *DatasetService) Snapshot() ([]domain.Record, domain.FilterOptions, DatasetStatus) {
	snap := s.current.Load()
	return snap.records, snap.options, snap.status
}

// Status returns the status of the current snapshot
func (s *DatasetService) Status() DatasetStatus {
	return s.current.Load().status
}

// Reload fetches the table again. Concurrent calls share one fetch. When
// the fetch fails the service serves an empty dataset and keeps the error
// in its status.
func (s *DatasetService) Reload(ctx context.Context) (DatasetStatus, error) {
	v, err, shared := s.group.Do("reload", func() (interface{}, error) {
		// The fetch outlives any single caller that joined it
		return s.load(context.WithoutCancel(ctx))
	})
	if shared {
		s.logger.DebugContext(ctx, "Reload joined an in-flight fetch")
	}
	return v.(DatasetStatus), err
}

// Run reloads the dataset every interval until ctx is cancelled. A
// non-positive interval disables the refresh.
func (s *DatasetService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	s.logger.InfoContext(ctx, "Dataset refresh enabled", slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Failures are logged and published by load
			_, _ = s.Reload(ctx)
		}
	}
}

func (s *DatasetService) load(ctx context.Context) (DatasetStatus, error) {
	name := s.source.Name()
	ctx, span := s.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("dataset.source", name)))
	defer span.End()

	start := time.Now()
	ds, err := s.source.Fetch(ctx)
	elapsed := time.Since(start)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		status := DatasetStatus{
			Source:      name,
			AttemptedAt: start,
			Error:       domain.DatasetErrorMessage(err),
		}
		s.current.Store(&datasetSnapshot{
			options: dataprocessing.Options(nil),
			status:  status,
		})
		s.record(ctx, "error", elapsed, 0, 0)

		s.logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("source", name),
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed))
		s.notify(ctx, ws.TypeDatasetError, status)
		return status, err
	}

	loadedAt := ds.FetchedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}
	origin := ds.Origin
	if origin == "" {
		origin = name
	}
	status := DatasetStatus{
		Source:        origin,
		Format:        ds.Format,
		Loaded:        true,
		Rows:          ds.Stats.Rows,
		Records:       len(ds.Records),
		SkippedRows:   ds.Stats.SkippedRows,
		ParseWarnings: ds.Stats.ParseWarnings(),
		LoadedAt:      &loadedAt,
		AttemptedAt:   start,
	}
	s.current.Store(&datasetSnapshot{
		records: ds.Records,
		options: dataprocessing.Options(ds.Records),
		status:  status,
	})
	s.record(ctx, "success", elapsed, len(ds.Records), status.ParseWarnings)
	span.SetAttributes(
		attribute.Int("dataset.records", len(ds.Records)),
		attribute.Int("dataset.skipped_rows", ds.Stats.SkippedRows))

	// Individual cells are never logged, only the totals
	if status.ParseWarnings > 0 {
		s.logger.WarnContext(ctx, "Numeric cells could not be parsed",
			slog.Int("kpi_warnings", ds.Stats.KPIWarnings),
			slog.Int("contribution_warnings", ds.Stats.ContributionWarnings))
	}
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", origin),
		slog.String("format", ds.Format),
		slog.Int("records", len(ds.Records)),
		slog.Int("skipped_rows", ds.Stats.SkippedRows),
		slog.Duration("duration", elapsed))
	s.notify(ctx, ws.TypeDatasetReloaded, status)
	return status, nil
}

func (s *DatasetService) record(ctx context.Context, outcome string, elapsed time.Duration, records, warnings int) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.metrics.DatasetLoadsTotal.Add(ctx, 1, attrs)
	s.metrics.DatasetLoadDuration.Record(ctx, elapsed.Seconds(), attrs)
	s.metrics.DatasetRows.Record(ctx, int64(records))
	if warnings > 0 {
		s.metrics.ParseWarningsTotal.Add(ctx, int64(warnings))
	}
}

func (s *DatasetService) notify(ctx context.Context, messageType string, status DatasetStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.Broadcast(ctx, messageType, status)
}
