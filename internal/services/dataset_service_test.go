package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/acspacelit/indicadores/internal/infrastructure"
	"github.com/acspacelit/indicadores/internal/source"
	"github.com/acspacelit/indicadores/internal/shared/testutil"
	ws "github.com/acspacelit/indicadores/internal/websocket"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

func testMetrics(t *testing.T) *infrastructure.BusinessMetrics {
	t.Helper()
	m, err := infrastructure.CreateBusinessMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return m
}

func TestDatasetService_StartsEmpty(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewDatasetService(new(MockSource), nil, nil, nil, logger)

	records, opts, status := svc.Snapshot()

	assert.Empty(t, records)
	assert.Equal(t, []string{domain.AllCountriesLabel}, opts.Countries)
	assert.Empty(t, opts.Stations)
	assert.False(t, status.Loaded)
	assert.Equal(t, "mock", status.Source)
	assert.Empty(t, status.Error)
}

func TestDatasetService_ReloadSuccess(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	src := new(MockSource)
	notifier := new(MockNotifier)
	ds := exampleDataset(t)

	src.On("Fetch", mock.Anything).Return(ds, nil).Once()
	notifier.On("Broadcast", mock.Anything, ws.TypeDatasetReloaded, mock.AnythingOfType("services.DatasetStatus")).Once()

	svc := NewDatasetService(src, notifier, testMetrics(t), nil, logger)
	status, err := svc.Reload(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Loaded)
	assert.Equal(t, 3, status.Records)
	assert.Equal(t, 3, status.Rows)
	assert.Equal(t, source.FormatCSV, status.Format)
	assert.Equal(t, "https://example.test/stations.csv", status.Source)
	require.NotNil(t, status.LoadedAt)
	assert.Equal(t, ds.FetchedAt, *status.LoadedAt)

	records, opts, current := svc.Snapshot()
	assert.Len(t, records, 3)
	assert.Equal(t, 2020, opts.MinYear)
	assert.Equal(t, 2021, opts.MaxYear)
	assert.Equal(t, []domain.Station{domain.StationApproval, domain.StationEffectiveness}, opts.Stations)
	assert.Equal(t, status, current)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset loaded")
	src.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDatasetService_ReloadLogsParseWarnings(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	src := new(MockSource)
	ds := exampleDataset(t)
	ds.Stats.KPIWarnings = 2
	ds.Stats.ContributionWarnings = 1
	src.On("Fetch", mock.Anything).Return(ds, nil)

	svc := NewDatasetService(src, nil, testMetrics(t), nil, logger)
	status, err := svc.Reload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, status.ParseWarnings)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Numeric cells could not be parsed")
	assert.True(t, logs.ContainsAttr("kpi_warnings", int64(2)))
}

func TestDatasetService_ReloadFailureServesEmptyDataset(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	src := new(MockSource)
	notifier := new(MockNotifier)
	fetchErr := &source.FetchError{Source: "mock", Err: errors.New("status 500")}

	src.On("Fetch", mock.Anything).Return(exampleDataset(t), nil).Once()
	src.On("Fetch", mock.Anything).Return(nil, fetchErr).Once()
	notifier.On("Broadcast", mock.Anything, ws.TypeDatasetReloaded, mock.Anything).Once()
	notifier.On("Broadcast", mock.Anything, ws.TypeDatasetError, mock.Anything).Once()

	svc := NewDatasetService(src, notifier, testMetrics(t), nil, logger)
	_, err := svc.Reload(context.Background())
	require.NoError(t, err)

	status, err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)

	assert.False(t, status.Loaded)
	assert.Equal(t, "Error al cargar los datos: fetch mock: status 500", status.Error)

	records, opts, _ := svc.Snapshot()
	assert.Empty(t, records)
	assert.Equal(t, []string{domain.AllCountriesLabel}, opts.Countries)

	testutil.AssertLogContains(t, logs, slog.LevelError, "Dataset load failed")
	notifier.AssertExpectations(t)
}

// gatedSource blocks every fetch until release is closed
type gatedSource struct {
	calls   atomic.Int32
	release chan struct{}
	ds      *source.Dataset
}

func (g *gatedSource) Name() string { return "gated" }

func (g *gatedSource) Fetch(ctx context.Context) (*source.Dataset, error) {
	g.calls.Add(1)
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.ds, nil
}

func TestDatasetService_ConcurrentReloadsShareFetch(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	src := &gatedSource{release: make(chan struct{}), ds: exampleDataset(t)}
	svc := NewDatasetService(src, nil, nil, nil, logger)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]DatasetStatus, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status, err := svc.Reload(context.Background())
			assert.NoError(t, err)
			results[i] = status
		}(i)
	}

	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Less(t, int(src.calls.Load()), callers)
	for _, status := range results {
		assert.True(t, status.Loaded)
		assert.Equal(t, 3, status.Records)
	}
}

func TestDatasetService_ReloadOutlivesCallerContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	src := &gatedSource{release: make(chan struct{}), ds: exampleDataset(t)}
	close(src.release)
	svc := NewDatasetService(src, nil, nil, nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, status.Loaded)
}

func TestDatasetService_Run(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		svc := NewDatasetService(new(MockSource), nil, nil, nil, logger)
		assert.NoError(t, svc.Run(context.Background(), 0))
	})

	t.Run("refreshes until cancelled", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		src := &gatedSource{release: make(chan struct{}), ds: exampleDataset(t)}
		close(src.release)
		svc := NewDatasetService(src, nil, nil, nil, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx, 10*time.Millisecond) }()

		require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
		assert.True(t, svc.Status().Loaded)
	})
}
