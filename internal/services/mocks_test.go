package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/acspacelit/indicadores/internal/dataprocessing"
	"github.com/acspacelit/indicadores/internal/source"
	"github.com/acspacelit/indicadores/internal/shared/testutil"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// MockSource is a mock for source.Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string {
	return "mock"
}

func (m *MockSource) Fetch(ctx context.Context) (*source.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*source.Dataset)
	return ds, args.Error(1)
}

// MockNotifier is a mock for Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Broadcast(ctx context.Context, messageType string, data interface{}) {
	m.Called(ctx, messageType, data)
}

// staticDataset serves a fixed snapshot
type staticDataset struct {
	mu      sync.Mutex
	records []domain.Record
	status  DatasetStatus
}

func (d *staticDataset) Snapshot() ([]domain.Record, domain.FilterOptions, DatasetStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.records, dataprocessing.Options(d.records), d.status
}

func (d *staticDataset) Status() DatasetStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func exampleDataset(t *testing.T) *source.Dataset {
	t.Helper()
	records, stats, err := dataprocessing.DecodeRows(testutil.StationsTable(testutil.ExampleRows...))
	require.NoError(t, err)
	return &source.Dataset{
		Records:   records,
		Stats:     stats,
		Origin:    "https://example.test/stations.csv",
		Format:    source.FormatCSV,
		FetchedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func intPtr(v int) *int {
	return &v
}
