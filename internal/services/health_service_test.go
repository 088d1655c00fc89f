package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acspacelit/indicadores/internal/shared/testutil"
)

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func TestHealthService_Checks(t *testing.T) {
	tests := []struct {
		name          string
		status        DatasetStatus
		wantHealth    string
		wantReadiness string
	}{
		{
			name:          "loaded",
			status:        DatasetStatus{Source: "mock", Loaded: true, Records: 3},
			wantHealth:    StatusOK,
			wantReadiness: StatusReady,
		},
		{
			name:          "not loaded yet",
			status:        DatasetStatus{Source: "mock"},
			wantHealth:    StatusDegraded,
			wantReadiness: StatusNotReady,
		},
		{
			name:          "load failed",
			status:        DatasetStatus{Source: "mock", Error: "Error al cargar los datos: boom"},
			wantHealth:    StatusDegraded,
			wantReadiness: StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.2.3", "", "", &staticDataset{status: tt.status}, fixedClients(2), logger)

			health := hs.HealthCheck(context.Background())
			assert.Equal(t, tt.wantHealth, health.Status)
			assert.Equal(t, "1.2.3", health.Version)
			assert.Equal(t, "2 clients connected", health.Services["websocket"].Message)

			ready := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantReadiness, ready.Status)
		})
	}
}

func TestHealthService_NilCollaborators(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("dev", "", "", nil, nil, logger)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, StatusNotReady, ready.Status)
	assert.Equal(t, "live updates disabled", hs.HealthCheck(context.Background()).Services["websocket"].Message)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "2024-05-01T00:00:00Z", "abc123", nil, nil, logger)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "2024-05-01T00:00:00Z", version["build_time"])
	assert.Equal(t, "abc123", version["build_id"])
}
