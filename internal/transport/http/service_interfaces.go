package http

import (
	"context"

	"github.com/acspacelit/indicadores/internal/services"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations used by the handlers
type ReportServiceInterface interface {
	Report(ctx context.Context, q services.ReportQuery) (*services.Report, error)
	Options() (domain.FilterOptions, services.DatasetStatus)
	Overview() services.Overview
}

// ExportServiceInterface defines the file exports
type ExportServiceInterface interface {
	Workbook(ctx context.Context, q services.ReportQuery) ([]byte, error)
	CSV(ctx context.Context, q services.ReportQuery, table string) ([]byte, error)
	Chart(ctx context.Context, q services.ReportQuery, chart string) ([]byte, error)
}

// DatasetServiceInterface defines the dataset operations
type DatasetServiceInterface interface {
	Status() services.DatasetStatus
	Reload(ctx context.Context) (services.DatasetStatus, error)
}

// HealthServiceInterface defines the health checks
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
