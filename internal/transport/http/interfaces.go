package http

import (
	"context"

	"ecomdash/internal/analysis"
	"ecomdash/internal/dataset"
	"ecomdash/internal/services"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	Catalog() []services.CatalogEntry
	Dashboard(ctx context.Context, sel analysis.Selection) (*services.Dashboard, error)
	Section(ctx context.Context, kind analysis.Kind) (analysis.Section, error)
	Datasets(ctx context.Context) ([]dataset.TableSummary, error)
}

// HealthServiceInterface defines the health check operations
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
