package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ecomdash/internal/analysis"
	"ecomdash/internal/dataset"
	"ecomdash/internal/services"
)

// MockDashboardService is a testify mock of DashboardServiceInterface.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Catalog() []services.CatalogEntry {
	args := m.Called()
	return args.Get(0).([]services.CatalogEntry)
}

func (m *MockDashboardService) Dashboard(ctx context.Context, sel analysis.Selection) (*services.Dashboard, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Dashboard), args.Error(1)
}

func (m *MockDashboardService) Section(ctx context.Context, kind analysis.Kind) (analysis.Section, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(analysis.Section), args.Error(1)
}

func (m *MockDashboardService) Datasets(ctx context.Context) ([]dataset.TableSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dataset.TableSummary), args.Error(1)
}

// MockHealthService is a testify mock of HealthServiceInterface.
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}
