package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ecomdash/internal/dataset"
)

// MockLoader is a testify mock of DatasetLoader.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context) (*dataset.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataset.Snapshot), args.Error(1)
}

func (m *MockLoader) Snapshot() (*dataset.Snapshot, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*dataset.Snapshot), args.Bool(1)
}
