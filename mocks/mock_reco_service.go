package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstreco/internal/domain"
	"gstreco/internal/service"
)

// MockRecoService is a mock implementation of service.RecoService.
type MockRecoService struct {
	mock.Mock
}

func (m *MockRecoService) Run(ctx context.Context, input *service.RecoInput) (*service.RecoOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecoOutput), args.Error(1)
}

// MockRunService is a mock implementation of service.RunService.
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) List(ctx context.Context, offset, limit int) ([]domain.RecoRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecoRun), args.Int(1), args.Error(2)
}

func (m *MockRunService) Get(ctx context.Context, id uuid.UUID) (*domain.RecoRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecoRun), args.Error(1)
}

func (m *MockRunService) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockOffsetService is a mock implementation of service.OffsetService.
type MockOffsetService struct {
	mock.Mock
}

func (m *MockOffsetService) Calculate(liability, credit domain.TaxVector) (*domain.OffsetResult, error) {
	args := m.Called(liability, credit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OffsetResult), args.Error(1)
}
