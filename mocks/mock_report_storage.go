package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"gstreco/internal/port"
)

// MockReportStorage is a mock implementation of port.ReportStorage.
type MockReportStorage struct {
	mock.Mock
}

func (m *MockReportStorage) PutReport(ctx context.Context, key string, body io.Reader) (*port.StoredReport, error) {
	args := m.Called(ctx, key, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StoredReport), args.Error(1)
}

func (m *MockReportStorage) DeleteReport(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockReportStorage) ReportURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockReportStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
