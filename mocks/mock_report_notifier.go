package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstreco/internal/domain"
)

// MockReportNotifier is a mock implementation of port.ReportNotifier.
type MockReportNotifier struct {
	mock.Mock
}

func (m *MockReportNotifier) NotifyReportReady(ctx context.Context, toEmail string, run *domain.RecoRun, downloadURL string) error {
	args := m.Called(ctx, toEmail, run, downloadURL)
	return args.Error(0)
}
