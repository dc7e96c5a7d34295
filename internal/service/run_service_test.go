package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
	"gstreco/internal/service"
	"gstreco/mocks"
)

func TestRunService_List_ClampsPaging(t *testing.T) {
	tests := []struct {
		name                  string
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{"defaults", 0, 0, 0, 20},
		{"negative offset", -5, 10, 0, 10},
		{"limit capped", 40, 500, 40, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := new(mocks.MockRunRepo)
			svc := service.NewRunService(runs, new(mocks.MockReportStorage))
			runs.On("List", mock.Anything, tt.wantOffset, tt.wantLimit).Return([]domain.RecoRun{{ID: uuid.New()}}, 1, nil)

			got, total, err := svc.List(context.Background(), tt.offset, tt.limit)

			require.NoError(t, err)
			assert.Len(t, got, 1)
			assert.Equal(t, 1, total)
			runs.AssertExpectations(t)
		})
	}
}

func TestRunService_DownloadURL(t *testing.T) {
	runs := new(mocks.MockRunRepo)
	storage := new(mocks.MockReportStorage)
	svc := service.NewRunService(runs, storage)

	id := uuid.New()
	runs.On("GetByID", mock.Anything, id).Return(&domain.RecoRun{ID: id, ReportKey: "reports/2024/04/x.xlsx"}, nil)
	storage.On("ReportURL", mock.Anything, "reports/2024/04/x.xlsx").Return(reportURL, nil)

	url, err := svc.DownloadURL(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, reportURL, url)
}

func TestRunService_DownloadURL_NotFound(t *testing.T) {
	runs := new(mocks.MockRunRepo)
	storage := new(mocks.MockReportStorage)
	svc := service.NewRunService(runs, storage)

	id := uuid.New()
	runs.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := svc.DownloadURL(context.Background(), id)

	require.ErrorIs(t, err, domain.ErrNotFound)
	storage.AssertNotCalled(t, "ReportURL", mock.Anything, mock.Anything)
}

func TestRunService_DownloadURL_StorageError(t *testing.T) {
	runs := new(mocks.MockRunRepo)
	storage := new(mocks.MockReportStorage)
	svc := service.NewRunService(runs, storage)

	id := uuid.New()
	runs.On("GetByID", mock.Anything, id).Return(&domain.RecoRun{ID: id, ReportKey: "k"}, nil)
	storage.On("ReportURL", mock.Anything, "k").Return("", errors.New("presign failed"))

	_, err := svc.DownloadURL(context.Background(), id)

	require.Error(t, err)
}

func TestOffsetService_Calculate(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	svc := service.NewOffsetService(log)

	res, err := svc.Calculate(
		domain.TaxVector{IGST: dec("100"), CGST: dec("50"), SGST: dec("50")},
		domain.TaxVector{IGST: dec("120"), CGST: dec("0"), SGST: dec("0")},
	)

	require.NoError(t, err)
	assert.True(t, res.CashPayable.CGST.Equal(dec("30")))
	assert.True(t, res.CashPayable.SGST.Equal(dec("50")))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "offset computed", hook.LastEntry().Message)
}

func TestOffsetService_Calculate_RejectsNegative(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	svc := service.NewOffsetService(log)

	_, err := svc.Calculate(
		domain.TaxVector{IGST: dec("-1"), CGST: dec("0"), SGST: dec("0")},
		domain.TaxVector{},
	)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
