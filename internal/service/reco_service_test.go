package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
	"gstreco/internal/ingest"
	"gstreco/internal/port"
	"gstreco/internal/reco"
	"gstreco/internal/service"
	"gstreco/mocks"
)

const reportURL = "https://reports.example.com/signed"

type recoDeps struct {
	storage  *mocks.MockReportStorage
	runs     *mocks.MockRunRepo
	notifier *mocks.MockReportNotifier
	hook     *logtest.Hook
	svc      service.RecoService
}

func newRecoDeps(timeout time.Duration) *recoDeps {
	log, hook := logtest.NewNullLogger()
	d := &recoDeps{
		storage:  new(mocks.MockReportStorage),
		runs:     new(mocks.MockRunRepo),
		notifier: new(mocks.MockReportNotifier),
		hook:     hook,
	}
	d.svc = service.NewRecoService(reco.NewEngine(reco.DefaultThresholds()), d.storage, d.runs, d.notifier, timeout, log)
	return d
}

func reportKey() interface{} {
	return mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "reports/") && strings.HasSuffix(key, ".xlsx")
	})
}

func zohoInput(t *testing.T) *service.RecoInput {
	return &service.RecoInput{
		Format:      domain.BooksFormatZoho,
		Portal:      portalUpload(t),
		Zoho:        zohoUpload(t),
		RequestedBy: "analyst",
	}
}

func TestRecoService_Run_Success(t *testing.T) {
	d := newRecoDeps(time.Minute)

	var uploaded []byte
	d.storage.On("PutReport", mock.Anything, reportKey(), mock.Anything).
		Run(func(args mock.Arguments) {
			b, err := io.ReadAll(args.Get(2).(io.Reader))
			require.NoError(t, err)
			uploaded = b
		}).
		Return(&port.StoredReport{Key: "k"}, nil)
	d.runs.On("Create", mock.Anything, mock.AnythingOfType("*domain.RecoRun")).Return(nil)
	d.storage.On("ReportURL", mock.Anything, reportKey()).Return(reportURL, nil)
	d.notifier.On("NotifyReportReady", mock.Anything, "ops@example.com", mock.AnythingOfType("*domain.RecoRun"), reportURL).Return(nil)

	input := zohoInput(t)
	input.NotifyEmail = "ops@example.com"
	out, err := d.svc.Run(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, reportURL, out.DownloadURL)
	assert.Equal(t, 1, out.PortalCounts[domain.RemarkMatch])
	assert.Equal(t, 1, out.PortalCounts[domain.RemarkNotInBooks])
	assert.Equal(t, 1, out.BooksCounts[domain.RemarkMatch])
	assert.Nil(t, out.Offset)

	run := out.Run
	assert.Equal(t, domain.BooksFormatZoho, run.BooksFormat)
	assert.Equal(t, 2, run.PortalRecords)
	assert.Equal(t, 1, run.BooksRecords)
	assert.Equal(t, "analyst", run.RequestedBy)
	assert.JSONEq(t, `{"Match":1,"Not in Books":1}`, string(run.PortalSummary))
	assert.Contains(t, run.ReportKey, run.ID.String())

	f, err := excelize.OpenReader(bytes.NewReader(uploaded))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), "Portal - B2B")
	assert.Contains(t, f.GetSheetList(), "Books - b2b")

	d.storage.AssertExpectations(t)
	d.runs.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
}

func TestRecoService_Run_WithOffset(t *testing.T) {
	d := newRecoDeps(0)
	d.storage.On("PutReport", mock.Anything, reportKey(), mock.Anything).Return(&port.StoredReport{}, nil)
	d.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.storage.On("ReportURL", mock.Anything, mock.Anything).Return(reportURL, nil)

	input := zohoInput(t)
	input.Offset = &domain.OffsetInput{
		OutputLiability: domain.TaxVector{IGST: dec("0"), CGST: dec("100"), SGST: dec("100")},
	}
	out, err := d.svc.Run(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, out.Offset)
	assert.True(t, out.Offset.Credit.CGST.Equal(dec("90")))
	assert.True(t, out.Offset.CashPayable.CGST.Equal(dec("10")))
	assert.True(t, out.Offset.CashPayable.SGST.Equal(dec("10")))
	d.notifier.AssertNotCalled(t, "NotifyReportReady", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecoService_Run_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		input func(t *testing.T) *service.RecoInput
		want  error
	}{
		{
			name:  "missing portal",
			input: func(t *testing.T) *service.RecoInput { return &service.RecoInput{Format: domain.BooksFormatZoho, Zoho: zohoUpload(t)} },
			want:  domain.ErrMissingPortalFile,
		},
		{
			name:  "missing zoho file",
			input: func(t *testing.T) *service.RecoInput { return &service.RecoInput{Format: domain.BooksFormatZoho, Portal: portalUpload(t)} },
			want:  domain.ErrMissingBooksFile,
		},
		{
			name:  "no odoo slots",
			input: func(t *testing.T) *service.RecoInput { return &service.RecoInput{Format: domain.BooksFormatOdoo, Portal: portalUpload(t)} },
			want:  domain.ErrMissingBooksFile,
		},
		{
			name:  "unknown format",
			input: func(t *testing.T) *service.RecoInput { return &service.RecoInput{Format: "tally", Portal: portalUpload(t)} },
			want:  domain.ErrInvalidInput,
		},
		{
			name: "portal is not a workbook",
			input: func(t *testing.T) *service.RecoInput {
				in := zohoInput(t)
				in.Portal = &ingest.Upload{Filename: "gstr2b.pdf", Body: strings.NewReader("%PDF")}
				return in
			},
			want: domain.ErrUnsupportedFileType,
		},
		{
			name: "both sides empty",
			input: func(t *testing.T) *service.RecoInput {
				return &service.RecoInput{
					Format: domain.BooksFormatZoho,
					Portal: xlsxUpload(t, "gstr2b.xlsx", sheet{name: "Read me", rows: [][]interface{}{{"x"}}}),
					Zoho:   xlsxUpload(t, "zoho.xlsx", sheet{name: "hsn", rows: [][]interface{}{{"x"}}}),
				}
			},
			want: domain.ErrNoRecords,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newRecoDeps(time.Minute)

			out, err := d.svc.Run(context.Background(), tt.input(t))

			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, out)
			d.storage.AssertNotCalled(t, "PutReport", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRecoService_Run_UploadFails(t *testing.T) {
	d := newRecoDeps(time.Minute)
	d.storage.On("PutReport", mock.Anything, reportKey(), mock.Anything).Return(nil, errors.New("s3 down"))

	_, err := d.svc.Run(context.Background(), zohoInput(t))

	require.ErrorIs(t, err, domain.ErrUploadFailed)
	d.runs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecoService_Run_SaveFailsRemovesReport(t *testing.T) {
	d := newRecoDeps(time.Minute)
	dbErr := errors.New("db down")
	d.storage.On("PutReport", mock.Anything, reportKey(), mock.Anything).Return(&port.StoredReport{}, nil)
	d.runs.On("Create", mock.Anything, mock.Anything).Return(dbErr)
	d.storage.On("DeleteReport", mock.Anything, reportKey()).Return(nil)

	_, err := d.svc.Run(context.Background(), zohoInput(t))

	require.ErrorIs(t, err, dbErr)
	d.storage.AssertCalled(t, "DeleteReport", mock.Anything, reportKey())
	d.storage.AssertNotCalled(t, "ReportURL", mock.Anything, mock.Anything)
}

func TestRecoService_Run_NotifyFailureIsNotFatal(t *testing.T) {
	d := newRecoDeps(time.Minute)
	d.storage.On("PutReport", mock.Anything, reportKey(), mock.Anything).Return(&port.StoredReport{}, nil)
	d.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.storage.On("ReportURL", mock.Anything, mock.Anything).Return(reportURL, nil)
	d.notifier.On("NotifyReportReady", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	input := zohoInput(t)
	input.NotifyEmail = "ops@example.com"
	out, err := d.svc.Run(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, reportURL, out.DownloadURL)

	var warned bool
	for _, e := range d.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "report notification failed" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRecoService_Run_Cancelled(t *testing.T) {
	d := newRecoDeps(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := d.svc.Run(ctx, zohoInput(t))

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
	d.storage.AssertNotCalled(t, "PutReport", mock.Anything, mock.Anything, mock.Anything)
}
