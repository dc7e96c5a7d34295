package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gstreco/internal/domain"
	"gstreco/internal/ingest"
	"gstreco/internal/port"
	"gstreco/internal/reco"
	"gstreco/internal/report"
)

// RecoInput is the input for one reconciliation request. Offset is optional;
// when set, the set-off is computed and included in the report.
type RecoInput struct {
	Format      domain.BooksFormat
	Portal      *ingest.Upload
	Odoo        ingest.OdooSlots
	Zoho        *ingest.Upload
	PeriodStart *time.Time
	Offset      *domain.OffsetInput
	RequestedBy string
	NotifyEmail string
}

// RecoOutput is returned after a successful run.
type RecoOutput struct {
	Run          *domain.RecoRun      `json:"run"`
	PortalCounts domain.RemarkCounts  `json:"portal_counts"`
	BooksCounts  domain.RemarkCounts  `json:"books_counts"`
	Offset       *domain.OffsetResult `json:"offset,omitempty"`
	DownloadURL  string               `json:"download_url"`
}

// RecoService runs the full reconciliation: ingest, match, report, store.
type RecoService interface {
	Run(ctx context.Context, input *RecoInput) (*RecoOutput, error)
}

type recoService struct {
	engine   *reco.Engine
	storage  port.ReportStorage
	runs     port.RunRepository
	notifier port.ReportNotifier
	timeout  time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewRecoService creates a new RecoService. A zero timeout disables the
// per-run deadline.
func NewRecoService(
	engine *reco.Engine,
	storage port.ReportStorage,
	runs port.RunRepository,
	notifier port.ReportNotifier,
	timeout time.Duration,
	log logrus.FieldLogger,
) RecoService {
	return &recoService{
		engine:   engine,
		storage:  storage,
		runs:     runs,
		notifier: notifier,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

func (s *recoService) Run(ctx context.Context, input *RecoInput) (*RecoOutput, error) {
	if input.Portal == nil {
		return nil, domain.ErrMissingPortalFile
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := s.now()

	portal, err := ingest.ReadPortal(*input.Portal)
	if err != nil {
		return nil, fmt.Errorf("reading portal file: %w", err)
	}
	books, err := readBooks(input)
	if err != nil {
		return nil, fmt.Errorf("reading books files: %w", err)
	}
	portalCount, booksCount := recordCount(portal), recordCount(books)
	if portalCount == 0 && booksCount == 0 {
		return nil, domain.ErrNoRecords
	}

	outcome, err := Reconcile(ctx, s.engine, portal, books, input.PeriodStart, input.Offset)
	if err != nil {
		return nil, fmt.Errorf("reconciling: %w", err)
	}
	if outcome.CreditClamped {
		s.log.WithField("requested_by", input.RequestedBy).Warn("credit notes exceed matched credit; negative heads floored at zero")
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, report.Input{Portal: outcome.Portal, Books: outcome.Books, Offset: outcome.Offset}); err != nil {
		return nil, fmt.Errorf("building report: %w", err)
	}

	run := &domain.RecoRun{
		ID:            uuid.New(),
		BooksFormat:   input.Format,
		PeriodStart:   input.PeriodStart,
		PortalRecords: portalCount,
		BooksRecords:  booksCount,
		RequestedBy:   input.RequestedBy,
		CreatedAt:     s.now().UTC(),
	}
	if run.PortalSummary, err = json.Marshal(outcome.PortalCounts); err != nil {
		return nil, fmt.Errorf("encoding portal summary: %w", err)
	}
	if run.BooksSummary, err = json.Marshal(outcome.BooksCounts); err != nil {
		return nil, fmt.Errorf("encoding books summary: %w", err)
	}
	run.ReportKey = fmt.Sprintf("reports/%s/%s.xlsx", run.CreatedAt.Format("2006/01"), run.ID)

	if _, err := s.storage.PutReport(ctx, run.ReportKey, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if err := s.runs.Create(ctx, run); err != nil {
		if delErr := s.storage.DeleteReport(context.WithoutCancel(ctx), run.ReportKey); delErr != nil {
			s.log.WithError(delErr).WithField("report_key", run.ReportKey).Error("failed to remove orphaned report")
		}
		return nil, fmt.Errorf("saving run: %w", err)
	}

	url, err := s.storage.ReportURL(ctx, run.ReportKey)
	if err != nil {
		return nil, fmt.Errorf("presigning report: %w", err)
	}

	if input.NotifyEmail != "" {
		if err := s.notifier.NotifyReportReady(ctx, input.NotifyEmail, run, url); err != nil {
			s.log.WithError(err).WithField("run_id", run.ID).Warn("report notification failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"run_id":           run.ID,
		"books_format":     run.BooksFormat,
		"portal_records":   portalCount,
		"books_records":    booksCount,
		"portal_unmatched": outcome.PortalCounts.Unmatched(),
		"books_unmatched":  outcome.BooksCounts.Unmatched(),
		"duration_ms":      s.now().Sub(started).Milliseconds(),
	}).Info("reconciliation complete")

	return &RecoOutput{
		Run:          run,
		PortalCounts: outcome.PortalCounts,
		BooksCounts:  outcome.BooksCounts,
		Offset:       outcome.Offset,
		DownloadURL:  url,
	}, nil
}

func readBooks(input *RecoInput) ([]domain.RecordSet, error) {
	switch input.Format {
	case domain.BooksFormatOdoo:
		return ingest.ReadOdoo(input.Odoo)
	case domain.BooksFormatZoho:
		if input.Zoho == nil {
			return nil, domain.ErrMissingBooksFile
		}
		return ingest.ReadZoho(*input.Zoho)
	default:
		return nil, fmt.Errorf("books format %q: %w", input.Format, domain.ErrInvalidInput)
	}
}
