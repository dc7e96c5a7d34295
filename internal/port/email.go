package port

import (
	"context"

	"gstreco/internal/domain"
)

// ReportNotifier tells a user that their reconciliation report is ready.
type ReportNotifier interface {
	NotifyReportReady(ctx context.Context, toEmail string, run *domain.RecoRun, downloadURL string) error
}
