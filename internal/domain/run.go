package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecoRun is the persisted summary of one reconciliation request.
type RecoRun struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	BooksFormat   BooksFormat     `db:"books_format" json:"books_format"`
	PeriodStart   *time.Time      `db:"period_start" json:"period_start,omitempty"`
	PortalRecords int             `db:"portal_records" json:"portal_records"`
	BooksRecords  int             `db:"books_records" json:"books_records"`
	PortalSummary json.RawMessage `db:"portal_summary" json:"portal_summary"`
	BooksSummary  json.RawMessage `db:"books_summary" json:"books_summary"`
	ReportKey     string          `db:"report_key" json:"-"`
	RequestedBy   string          `db:"requested_by" json:"requested_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
