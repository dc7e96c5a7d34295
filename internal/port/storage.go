package port

import (
	"context"
	"io"
)

// StoredReport describes a report written to object storage.
type StoredReport struct {
	Key      string
	Location string
	ETag     string
}

// ReportStorage keeps generated workbooks and hands out time-limited links.
type ReportStorage interface {
	PutReport(ctx context.Context, key string, body io.Reader) (*StoredReport, error)
	DeleteReport(ctx context.Context, key string) error
	ReportURL(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}
