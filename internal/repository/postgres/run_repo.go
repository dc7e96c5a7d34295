package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.RecoRun) error {
	query := `
		INSERT INTO reco_runs (
			id, books_format, period_start, portal_records, books_records,
			portal_summary, books_summary, report_key, requested_by, created_at
		) VALUES (
			:id, :books_format, :period_start, :portal_records, :books_records,
			:portal_summary, :books_summary, :report_key, :requested_by, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecoRun, error) {
	var run domain.RecoRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM reco_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit int) ([]domain.RecoRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reco_runs"); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.RecoRun
	err := r.db.SelectContext(ctx, &runs,
		"SELECT * FROM reco_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}

func (r *runRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
