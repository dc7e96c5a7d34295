package port

import (
	"context"

	"github.com/google/uuid"

	"gstreco/internal/domain"
)

// RunRepository persists reconciliation run summaries.
type RunRepository interface {
	Create(ctx context.Context, run *domain.RecoRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecoRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.RecoRun, int, error)
	Ping(ctx context.Context) error
}
