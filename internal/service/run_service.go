package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// RunService reads back the history of reconciliation runs.
type RunService interface {
	List(ctx context.Context, offset, limit int) ([]domain.RecoRun, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.RecoRun, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
}

type runService struct {
	runs    port.RunRepository
	storage port.ReportStorage
}

// NewRunService creates a new RunService.
func NewRunService(runs port.RunRepository, storage port.ReportStorage) RunService {
	return &runService{runs: runs, storage: storage}
}

func (s *runService) List(ctx context.Context, offset, limit int) ([]domain.RecoRun, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}
	return s.runs.List(ctx, offset, limit)
}

func (s *runService) Get(ctx context.Context, id uuid.UUID) (*domain.RecoRun, error) {
	return s.runs.GetByID(ctx, id)
}

func (s *runService) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.storage.ReportURL(ctx, run.ReportKey)
	if err != nil {
		return "", fmt.Errorf("runService.DownloadURL: %w", err)
	}
	return url, nil
}
