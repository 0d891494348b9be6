package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type allocationStore interface {
	FindByID(ctx context.Context, id int64) (*models.AllocationSlot, error)
	List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationSlot, error)
}

// AllocationService reads the committed allocation catalog.
type AllocationService struct {
	repo   allocationStore
	logger *zap.Logger
}

// NewAllocationService constructs the service.
func NewAllocationService(repo allocationStore, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{repo: repo, logger: logger}
}

// Get returns one allocation.
func (s *AllocationService) Get(ctx context.Context, id int64) (*models.AllocationSlot, error) {
	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}
	return allocation, nil
}

// List returns allocations matching the filter.
func (s *AllocationService) List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationSlot, error) {
	allocations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocations")
	}
	return allocations, nil
}
