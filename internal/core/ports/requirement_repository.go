package ports

import (
	"context"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// RequirementFilter narrows List results. Empty fields do not filter.
type RequirementFilter struct {
	Type     string
	Priority string
}

// RequirementRepository defines persistence operations for requirements.
type RequirementRepository interface {
	Create(ctx context.Context, r *domain.Requirement) error
	List(ctx context.Context, filter RequirementFilter) ([]*domain.Requirement, error)
	FindByID(ctx context.Context, id string) (*domain.Requirement, error)
	Delete(ctx context.Context, id string) error
}
