package ports

import (
	"context"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// CreateRequirementInput carries a submitted requirement.
type CreateRequirementInput struct {
	RequirementID string
	Source        string
	Type          string
	Description   string
	Category      string
	Priority      string
	Tags          []string
	IsDuplicate   bool
	Notes         string
}

// RequirementService defines requirement use cases.
type RequirementService interface {
	Create(ctx context.Context, in CreateRequirementInput) (*domain.Requirement, error)
	List(ctx context.Context, filter RequirementFilter) ([]*domain.Requirement, error)
	Get(ctx context.Context, id string) (*domain.Requirement, error)
	Delete(ctx context.Context, id string) error
}
