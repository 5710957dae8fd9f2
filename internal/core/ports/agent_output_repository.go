package ports

import (
	"context"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// AgentOutputRepository defines persistence operations for agent outputs.
type AgentOutputRepository interface {
	Create(ctx context.Context, o *domain.AgentOutput) error
	// List returns all outputs, or only those of documentID when non-empty.
	List(ctx context.Context, documentID string) ([]*domain.AgentOutput, error)
	FindByID(ctx context.Context, id string) (*domain.AgentOutput, error)
	Delete(ctx context.Context, id string) error
}
