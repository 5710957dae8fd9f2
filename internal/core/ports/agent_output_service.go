package ports

import (
	"context"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// CreateAgentOutputInput carries a submitted agent output.
type CreateAgentOutputInput struct {
	AgentOutputID         string
	DocumentID            string
	AgentType             string
	ExtractedRequirements []map[string]any
}

// AgentOutputService defines agent output use cases.
type AgentOutputService interface {
	Create(ctx context.Context, in CreateAgentOutputInput) (*domain.AgentOutput, error)
	List(ctx context.Context, documentID string) ([]*domain.AgentOutput, error)
	Get(ctx context.Context, id string) (*domain.AgentOutput, error)
	Delete(ctx context.Context, id string) error
}
