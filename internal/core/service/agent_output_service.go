package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

type AgentOutputService struct {
	repo   ports.AgentOutputRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAgentOutputService(repo ports.AgentOutputRepository, logger zerolog.Logger) *AgentOutputService {
	return &AgentOutputService{repo: repo, logger: logger, now: time.Now}
}

// Create stores an agent output exactly as submitted.
func (s *AgentOutputService) Create(ctx context.Context, in ports.CreateAgentOutputInput) (*domain.AgentOutput, error) {
	documentID := strings.TrimSpace(in.DocumentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document_id is required", domain.ErrValidation)
	}
	reqs := in.ExtractedRequirements
	if reqs == nil {
		reqs = []map[string]any{}
	}

	now := s.now().UTC()
	out := &domain.AgentOutput{
		AgentOutputID:         orNewID(in.AgentOutputID),
		DocumentID:            documentID,
		AgentType:             in.AgentType,
		ExtractedRequirements: reqs,
		CreatedBy:             actorID(ctx),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, out); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("agent_output_id", out.AgentOutputID).Int("requirements", len(reqs)).Msg("agent output stored")
	return out, nil
}

func (s *AgentOutputService) List(ctx context.Context, documentID string) ([]*domain.AgentOutput, error) {
	return s.repo.List(ctx, strings.TrimSpace(documentID))
}

func (s *AgentOutputService) Get(ctx context.Context, id string) (*domain.AgentOutput, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AgentOutputService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
