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

var (
	requirementTypes = []string{domain.RequirementFunctional, domain.RequirementNonFunctional}
	priorities       = []string{domain.PriorityMust, domain.PriorityShould, domain.PriorityCould, domain.PriorityWont}
)

type RequirementService struct {
	repo   ports.RequirementRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewRequirementService(repo ports.RequirementRepository, logger zerolog.Logger) *RequirementService {
	return &RequirementService{repo: repo, logger: logger, now: time.Now}
}

func (s *RequirementService) Create(ctx context.Context, in ports.CreateRequirementInput) (*domain.Requirement, error) {
	if err := checkFilter(ports.RequirementFilter{Type: in.Type, Priority: in.Priority}); err != nil {
		return nil, err
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now().UTC()
	r := &domain.Requirement{
		RequirementID: orNewID(in.RequirementID),
		Source:        in.Source,
		Type:          in.Type,
		Description:   in.Description,
		Category:      in.Category,
		Priority:      in.Priority,
		Tags:          tags,
		IsDuplicate:   in.IsDuplicate,
		Notes:         in.Notes,
		CreatedBy:     actorID(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RequirementService) List(ctx context.Context, filter ports.RequirementFilter) ([]*domain.Requirement, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *RequirementService) Get(ctx context.Context, id string) (*domain.Requirement, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RequirementService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// checkFilter validates optional type and priority values.
func checkFilter(f ports.RequirementFilter) error {
	if f.Type != "" && !contains(requirementTypes, f.Type) {
		return fmt.Errorf("%w: type must be one of: %s", domain.ErrValidation, strings.Join(requirementTypes, " "))
	}
	if f.Priority != "" && !contains(priorities, f.Priority) {
		return fmt.Errorf("%w: priority must be one of: %s", domain.ErrValidation, strings.Join(priorities, ", "))
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
