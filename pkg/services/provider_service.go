package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/models"
	"github.com/ascot-inc/intake-hub/pkg/repositories"
)

// ProviderService manages provider registrations.
type ProviderService interface {
	// Register creates a provider record. The id is derived from the name, so
	// registering the same name twice yields apperrors.ErrConflict.
	Register(ctx context.Context, p *models.Provider) (*models.Provider, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	List(ctx context.Context) ([]*models.Provider, error)
}

type providerService struct {
	repo   repositories.ProviderRepository
	logger *zap.Logger
}

// NewProviderService creates a provider service.
func NewProviderService(repo repositories.ProviderRepository, logger *zap.Logger) ProviderService {
	return &providerService{
		repo:   repo,
		logger: logger,
	}
}

func (s *providerService) Register(ctx context.Context, p *models.Provider) (*models.Provider, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	if !models.ValidAuthType(p.AuthType) {
		return nil, fmt.Errorf("unknown auth type %q", p.AuthType)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Registered provider",
		zap.String("provider_id", p.ID.String()),
		zap.String("name", p.Name),
		zap.String("auth_type", string(p.AuthType)),
	)
	return p, nil
}

func (s *providerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *providerService) List(ctx context.Context) ([]*models.Provider, error) {
	return s.repo.List(ctx)
}
