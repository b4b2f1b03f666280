// Package services contains the use-case orchestration for intake-hub.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/crypto"
	"github.com/ascot-inc/intake-hub/pkg/models"
	"github.com/ascot-inc/intake-hub/pkg/repositories"
)

// CredentialService stores and retrieves per-provider credential bundles.
// Field maps are serialized, encrypted under the process-wide key and
// persisted as opaque tokens; plaintext is never logged or cached.
type CredentialService interface {
	// Save upserts the bundle for a provider: one live bundle per provider id,
	// each save overwrites the blob and bumps the rotation timestamp.
	Save(ctx context.Context, providerID uuid.UUID, fields map[string]string) (*models.CredentialBundle, error)

	// Get loads and decrypts the bundle for a provider.
	// Returns apperrors.ErrCredentialNotFound when no bundle exists and
	// crypto.ErrDecryptionFailed when the stored token does not verify.
	Get(ctx context.Context, providerID uuid.UUID) (map[string]string, error)
}

type credentialService struct {
	repo   repositories.CredentialRepository
	cipher *crypto.TokenCipher
	logger *zap.Logger
}

// NewCredentialService creates a credential service.
func NewCredentialService(repo repositories.CredentialRepository, cipher *crypto.TokenCipher, logger *zap.Logger) CredentialService {
	return &credentialService{
		repo:   repo,
		cipher: cipher,
		logger: logger,
	}
}

func (s *credentialService) Save(ctx context.Context, providerID uuid.UUID, fields map[string]string) (*models.CredentialBundle, error) {
	// encoding/json writes map keys in sorted order, so serialization is
	// deterministic for a given field set.
	plaintext, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credentials: %w", err)
	}

	token, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	bundle, err := s.repo.Upsert(ctx, providerID, token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Saved credentials",
		zap.String("provider_id", providerID.String()),
		zap.Int("field_count", len(fields)),
	)

	return bundle, nil
}

func (s *credentialService) Get(ctx context.Context, providerID uuid.UUID) (map[string]string, error) {
	bundle, err := s.repo.GetByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.cipher.Decrypt(bundle.EncryptedData)
	if err != nil {
		return nil, err
	}

	var fields map[string]string
	if err := json.Unmarshal(plaintext, &fields); err != nil {
		return nil, fmt.Errorf("failed to deserialize credentials: %w", err)
	}

	return fields, nil
}
