package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/database"
	"github.com/ascot-inc/intake-hub/pkg/models"
)

// CredentialRepository persists encrypted credential bundles.
// Encryption/decryption is handled by the service layer - this repository only
// ever sees ciphertext.
type CredentialRepository interface {
	// Upsert stores the encrypted bundle for a provider, overwriting any
	// existing bundle and bumping last_rotated_at.
	Upsert(ctx context.Context, providerID uuid.UUID, encryptedData string) (*models.CredentialBundle, error)

	// GetByProvider retrieves the bundle for a provider.
	// Returns apperrors.ErrCredentialNotFound when no bundle exists.
	GetByProvider(ctx context.Context, providerID uuid.UUID) (*models.CredentialBundle, error)
}

type credentialRepository struct {
	db *database.DB
}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository(db *database.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Upsert(ctx context.Context, providerID uuid.UUID, encryptedData string) (*models.CredentialBundle, error) {
	// provider_id carries a unique constraint: at most one live bundle per provider.
	query := `
		INSERT INTO credentials (provider_id, encrypted_data, last_rotated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_id)
		DO UPDATE SET encrypted_data = EXCLUDED.encrypted_data, last_rotated_at = EXCLUDED.last_rotated_at
		RETURNING id, provider_id, encrypted_data, last_rotated_at`

	var bundle models.CredentialBundle
	err := r.db.QueryRow(ctx, query, providerID, encryptedData, time.Now()).Scan(
		&bundle.ID,
		&bundle.ProviderID,
		&bundle.EncryptedData,
		&bundle.LastRotatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// FK violation: the provider does not exist.
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to upsert credentials: %w", err)
	}

	return &bundle, nil
}

func (r *credentialRepository) GetByProvider(ctx context.Context, providerID uuid.UUID) (*models.CredentialBundle, error) {
	query := `
		SELECT id, provider_id, encrypted_data, last_rotated_at
		FROM credentials
		WHERE provider_id = $1`

	var bundle models.CredentialBundle
	err := r.db.QueryRow(ctx, query, providerID).Scan(
		&bundle.ID,
		&bundle.ProviderID,
		&bundle.EncryptedData,
		&bundle.LastRotatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	return &bundle, nil
}
