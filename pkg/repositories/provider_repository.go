// Package repositories contains PostgreSQL data access for intake-hub.
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

// ProviderRepository defines the interface for provider record access.
type ProviderRepository interface {
	// Create inserts a new provider. Returns apperrors.ErrConflict when the name is taken.
	Create(ctx context.Context, p *models.Provider) error

	// GetByID retrieves a provider by id. Returns apperrors.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)

	// GetByName retrieves a provider by its unique name.
	GetByName(ctx context.Context, name string) (*models.Provider, error)

	// List retrieves all providers ordered by priority.
	List(ctx context.Context) ([]*models.Provider, error)

	// ListEnabledByPriority retrieves enabled providers in intake order:
	// ascending priority, ties broken by creation time.
	ListEnabledByPriority(ctx context.Context) ([]*models.Provider, error)
}

type providerRepository struct {
	db *database.DB
}

// NewProviderRepository creates a new provider repository.
func NewProviderRepository(db *database.DB) ProviderRepository {
	return &providerRepository{db: db}
}

const providerColumns = `id, name, base_url, auth_type, rate_limit_requests,
	rate_limit_window_seconds, cloudflare_tunnel, enabled, priority, created_at`

func (r *providerRepository) Create(ctx context.Context, p *models.Provider) error {
	if p.ID == uuid.Nil {
		p.ID = models.DeriveProviderID(p.Name)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO providers (id, name, base_url, auth_type, rate_limit_requests,
			rate_limit_window_seconds, cloudflare_tunnel, enabled, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.BaseURL,
		p.AuthType,
		p.RateLimitRequests,
		p.RateLimitWindowSeconds,
		p.CloudflareTunnel,
		p.Enabled,
		p.Priority,
		p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create provider: %w", err)
	}

	return nil
}

func (r *providerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *providerRepository) GetByName(ctx context.Context, name string) (*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE name = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, name))
}

func (r *providerRepository) List(ctx context.Context) ([]*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers ORDER BY priority, created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *providerRepository) ListEnabledByPriority(ctx context.Context) ([]*models.Provider, error) {
	query := `SELECT ` + providerColumns + `
		FROM providers
		WHERE enabled
		ORDER BY priority, created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled providers: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *providerRepository) scanOne(row pgx.Row) (*models.Provider, error) {
	var p models.Provider
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BaseURL,
		&p.AuthType,
		&p.RateLimitRequests,
		&p.RateLimitWindowSeconds,
		&p.CloudflareTunnel,
		&p.Enabled,
		&p.Priority,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &p, nil
}

func (r *providerRepository) scanAll(rows pgx.Rows) ([]*models.Provider, error) {
	var providers []*models.Provider
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read providers: %w", err)
	}
	return providers, nil
}
