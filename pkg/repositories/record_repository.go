package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/database"
	"github.com/ascot-inc/intake-hub/pkg/models"
)

// RawRecordRepository persists fetched documents. Records are immutable once written.
type RawRecordRepository interface {
	Insert(ctx context.Context, rec *models.RawRecord) error
}

// NormalizedRecordRepository persists normalized envelopes.
type NormalizedRecordRepository interface {
	// Insert stores a normalized record. Returns apperrors.ErrConflict on a
	// duplicate-key violation so callers can treat it as a skip.
	Insert(ctx context.Context, rec *models.NormalizedRecord) error
}

type rawRecordRepository struct {
	db *database.DB
}

// NewRawRecordRepository creates a new raw record repository.
func NewRawRecordRepository(db *database.DB) RawRecordRepository {
	return &rawRecordRepository{db: db}
}

func (r *rawRecordRepository) Insert(ctx context.Context, rec *models.RawRecord) error {
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}

	query := `
		INSERT INTO raw_data (provider_id, data_type, external_id, raw_payload, checksum, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var externalID *string
	if rec.ExternalID != "" {
		externalID = &rec.ExternalID
	}

	err := r.db.QueryRow(ctx, query,
		rec.ProviderID,
		rec.DataType,
		externalID,
		rec.RawPayload,
		rec.Checksum,
		rec.FetchedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert raw record: %w", err)
	}

	return nil
}

type normalizedRecordRepository struct {
	db *database.DB
}

// NewNormalizedRecordRepository creates a new normalized record repository.
func NewNormalizedRecordRepository(db *database.DB) NormalizedRecordRepository {
	return &normalizedRecordRepository{db: db}
}

func (r *normalizedRecordRepository) Insert(ctx context.Context, rec *models.NormalizedRecord) error {
	if rec.NormalizedAt.IsZero() {
		rec.NormalizedAt = time.Now()
	}

	query := `
		INSERT INTO normalized_data (source_provider_id, entity_id, entity_type, normalized_payload, normalized_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		rec.SourceProviderID,
		rec.EntityID,
		rec.EntityType,
		rec.NormalizedPayload,
		rec.NormalizedAt,
	).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to insert normalized record: %w", err)
	}

	return nil
}
