package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/models"
	"github.com/ascot-inc/intake-hub/pkg/repositories"
)

// SchemaVersion marks the normalized envelope layout.
const SchemaVersion = "1.0"

// NormalizeOutcome is the per-item result of a normalization attempt.
// Conflicts are an explicit Skipped outcome rather than a silent catch, so
// the behavior stays inspectable in logs, metrics and tests.
type NormalizeOutcome string

const (
	NormalizeSaved   NormalizeOutcome = "saved"
	NormalizeSkipped NormalizeOutcome = "skipped"
)

// NormalizeResult carries the outcome and, when saved, the stored record.
type NormalizeResult struct {
	Outcome NormalizeOutcome
	Record  *models.NormalizedRecord
}

// NormalizationService wraps raw documents in the versioned common envelope
// and persists them.
type NormalizationService interface {
	// Normalize builds the normalized record for a raw record without persisting it.
	Normalize(raw *models.RawRecord) (*models.NormalizedRecord, error)

	// NormalizeAndSave normalizes and persists. A duplicate-insert conflict is
	// reported as a Skipped result, never as an error - one bad item must not
	// abort the batch.
	NormalizeAndSave(ctx context.Context, raw *models.RawRecord) (NormalizeResult, error)
}

type normalizationService struct {
	repo   repositories.NormalizedRecordRepository
	logger *zap.Logger
}

// NewNormalizationService creates a normalization service.
func NewNormalizationService(repo repositories.NormalizedRecordRepository, logger *zap.Logger) NormalizationService {
	return &normalizationService{
		repo:   repo,
		logger: logger,
	}
}

func (s *normalizationService) Normalize(raw *models.RawRecord) (*models.NormalizedRecord, error) {
	// Re-parse the stored payload so the envelope embeds structured data,
	// not a double-encoded string.
	var data any
	if err := json.Unmarshal([]byte(raw.RawPayload), &data); err != nil {
		return nil, fmt.Errorf("raw payload is not valid JSON: %w", err)
	}

	envelope := map[string]any{
		"original_checksum": raw.Checksum,
		"data":              data,
		"schema_version":    SchemaVersion,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	entityID := raw.ExternalID
	if entityID == "" {
		// No extraction strategy produced a business id; fall back to a
		// generated one so the record is still addressable.
		entityID = uuid.NewString()
	}

	providerID := raw.ProviderID
	return &models.NormalizedRecord{
		SourceProviderID:  &providerID,
		EntityID:          entityID,
		EntityType:        raw.DataType,
		NormalizedPayload: string(payload),
	}, nil
}

func (s *normalizationService) NormalizeAndSave(ctx context.Context, raw *models.RawRecord) (NormalizeResult, error) {
	rec, err := s.Normalize(raw)
	if err != nil {
		return NormalizeResult{}, err
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Info("Skipped duplicate normalized record",
				zap.String("entity_id", rec.EntityID),
				zap.String("entity_type", string(rec.EntityType)),
			)
			return NormalizeResult{Outcome: NormalizeSkipped}, nil
		}
		return NormalizeResult{}, err
	}

	return NormalizeResult{Outcome: NormalizeSaved, Record: rec}, nil
}
