package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/models"
)

func TestNormalizeBuildsEnvelope(t *testing.T) {
	svc := NewNormalizationService(&mockNormalizedRepo{}, zap.NewNop())

	raw := &models.RawRecord{
		ProviderID: uuid.New(),
		DataType:   models.DataTypeRacecard,
		ExternalID: "1.23456",
		RawPayload: `{"marketName":"2:30 Ascot"}`,
		Checksum:   "abc123",
	}

	rec, err := svc.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if rec.EntityID != "1.23456" {
		t.Errorf("expected entity id from external id, got %q", rec.EntityID)
	}
	if rec.EntityType != models.DataTypeRacecard {
		t.Errorf("expected RACECARD, got %s", rec.EntityType)
	}
	if rec.SourceProviderID == nil || *rec.SourceProviderID != raw.ProviderID {
		t.Error("expected source provider attribution")
	}

	var envelope map[string]any
	if err := json.Unmarshal([]byte(rec.NormalizedPayload), &envelope); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if envelope["original_checksum"] != "abc123" {
		t.Errorf("expected checksum in envelope, got %v", envelope["original_checksum"])
	}
	if envelope["schema_version"] != SchemaVersion {
		t.Errorf("expected schema version %s, got %v", SchemaVersion, envelope["schema_version"])
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok || data["marketName"] != "2:30 Ascot" {
		t.Errorf("expected structured data in envelope, got %v", envelope["data"])
	}
}

func TestNormalizeGeneratesEntityIDWhenMissing(t *testing.T) {
	svc := NewNormalizationService(&mockNormalizedRepo{}, zap.NewNop())

	raw := &models.RawRecord{
		ProviderID: uuid.New(),
		DataType:   models.DataTypeRacecard,
		RawPayload: `{"no":"identifier"}`,
		Checksum:   "abc123",
	}

	rec, err := svc.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.EntityID == "" {
		t.Error("expected a generated entity id")
	}
	if _, err := uuid.Parse(rec.EntityID); err != nil {
		t.Errorf("generated entity id should be a UUID, got %q", rec.EntityID)
	}
}

func TestNormalizeRejectsInvalidPayload(t *testing.T) {
	svc := NewNormalizationService(&mockNormalizedRepo{}, zap.NewNop())

	raw := &models.RawRecord{RawPayload: "not json"}
	if _, err := svc.Normalize(raw); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestNormalizeAndSaveReportsDuplicateAsSkipped(t *testing.T) {
	repo := &mockNormalizedRepo{dedup: true}
	svc := NewNormalizationService(repo, zap.NewNop())

	raw := &models.RawRecord{
		ProviderID: uuid.New(),
		DataType:   models.DataTypeRacecard,
		ExternalID: "race-1",
		RawPayload: `{"a":1}`,
		Checksum:   "sum",
	}

	first, err := svc.NormalizeAndSave(context.Background(), raw)
	if err != nil {
		t.Fatalf("NormalizeAndSave: %v", err)
	}
	if first.Outcome != NormalizeSaved {
		t.Errorf("expected saved, got %s", first.Outcome)
	}

	second, err := svc.NormalizeAndSave(context.Background(), raw)
	if err != nil {
		t.Fatalf("NormalizeAndSave duplicate: %v", err)
	}
	if second.Outcome != NormalizeSkipped {
		t.Errorf("expected skipped, got %s", second.Outcome)
	}
	if len(repo.records) != 1 {
		t.Errorf("expected one stored record, got %d", len(repo.records))
	}
}
