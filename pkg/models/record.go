package models

import (
	"time"

	"github.com/google/uuid"
)

// DataType classifies fetched racing documents.
type DataType string

const (
	DataTypeRacecard DataType = "RACECARD"
	DataTypeOdds     DataType = "ODDS"
	DataTypeResult   DataType = "RESULT"
)

// RawRecord is one fetched document exactly as a provider returned it.
// Immutable once written. Checksum is a content hash used for dedup tracking,
// not a storage key.
type RawRecord struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	DataType   DataType  `json:"data_type"`
	ExternalID string    `json:"external_id,omitempty"` // provider-native id, may be unknown
	RawPayload string    `json:"raw_payload"`
	Checksum   string    `json:"checksum"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NormalizedRecord wraps a raw document in the common envelope.
// SourceProviderID is nullable: normalization may run without attribution.
type NormalizedRecord struct {
	ID                uuid.UUID  `json:"id"`
	SourceProviderID  *uuid.UUID `json:"source_provider_id,omitempty"`
	EntityID          string     `json:"entity_id"`
	EntityType        DataType   `json:"entity_type"`
	NormalizedPayload string     `json:"normalized_payload"`
	NormalizedAt      time.Time  `json:"normalized_at"`
}
