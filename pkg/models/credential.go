package models

import (
	"time"

	"github.com/google/uuid"
)

// CredentialBundle is one provider's encrypted credential set.
// EncryptedData holds an authenticated token of a serialized key->value map;
// plaintext never leaves the service layer. At most one live bundle exists per
// provider - saves for the same provider overwrite in place.
type CredentialBundle struct {
	ID            uuid.UUID `json:"id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	EncryptedData string    `json:"-"`
	LastRotatedAt time.Time `json:"last_rotated_at"`
}
