// Package providers contains the uniform adapter contract for upstream racing
// data providers and one concrete adapter per upstream transport/auth binding.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Document is one opaque racing document as returned by a provider.
// Field-level mapping is deliberately out of scope - normalization wraps
// documents in a common envelope without transforming them.
type Document map[string]any

// HealthStatus is the result of a single adapter health check.
type HealthStatus struct {
	Healthy        bool   `json:"healthy"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Message        string `json:"message,omitempty"`
}

// CredentialSource supplies decrypted credential fields on demand.
// Adapters must request credentials fresh for every call and never cache
// plaintext between calls.
type CredentialSource interface {
	Get(ctx context.Context, providerID uuid.UUID) (map[string]string, error)
}

// Adapter is the capability contract every upstream provider binding implements.
// A feature the upstream does not offer returns an empty result, not an error.
// Adapters never retry - callers decide retry policy per operation.
type Adapter interface {
	// Name returns the human provider name. models.DeriveProviderID(Name())
	// yields the id credentials and raw records are keyed by.
	Name() string

	// FetchRacecards returns the racecards published for a date.
	FetchRacecards(ctx context.Context, date time.Time) ([]Document, error)

	// FetchLiveOdds returns current odds for a race.
	FetchLiveOdds(ctx context.Context, raceID string) ([]Document, error)

	// FetchResults returns the result document for a race.
	FetchResults(ctx context.Context, raceID string) (Document, error)

	// HealthCheck probes the provider and reports reachability.
	HealthCheck(ctx context.Context) HealthStatus
}

// requiredField extracts a credential field, failing fast with an error that
// names the missing key.
func requiredField(creds map[string]string, provider, key string) (string, error) {
	v, ok := creds[key]
	if !ok || v == "" {
		return "", fmt.Errorf("provider %s: missing credential field %q", provider, key)
	}
	return v, nil
}

// decodeJSON reads an HTTP response body, mapping non-2xx statuses and decode
// failures to a FetchError for the given provider.
func decodeJSON(provider string, resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{Provider: provider, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Provider: provider, Message: "malformed response", Err: err}
	}

	return nil
}

// documentList converts a decoded JSON value into a list of documents.
// Non-list or non-object shapes yield an empty list, mirroring the
// empty-result-on-unsupported convention.
func documentList(v any) []Document {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	docs := make([]Document, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			docs = append(docs, Document(m))
		}
	}
	return docs
}
