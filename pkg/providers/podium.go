package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/ascot-inc/intake-hub/pkg/models"
)

const (
	podiumName    = "Podium Sports"
	podiumBaseURL = "https://api.podium-sports.com/v1"
)

// PodiumAdapter binds the Podium Sports fixtures REST API.
// Authentication is a static key in the x-api-key header.
type PodiumAdapter struct {
	providerID uuid.UUID
	baseURL    string
	client     *http.Client
	creds      CredentialSource
}

// NewPodiumAdapter creates the Podium Sports adapter.
// baseURL overrides the production endpoint when non-empty (used by tests).
func NewPodiumAdapter(creds CredentialSource, client *http.Client, baseURL string) *PodiumAdapter {
	if baseURL == "" {
		baseURL = podiumBaseURL
	}
	return &PodiumAdapter{
		providerID: models.DeriveProviderID(podiumName),
		baseURL:    baseURL,
		client:     client,
		creds:      creds,
	}
}

func (a *PodiumAdapter) Name() string { return podiumName }

func (a *PodiumAdapter) FetchRacecards(ctx context.Context, date time.Time) ([]Document, error) {
	var docs []Document
	err := a.get(ctx, fmt.Sprintf("/fixtures/horse-racing?date=%s", date.Format("2006-01-02")), &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FetchLiveOdds is push-only upstream; the pull API has nothing to offer.
func (a *PodiumAdapter) FetchLiveOdds(ctx context.Context, raceID string) ([]Document, error) {
	return nil, nil
}

func (a *PodiumAdapter) FetchResults(ctx context.Context, raceID string) (Document, error) {
	var doc Document
	err := a.get(ctx, "/results/"+url.PathEscape(raceID), &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *PodiumAdapter) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	if _, err := requiredField(creds, podiumName, "api_key"); err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	return HealthStatus{Healthy: true, ResponseTimeMs: time.Since(start).Milliseconds()}
}

func (a *PodiumAdapter) get(ctx context.Context, path string, out any) error {
	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return err
	}
	apiKey, err := requiredField(creds, podiumName, "api_key")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return &FetchError{Provider: podiumName, Message: "request failed", Err: err}
	}

	return decodeJSON(podiumName, resp, out)
}
