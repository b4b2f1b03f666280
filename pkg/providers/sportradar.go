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
	sportradarName    = "Sportradar"
	sportradarBaseURL = "https://api.sportradar.com/horse-racing-v1"
)

// SportradarAdapter binds the Sportradar horse racing REST API.
// Authentication is an api_key query parameter on every request.
type SportradarAdapter struct {
	providerID uuid.UUID
	baseURL    string
	client     *http.Client
	creds      CredentialSource
}

// NewSportradarAdapter creates the Sportradar adapter.
// baseURL overrides the production endpoint when non-empty (used by tests).
func NewSportradarAdapter(creds CredentialSource, client *http.Client, baseURL string) *SportradarAdapter {
	if baseURL == "" {
		baseURL = sportradarBaseURL
	}
	return &SportradarAdapter{
		providerID: models.DeriveProviderID(sportradarName),
		baseURL:    baseURL,
		client:     client,
		creds:      creds,
	}
}

func (a *SportradarAdapter) Name() string { return sportradarName }

func (a *SportradarAdapter) FetchRacecards(ctx context.Context, date time.Time) ([]Document, error) {
	doc, err := a.get(ctx, fmt.Sprintf("/custom/schedule/%s.json", date.Format("2006-01-02")))
	if err != nil {
		return nil, err
	}
	return documentList(doc["sport_events"]), nil
}

func (a *SportradarAdapter) FetchLiveOdds(ctx context.Context, raceID string) ([]Document, error) {
	doc, err := a.get(ctx, fmt.Sprintf("/custom/probabilities/%s.json", url.PathEscape(raceID)))
	if err != nil {
		return nil, err
	}
	return documentList(doc["markets"]), nil
}

func (a *SportradarAdapter) FetchResults(ctx context.Context, raceID string) (Document, error) {
	return a.get(ctx, fmt.Sprintf("/custom/summary/%s.json", url.PathEscape(raceID)))
}

// HealthCheck verifies credentials are on file; the paid API has no free
// status endpoint worth burning quota on.
func (a *SportradarAdapter) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	if _, err := requiredField(creds, sportradarName, "api_key"); err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	return HealthStatus{Healthy: true, ResponseTimeMs: time.Since(start).Milliseconds()}
}

func (a *SportradarAdapter) get(ctx context.Context, path string) (Document, error) {
	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return nil, err
	}
	apiKey, err := requiredField(creds, sportradarName, "api_key")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("api_key", apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: sportradarName, Message: "request failed", Err: err}
	}

	var doc Document
	if err := decodeJSON(sportradarName, resp, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
