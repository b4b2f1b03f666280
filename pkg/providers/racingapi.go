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
	racingAPIName    = "The Racing API"
	racingAPIBaseURL = "https://api.theracingapi.com/v1"
)

// RacingAPIAdapter binds The Racing API over HTTP Basic auth.
// The provider serves racecards, results and form; live odds are not offered
// and return an empty list.
type RacingAPIAdapter struct {
	providerID uuid.UUID
	baseURL    string
	client     *http.Client
	creds      CredentialSource
}

// NewRacingAPIAdapter creates The Racing API adapter.
// baseURL overrides the production endpoint when non-empty (used by tests).
func NewRacingAPIAdapter(creds CredentialSource, client *http.Client, baseURL string) *RacingAPIAdapter {
	if baseURL == "" {
		baseURL = racingAPIBaseURL
	}
	return &RacingAPIAdapter{
		providerID: models.DeriveProviderID(racingAPIName),
		baseURL:    baseURL,
		client:     client,
		creds:      creds,
	}
}

func (a *RacingAPIAdapter) Name() string { return racingAPIName }

func (a *RacingAPIAdapter) FetchRacecards(ctx context.Context, date time.Time) ([]Document, error) {
	var docs []Document
	err := a.get(ctx, fmt.Sprintf("/racecards?date=%s", date.Format("2006-01-02")), &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FetchLiveOdds is not offered by this provider.
func (a *RacingAPIAdapter) FetchLiveOdds(ctx context.Context, raceID string) ([]Document, error) {
	return nil, nil
}

func (a *RacingAPIAdapter) FetchResults(ctx context.Context, raceID string) (Document, error) {
	var doc Document
	err := a.get(ctx, "/results/"+url.PathEscape(raceID), &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *RacingAPIAdapter) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	if _, err := requiredField(creds, racingAPIName, "username"); err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	if _, err := requiredField(creds, racingAPIName, "password"); err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	return HealthStatus{Healthy: true, ResponseTimeMs: time.Since(start).Milliseconds()}
}

func (a *RacingAPIAdapter) get(ctx context.Context, path string, out any) error {
	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return err
	}
	username, err := requiredField(creds, racingAPIName, "username")
	if err != nil {
		return err
	}
	password, err := requiredField(creds, racingAPIName, "password")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := a.client.Do(req)
	if err != nil {
		return &FetchError{Provider: racingAPIName, Message: "request failed", Err: err}
	}

	return decodeJSON(racingAPIName, resp, out)
}
