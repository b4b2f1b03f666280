package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ascot-inc/intake-hub/pkg/models"
)

const (
	betfairName   = "Betfair Exchange"
	betfairRPCURL = "https://api.betfair.com/exchange/betting/json-rpc/v1"

	// Horse Racing event type in the Sports APING.
	horseRacingEventType = "7"
)

// BetfairAdapter binds the exchange JSON-RPC API. Every call re-authenticates
// through the certificate session exchange and sends the resulting token in
// the X-Authentication header.
type BetfairAdapter struct {
	providerID uuid.UUID
	rpcURL     string
	client     *http.Client
	creds      CredentialSource
	session    *SessionService
}

// NewBetfairAdapter creates the Betfair Exchange adapter.
// rpcURL overrides the production endpoint when non-empty (used by tests).
func NewBetfairAdapter(creds CredentialSource, session *SessionService, client *http.Client, rpcURL string) *BetfairAdapter {
	if rpcURL == "" {
		rpcURL = betfairRPCURL
	}
	return &BetfairAdapter{
		providerID: models.DeriveProviderID(betfairName),
		rpcURL:     rpcURL,
		client:     client,
		creds:      creds,
		session:    session,
	}
}

func (a *BetfairAdapter) Name() string { return betfairName }

func (a *BetfairAdapter) FetchRacecards(ctx context.Context, date time.Time) ([]Document, error) {
	day := date.Truncate(24 * time.Hour)
	params := map[string]any{
		"filter": map[string]any{
			"eventTypeIds": []string{horseRacingEventType},
			"marketStartTime": map[string]string{
				"from": day.Format(time.RFC3339),
				"to":   day.AddDate(0, 0, 1).Format(time.RFC3339),
			},
		},
		"maxResults":       100,
		"marketProjection": []string{"RUNNER_METADATA", "MARKET_START_TIME"},
	}

	return a.call(ctx, "SportsAPING/v1.0/listMarketCatalogue", params)
}

func (a *BetfairAdapter) FetchLiveOdds(ctx context.Context, raceID string) ([]Document, error) {
	params := map[string]any{
		"marketIds": []string{raceID},
		"priceProjection": map[string]any{
			"priceData": []string{"EX_BEST_OFFERS"},
		},
	}

	return a.call(ctx, "SportsAPING/v1.0/listMarketBook", params)
}

// FetchResults is not reliably served by the exchange API for settled markets,
// so the feature is reported as unsupported.
func (a *BetfairAdapter) FetchResults(ctx context.Context, raceID string) (Document, error) {
	return Document{}, nil
}

// HealthCheck validates connectivity and credentials by performing the
// session exchange.
func (a *BetfairAdapter) HealthCheck(ctx context.Context) HealthStatus {
	start := time.Now()
	if _, err := a.session.GetSessionToken(ctx, a.providerID); err != nil {
		return HealthStatus{Healthy: false, Message: err.Error()}
	}
	return HealthStatus{Healthy: true, ResponseTimeMs: time.Since(start).Milliseconds()}
}

// call performs one authenticated JSON-RPC invocation and returns the result
// list. A non-list result yields an empty list.
func (a *BetfairAdapter) call(ctx context.Context, method string, params any) ([]Document, error) {
	token, err := a.session.GetSessionToken(ctx, a.providerID)
	if err != nil {
		return nil, err
	}

	creds, err := a.creds.Get(ctx, a.providerID)
	if err != nil {
		return nil, err
	}
	appKey, err := requiredField(creds, betfairName, "app_key")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(newRPCRequest(method, params))
	if err != nil {
		return nil, fmt.Errorf("failed to encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("X-Application", appKey)
	req.Header.Set("X-Authentication", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: betfairName, Message: "rpc call failed", Err: err}
	}

	var rpcResp rpcResponse
	if err := decodeJSON(betfairName, resp, &rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, &FetchError{Provider: betfairName, Message: "rpc error", Err: rpcResp.Error}
	}

	var result any
	if len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
			return nil, &FetchError{Provider: betfairName, Message: "malformed rpc result", Err: err}
		}
	}

	return documentList(result), nil
}
