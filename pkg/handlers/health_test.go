package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/config"
)

func TestHealthEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(&config.Config{}, zap.NewNop()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("expected ok, got %q", rec.Body.String())
	}
}

func TestPingEndpoint(t *testing.T) {
	cfg := &config.Config{Version: "1.2.3", Env: "test"}
	mux := http.NewServeMux()
	NewHealthHandler(cfg, zap.NewNop()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got PingResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "ok" || got.Version != "1.2.3" || got.Service != "intake-hub" {
		t.Errorf("unexpected ping response: %+v", got)
	}
}
