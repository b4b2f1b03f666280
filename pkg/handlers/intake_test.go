package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func intakeMux(svc *mockIntakeService) *http.ServeMux {
	mux := http.NewServeMux()
	NewIntakeHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestIntakeRun(t *testing.T) {
	svc := &mockIntakeService{lines: []string{
		"Starting intake for Sportradar",
		"Processed Sportradar item",
	}}
	mux := intakeMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/intake?date=2026-04-01&provider=Sportradar", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var lines []string
	if err := json.NewDecoder(rec.Body).Decode(&lines); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %v", lines)
	}

	if svc.gotProvider != "Sportradar" {
		t.Errorf("expected provider forwarded, got %q", svc.gotProvider)
	}
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !svc.gotDate.Equal(want) {
		t.Errorf("expected date %v, got %v", want, svc.gotDate)
	}
}

func TestIntakeRunDefaultsToToday(t *testing.T) {
	svc := &mockIntakeService{lines: []string{}}
	mux := intakeMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/intake", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotProvider != "" {
		t.Errorf("expected all providers, got %q", svc.gotProvider)
	}
	if time.Since(svc.gotDate) > time.Minute {
		t.Errorf("expected date to default to now, got %v", svc.gotDate)
	}
}

func TestIntakeRunInvalidDate(t *testing.T) {
	mux := intakeMux(&mockIntakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/intake?date=01-04-2026", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
