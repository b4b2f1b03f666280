package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
)

func newSessionForTest(t *testing.T, handler http.HandlerFunc, creds map[string]string) *SessionService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSessionService(&stubCredentials{fields: creds}, server.URL, 5*time.Second, zap.NewNop())
}

func TestGetSessionToken(t *testing.T) {
	var gotAppKey, gotUsername, gotPassword string
	session := newSessionForTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotAppKey = r.Header.Get("X-Application")
		_ = r.ParseForm()
		gotUsername = r.PostFormValue("username")
		gotPassword = r.PostFormValue("password")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessionToken":"sess-token-1","loginStatus":"SUCCESS"}`))
	}, sessionCredentials(t))

	token, err := session.GetSessionToken(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetSessionToken: %v", err)
	}
	if token != "sess-token-1" {
		t.Errorf("expected session token, got %q", token)
	}
	if gotAppKey != "test-app-key" {
		t.Errorf("expected app key header, got %q", gotAppKey)
	}
	if gotUsername != "punter" || gotPassword != "secret" {
		t.Errorf("expected form credentials, got %q/%q", gotUsername, gotPassword)
	}
}

func TestGetSessionTokenRejectedLogin(t *testing.T) {
	session := newSessionForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessionToken":"","loginStatus":"INVALID_USERNAME_OR_PASSWORD"}`))
	}, sessionCredentials(t))

	_, err := session.GetSessionToken(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "INVALID_USERNAME_OR_PASSWORD") {
		t.Errorf("expected login status in error, got %v", err)
	}
}

func TestGetSessionTokenUpstreamError(t *testing.T) {
	session := newSessionForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, sessionCredentials(t))

	_, err := session.GetSessionToken(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}
}

func TestGetSessionTokenMissingCredentialField(t *testing.T) {
	creds := sessionCredentials(t)
	delete(creds, "cert_pem")

	session := newSessionForTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("login endpoint must not be called without a full credential set")
	}, creds)

	_, err := session.GetSessionToken(context.Background(), uuid.New())
	if err == nil || !strings.Contains(err.Error(), "cert_pem") {
		t.Errorf("expected missing field error naming cert_pem, got %v", err)
	}
}

func TestGetSessionTokenFlattenedPEM(t *testing.T) {
	creds := sessionCredentials(t)
	// Simulate PEM blocks that traveled through JSON with escaped newlines.
	creds["cert_pem"] = strings.ReplaceAll(creds["cert_pem"], "\n", `\n`)
	creds["key_pem"] = strings.ReplaceAll(creds["key_pem"], "\n", `\n`)

	session := newSessionForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessionToken":"sess-token-2","loginStatus":"SUCCESS"}`))
	}, creds)

	token, err := session.GetSessionToken(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetSessionToken with flattened PEM: %v", err)
	}
	if token != "sess-token-2" {
		t.Errorf("expected session token, got %q", token)
	}
}

func TestGetSessionTokenCredentialLookupFailure(t *testing.T) {
	session := NewSessionService(&stubCredentials{err: apperrors.ErrCredentialNotFound},
		"http://127.0.0.1:0", time.Second, zap.NewNop())

	_, err := session.GetSessionToken(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrCredentialNotFound) {
		t.Errorf("expected ErrCredentialNotFound, got %v", err)
	}
}
