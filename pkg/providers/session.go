package providers

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
)

// SessionService performs the certificate-authenticated login exchange used by
// providers that hand out short-lived session tokens.
//
// Every call performs a full mTLS handshake and login round trip - tokens are
// deliberately not cached, so stale sessions can never be replayed after a
// credential rotation.
type SessionService struct {
	creds    CredentialSource
	loginURL string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSessionService creates a session service for the given cert-login endpoint.
func NewSessionService(creds CredentialSource, loginURL string, timeout time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{
		creds:    creds,
		loginURL: loginURL,
		timeout:  timeout,
		logger:   logger,
	}
}

// GetSessionToken loads the provider's credentials, builds an in-memory client
// identity from the stored certificate and key, and exchanges username/password
// for a session token over mutual TLS.
func (s *SessionService) GetSessionToken(ctx context.Context, providerID uuid.UUID) (string, error) {
	creds, err := s.creds.Get(ctx, providerID)
	if err != nil {
		return "", err
	}

	appKey, err := requiredField(creds, "certificate session", "app_key")
	if err != nil {
		return "", err
	}
	username, err := requiredField(creds, "certificate session", "username")
	if err != nil {
		return "", err
	}
	password, err := requiredField(creds, "certificate session", "password")
	if err != nil {
		return "", err
	}
	certPEM, err := requiredField(creds, "certificate session", "cert_pem")
	if err != nil {
		return "", err
	}
	keyPEM, err := requiredField(creds, "certificate session", "key_pem")
	if err != nil {
		return "", err
	}

	cert, err := tls.X509KeyPair([]byte(normalizePEM(certPEM)), []byte(normalizePEM(keyPEM)))
	if err != nil {
		return "", fmt.Errorf("failed to load client certificate: %w", err)
	}

	client := &http.Client{
		Timeout: s.timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		},
	}
	defer client.CloseIdleConnections()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("X-Application", appKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login request failed: %v", apperrors.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: login returned status %d", apperrors.ErrAuthentication, resp.StatusCode)
	}

	var login struct {
		SessionToken string `json:"sessionToken"`
		LoginStatus  string `json:"loginStatus"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", fmt.Errorf("%w: malformed login response: %v", apperrors.ErrAuthentication, err)
	}

	if login.SessionToken == "" {
		s.logger.Warn("Certificate login rejected", zap.String("login_status", login.LoginStatus))
		return "", fmt.Errorf("%w: no session token in response (status %q)", apperrors.ErrAuthentication, login.LoginStatus)
	}

	return login.SessionToken, nil
}

// normalizePEM restores armor line breaks that get flattened when PEM blocks
// travel through JSON credential submissions.
func normalizePEM(pem string) string {
	normalized := strings.ReplaceAll(pem, `\n`, "\n")
	normalized = strings.TrimSpace(normalized)
	return normalized + "\n"
}
