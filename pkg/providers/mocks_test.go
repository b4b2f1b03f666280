package providers

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/models"
)

// stubCredentials serves one fixed field map for every provider.
type stubCredentials struct {
	fields map[string]string
	err    error
}

func (s *stubCredentials) Get(ctx context.Context, providerID uuid.UUID) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}

// stubProviderRepo serves a fixed provider list for registry tests.
type stubProviderRepo struct {
	providers []*models.Provider
	listErr   error
}

func (s *stubProviderRepo) Create(ctx context.Context, p *models.Provider) error { return nil }

func (s *stubProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubProviderRepo) GetByName(ctx context.Context, name string) (*models.Provider, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubProviderRepo) List(ctx context.Context) ([]*models.Provider, error) {
	return s.providers, nil
}

func (s *stubProviderRepo) ListEnabledByPriority(ctx context.Context) ([]*models.Provider, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var enabled []*models.Provider
	for _, p := range s.providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled, nil
}

// testClientCertPEM generates a throwaway self-signed certificate and key for
// exercising the certificate login path.
func testClientCertPEM(t *testing.T) (certPEM, keyPEM string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "intake-hub-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	return certPEM, keyPEM
}

func sessionCredentials(t *testing.T) map[string]string {
	t.Helper()
	certPEM, keyPEM := testClientCertPEM(t)
	return map[string]string{
		"app_key":  "test-app-key",
		"username": "punter",
		"password": "secret",
		"cert_pem": certPEM,
		"key_pem":  keyPEM,
	}
}
