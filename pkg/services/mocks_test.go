package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/models"
	"github.com/ascot-inc/intake-hub/pkg/providers"
)

// mockCredentialRepo keeps bundles in memory keyed by provider id.
type mockCredentialRepo struct {
	bundles   map[uuid.UUID]*models.CredentialBundle
	upsertErr error
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{bundles: make(map[uuid.UUID]*models.CredentialBundle)}
}

func (m *mockCredentialRepo) Upsert(ctx context.Context, providerID uuid.UUID, encryptedData string) (*models.CredentialBundle, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	bundle := &models.CredentialBundle{
		ID:            uuid.New(),
		ProviderID:    providerID,
		EncryptedData: encryptedData,
		LastRotatedAt: time.Now(),
	}
	if existing, ok := m.bundles[providerID]; ok {
		bundle.ID = existing.ID
	}
	m.bundles[providerID] = bundle
	return bundle, nil
}

func (m *mockCredentialRepo) GetByProvider(ctx context.Context, providerID uuid.UUID) (*models.CredentialBundle, error) {
	bundle, ok := m.bundles[providerID]
	if !ok {
		return nil, apperrors.ErrCredentialNotFound
	}
	return bundle, nil
}

// mockProviderRepo serves a fixed provider list.
type mockProviderRepo struct {
	providers []*models.Provider
	listErr   error
}

func (m *mockProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	for _, existing := range m.providers {
		if existing.Name == p.Name {
			return apperrors.ErrConflict
		}
	}
	if p.ID == uuid.Nil {
		p.ID = models.DeriveProviderID(p.Name)
	}
	m.providers = append(m.providers, p)
	return nil
}

func (m *mockProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	for _, p := range m.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProviderRepo) GetByName(ctx context.Context, name string) (*models.Provider, error) {
	for _, p := range m.providers {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProviderRepo) List(ctx context.Context) ([]*models.Provider, error) {
	return m.providers, nil
}

func (m *mockProviderRepo) ListEnabledByPriority(ctx context.Context) ([]*models.Provider, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var enabled []*models.Provider
	for _, p := range m.providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled, nil
}

// mockRawRepo records inserted raw records.
type mockRawRepo struct {
	records   []*models.RawRecord
	insertErr error
}

func (m *mockRawRepo) Insert(ctx context.Context, rec *models.RawRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	rec.ID = uuid.New()
	m.records = append(m.records, rec)
	return nil
}

// mockNormalizedRepo records inserts, optionally simulating duplicates.
type mockNormalizedRepo struct {
	records   []*models.NormalizedRecord
	seen      map[string]bool
	insertErr error
	dedup     bool // when set, a repeated entity id returns ErrConflict
}

func (m *mockNormalizedRepo) Insert(ctx context.Context, rec *models.NormalizedRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.dedup {
		if m.seen == nil {
			m.seen = make(map[string]bool)
		}
		key := string(rec.EntityType) + "/" + rec.EntityID
		if m.seen[key] {
			return apperrors.ErrConflict
		}
		m.seen[key] = true
	}
	rec.ID = uuid.New()
	m.records = append(m.records, rec)
	return nil
}

// fakeAdapter is a scriptable provider adapter.
type fakeAdapter struct {
	name      string
	racecards []providers.Document
	fetchErr  error
	health    providers.HealthStatus
	calls     int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) FetchRacecards(ctx context.Context, date time.Time) ([]providers.Document, error) {
	f.calls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.racecards, nil
}

func (f *fakeAdapter) FetchLiveOdds(ctx context.Context, raceID string) ([]providers.Document, error) {
	return nil, nil
}

func (f *fakeAdapter) FetchResults(ctx context.Context, raceID string) (providers.Document, error) {
	return providers.Document{}, nil
}

func (f *fakeAdapter) HealthCheck(ctx context.Context) providers.HealthStatus {
	return f.health
}
