package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ascot-inc/intake-hub/pkg/apperrors"
	"github.com/ascot-inc/intake-hub/pkg/models"
)

type mockProviderService struct {
	providers   []*models.Provider
	registerErr error
}

func (m *mockProviderService) Register(ctx context.Context, p *models.Provider) (*models.Provider, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	p.ID = models.DeriveProviderID(p.Name)
	p.CreatedAt = time.Now()
	m.providers = append(m.providers, p)
	return p, nil
}

func (m *mockProviderService) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	for _, p := range m.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProviderService) List(ctx context.Context) ([]*models.Provider, error) {
	return m.providers, nil
}

type mockCredentialService struct {
	saved   map[uuid.UUID]map[string]string
	saveErr error
}

func (m *mockCredentialService) Save(ctx context.Context, providerID uuid.UUID, fields map[string]string) (*models.CredentialBundle, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[uuid.UUID]map[string]string)
	}
	m.saved[providerID] = fields
	return &models.CredentialBundle{
		ID:            uuid.New(),
		ProviderID:    providerID,
		EncryptedData: "ciphertext",
		LastRotatedAt: time.Now(),
	}, nil
}

func (m *mockCredentialService) Get(ctx context.Context, providerID uuid.UUID) (map[string]string, error) {
	fields, ok := m.saved[providerID]
	if !ok {
		return nil, apperrors.ErrCredentialNotFound
	}
	return fields, nil
}

type mockIntakeService struct {
	lines       []string
	gotDate     time.Time
	gotProvider string
}

func (m *mockIntakeService) IntakeRacecards(ctx context.Context, date time.Time, providerName string) []string {
	m.gotDate = date
	m.gotProvider = providerName
	return m.lines
}
