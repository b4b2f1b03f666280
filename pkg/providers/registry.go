package providers

import (
	"context"
	"fmt"

	"github.com/ascot-inc/intake-hub/pkg/repositories"
)

// Registry maps configured provider records to adapter instances.
// The name-keyed map is built once at startup and read-only thereafter.
type Registry struct {
	adapters     map[string]Adapter
	providerRepo repositories.ProviderRepository
}

// NewRegistry builds a registry from the available adapter instances.
func NewRegistry(providerRepo repositories.ProviderRepository, adapters ...Adapter) *Registry {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Registry{
		adapters:     byName,
		providerRepo: providerRepo,
	}
}

// GetPrioritized returns adapters for all enabled providers in intake order
// (ascending priority, creation time breaking ties). Provider records with no
// matching adapter are skipped: a configured-but-unimplemented provider is
// excluded, not an error.
func (r *Registry) GetPrioritized(ctx context.Context) ([]Adapter, error) {
	records, err := r.providerRepo.ListEnabledByPriority(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider records: %w", err)
	}

	adapters := make([]Adapter, 0, len(records))
	for _, rec := range records {
		if a, ok := r.adapters[rec.Name]; ok {
			adapters = append(adapters, a)
		}
	}
	return adapters, nil
}

// GetByName returns the adapter registered under a provider name.
func (r *Registry) GetByName(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}
