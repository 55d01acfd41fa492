package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Ensure TaxProviderStore implements the interface.
var _ driven.TaxProviderStore = (*TaxProviderStore)(nil)

// TaxProviderStore is an in-memory implementation of driven.TaxProviderStore.
type TaxProviderStore struct {
	mu        sync.RWMutex
	nextID    int64
	providers map[string]domain.TaxProvider
}

// NewTaxProviderStore creates a new in-memory tax provider store.
func NewTaxProviderStore() *TaxProviderStore {
	return &TaxProviderStore{
		nextID:    1,
		providers: make(map[string]domain.TaxProvider),
	}
}

// GetByName retrieves a provider by name.
func (s *TaxProviderStore) GetByName(_ context.Context, name string) (*domain.TaxProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	provider, ok := s.providers[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &provider, nil
}

// Save stores the provider, refreshing its attributes when the name exists.
func (s *TaxProviderStore) Save(_ context.Context, provider *domain.TaxProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if provider.Status == "" {
		provider.Status = domain.StatusTBD
	}

	now := time.Now().UTC()
	if existing, ok := s.providers[provider.Name]; ok {
		provider.ID = existing.ID
		provider.CreatedAt = existing.CreatedAt
		provider.UpdatedAt = now
	} else {
		provider.ID = s.nextID
		s.nextID++
		provider.CreatedAt = now
		provider.UpdatedAt = now
	}
	s.providers[provider.Name] = *provider
	return nil
}

// List returns all providers ordered by name.
func (s *TaxProviderStore) List(_ context.Context) ([]domain.TaxProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.TaxProvider, 0, len(s.providers))
	for _, provider := range s.providers {
		result = append(result, provider)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
