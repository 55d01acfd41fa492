// Package memory provides in-memory implementations of the driven
// storage ports, used by service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Ensure SellerStore implements the interface.
var _ driven.SellerStore = (*SellerStore)(nil)

// SellerStore is an in-memory implementation of driven.SellerStore.
type SellerStore struct {
	mu      sync.RWMutex
	nextID  int64
	sellers map[string]domain.Seller
}

// NewSellerStore creates a new in-memory seller store.
func NewSellerStore() *SellerStore {
	return &SellerStore{
		nextID:  1,
		sellers: make(map[string]domain.Seller),
	}
}

// GetByTaxCode retrieves a seller by tax code.
func (s *SellerStore) GetByTaxCode(_ context.Context, taxCode string) (*domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seller, ok := s.sellers[taxCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &seller, nil
}

// Save stores the seller, updating its name when the tax code exists.
func (s *SellerStore) Save(_ context.Context, seller *domain.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.sellers[seller.TaxCode]; ok {
		seller.ID = existing.ID
		seller.CreatedAt = existing.CreatedAt
		seller.UpdatedAt = now
	} else {
		seller.ID = s.nextID
		s.nextID++
		seller.CreatedAt = now
		seller.UpdatedAt = now
	}
	s.sellers[seller.TaxCode] = *seller
	return nil
}

// List returns all sellers ordered by tax code.
func (s *SellerStore) List(_ context.Context) ([]domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Seller, 0, len(s.sellers))
	for _, seller := range s.sellers {
		result = append(result, seller)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TaxCode < result[j].TaxCode
	})
	return result, nil
}
