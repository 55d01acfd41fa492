package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Ensure InvoiceStore implements the interface.
var _ driven.InvoiceStore = (*InvoiceStore)(nil)

// InvoiceStore is an in-memory implementation of driven.InvoiceStore.
// Seller and provider joins are resolved against the sibling stores
// when they are provided.
type InvoiceStore struct {
	mu       sync.RWMutex
	nextID   int64
	invoices map[domain.InvoiceKey]domain.Invoice

	sellers   *SellerStore
	providers *TaxProviderStore
}

// NewInvoiceStore creates a new in-memory invoice store. The seller and
// provider stores may be nil when join fields are not needed.
func NewInvoiceStore(sellers *SellerStore, providers *TaxProviderStore) *InvoiceStore {
	return &InvoiceStore{
		nextID:    1,
		invoices:  make(map[domain.InvoiceKey]domain.Invoice),
		sellers:   sellers,
		providers: providers,
	}
}

// GetByKey retrieves an invoice by its natural key.
func (s *InvoiceStore) GetByKey(_ context.Context, key domain.InvoiceKey) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.join(&inv)
	return &inv, nil
}

// GetBySeriesNumber retrieves an invoice by series and number alone.
func (s *InvoiceStore) GetBySeriesNumber(_ context.Context, series, number string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.Key.Series == series && inv.Key.Number == number {
			s.join(&inv)
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

// InsertBatch inserts invoices, skipping natural-key collisions.
func (s *InvoiceStore) InsertBatch(_ context.Context, invoices []*domain.Invoice) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, inv := range invoices {
		if _, ok := s.invoices[inv.Key]; ok {
			continue
		}
		stored := *inv
		stored.ID = s.nextID
		s.nextID++
		s.invoices[inv.Key] = stored
		inserted++
	}
	return inserted, nil
}

// SetTrackingCode fills the tracking code only when none is stored.
func (s *InvoiceStore) SetTrackingCode(_ context.Context, key domain.InvoiceKey, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[key]
	if !ok || inv.TrackingCode != "" {
		return false, nil
	}
	inv.TrackingCode = code
	s.invoices[key] = inv
	return true, nil
}

// MarkDownloaded flips IsDownloaded.
func (s *InvoiceStore) MarkDownloaded(_ context.Context, key domain.InvoiceKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[key]
	if !ok {
		return domain.ErrNotFound
	}
	inv.IsDownloaded = true
	s.invoices[key] = inv
	return nil
}

// List returns invoices matching the filter in issue-timestamp order
// then natural key.
func (s *InvoiceStore) List(_ context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Invoice
	for _, inv := range s.invoices {
		if !filter.From.IsZero() && inv.IssuedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && inv.IssuedAt.After(filter.To) {
			continue
		}
		if filter.OnlyPending && inv.IsDownloaded {
			continue
		}
		s.join(&inv)
		if filter.SellerTaxCode != "" {
			if inv.Seller == nil || inv.Seller.TaxCode != filter.SellerTaxCode {
				continue
			}
		}
		result = append(result, inv)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.IssuedAt.Equal(b.IssuedAt) {
			return a.IssuedAt.Before(b.IssuedAt)
		}
		if a.Key.Form != b.Key.Form {
			return a.Key.Form < b.Key.Form
		}
		if a.Key.Series != b.Key.Series {
			return a.Key.Series < b.Key.Series
		}
		return a.Key.Number < b.Key.Number
	})
	return result, nil
}

// Stats summarises the store.
func (s *InvoiceStore) Stats(_ context.Context) (*domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.StoreStats{TotalInvoices: len(s.invoices)}
	byProvider := make(map[string]int)
	for _, inv := range s.invoices {
		if inv.IsDownloaded {
			stats.Downloaded++
		}
		if stats.EarliestIssued.IsZero() || inv.IssuedAt.Before(stats.EarliestIssued) {
			stats.EarliestIssued = inv.IssuedAt
		}
		if inv.IssuedAt.After(stats.LatestIssued) {
			stats.LatestIssued = inv.IssuedAt
		}
		if inv.TaxProviderID != 0 && s.providers != nil {
			s.providers.mu.RLock()
			for name, p := range s.providers.providers {
				if p.ID == inv.TaxProviderID {
					byProvider[name]++
				}
			}
			s.providers.mu.RUnlock()
		}
	}

	if s.sellers != nil {
		s.sellers.mu.RLock()
		stats.Sellers = len(s.sellers.sellers)
		s.sellers.mu.RUnlock()
	}
	if s.providers != nil {
		s.providers.mu.RLock()
		stats.TaxProviders = len(s.providers.providers)
		s.providers.mu.RUnlock()
	}

	names := make([]string, 0, len(byProvider))
	for name := range byProvider {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats.ByProvider = append(stats.ByProvider, domain.ProviderCount{
			Provider: name,
			Count:    byProvider[name],
		})
	}
	return stats, nil
}

// join resolves the seller and provider rows for the invoice.
func (s *InvoiceStore) join(inv *domain.Invoice) {
	if s.sellers != nil {
		s.sellers.mu.RLock()
		for _, seller := range s.sellers.sellers {
			if seller.ID == inv.SellerID {
				copied := seller
				inv.Seller = &copied
				break
			}
		}
		s.sellers.mu.RUnlock()
	}
	if s.providers != nil && inv.TaxProviderID != 0 {
		s.providers.mu.RLock()
		for _, provider := range s.providers.providers {
			if provider.ID == inv.TaxProviderID {
				copied := provider
				inv.TaxProvider = &copied
				break
			}
		}
		s.providers.mu.RUnlock()
	}
}
