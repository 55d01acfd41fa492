package services

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driving"
)

// QueryService exposes read-only store views to driving adapters.
type QueryService struct {
	invoices driven.InvoiceStore
}

var _ driving.Querier = (*QueryService)(nil)

// NewQueryService creates the service.
func NewQueryService(invoices driven.InvoiceStore) *QueryService {
	return &QueryService{invoices: invoices}
}

// Query returns invoices matching the filter.
func (s *QueryService) Query(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	return s.invoices.List(ctx, filter)
}

// Stats summarises the store.
func (s *QueryService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	return s.invoices.Stats(ctx)
}
