package driving

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// Querier exposes read-only views of the entity store to external
// callers (CLI listing, export, reporting).
type Querier interface {
	// Query returns invoices matching the filter in the store's natural
	// order.
	Query(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)

	// Stats summarises the store.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}
