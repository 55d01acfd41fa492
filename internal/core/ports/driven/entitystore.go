package driven

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// SellerStore persists sellers keyed by tax code.
type SellerStore interface {
	// GetByTaxCode retrieves a seller by its natural key.
	// Returns domain.ErrNotFound when the tax code is unseen.
	GetByTaxCode(ctx context.Context, taxCode string) (*domain.Seller, error)

	// Save inserts the seller or updates its name when the tax code is
	// already stored. Sets seller.ID on insert.
	Save(ctx context.Context, seller *domain.Seller) error

	// List returns all sellers ordered by tax code.
	List(ctx context.Context) ([]domain.Seller, error)
}

// TaxProviderStore persists tax providers keyed by name.
type TaxProviderStore interface {
	// GetByName retrieves a provider by its natural key.
	// Returns domain.ErrNotFound when the name is unseen.
	GetByName(ctx context.Context, name string) (*domain.TaxProvider, error)

	// Save inserts the provider or refreshes its attributes when the
	// name is already stored. Sets provider.ID on insert.
	Save(ctx context.Context, provider *domain.TaxProvider) error

	// List returns all providers ordered by name.
	List(ctx context.Context) ([]domain.TaxProvider, error)
}

// InvoiceStore persists invoices keyed by their composite natural key.
// The store enforces UNIQUE(form, series, number); application-level
// pre-checks are an optimisation, not the enforcement point.
type InvoiceStore interface {
	// GetByKey retrieves an invoice by its natural key.
	// Returns domain.ErrNotFound when absent.
	GetByKey(ctx context.Context, key domain.InvoiceKey) (*domain.Invoice, error)

	// GetBySeriesNumber retrieves an invoice by series and number alone.
	// Used by flat-file reconciliation, whose entries carry no form code.
	// Returns domain.ErrNotFound when absent.
	GetBySeriesNumber(ctx context.Context, series, number string) (*domain.Invoice, error)

	// InsertBatch inserts the given invoices inside one transaction and
	// returns how many rows were actually created. Rows colliding with a
	// stored natural key are left untouched and not counted; the
	// collision never fails the batch.
	InsertBatch(ctx context.Context, invoices []*domain.Invoice) (int, error)

	// SetTrackingCode fills the tracking code of the identified invoice
	// only when none is stored yet (monotonic-fill). Returns true when
	// the value was written.
	SetTrackingCode(ctx context.Context, key domain.InvoiceKey, code string) (bool, error)

	// MarkDownloaded flips IsDownloaded to true and commits immediately.
	MarkDownloaded(ctx context.Context, key domain.InvoiceKey) error

	// List returns invoices matching the filter in the store's natural
	// order (issue timestamp, then natural key), with seller and tax
	// provider rows joined in.
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)

	// Stats summarises the store for reporting.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}
