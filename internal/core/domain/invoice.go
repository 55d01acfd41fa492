package domain

import (
	"fmt"
	"time"
)

// InvoiceKey is the composite natural key of an invoice. All components
// are textual: invoice numbers may carry leading zeros and must never be
// treated as integers.
type InvoiceKey struct {
	// Form is the form template code.
	Form string

	// Series is the series code.
	Series string

	// Number is the invoice number within the series.
	Number string
}

// Valid reports whether all key components are present.
func (k InvoiceKey) Valid() bool {
	return k.Form != "" && k.Series != "" && k.Number != ""
}

// String renders the key for logs and error messages.
func (k InvoiceKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Form, k.Series, k.Number)
}

// Invoice is the core entity tracked by the harvester. It is created by
// ingestion and its download state is advanced by the orchestrator.
type Invoice struct {
	// ID is the store-assigned row identifier.
	ID int64

	// Key is the globally unique natural key.
	Key InvoiceKey

	// IssuedAt is the portal-supplied issue timestamp.
	IssuedAt time.Time

	// TrackingCode is the portal-issued lookup reference required to
	// retrieve the document. Monotonic-fill: set once, never overwritten.
	TrackingCode string

	// SellerID links to the required Seller.
	SellerID int64

	// TaxProviderID links to the optional TaxProvider. Zero means the
	// origin is unknown.
	TaxProviderID int64

	// IsDownloaded is flipped by the download orchestrator, or by
	// reconciliation when the target artifact already exists.
	IsDownloaded bool

	// Seller is populated on reads that join the seller row.
	Seller *Seller

	// TaxProvider is populated on reads that join the provider row.
	// Nil when the origin is unknown.
	TaxProvider *TaxProvider
}

// InvoiceFilter narrows invoice listings. Zero values mean "no filter".
type InvoiceFilter struct {
	// From is the inclusive lower bound on IssuedAt.
	From time.Time

	// To is the inclusive upper bound on IssuedAt.
	To time.Time

	// SellerTaxCode restricts to one seller.
	SellerTaxCode string

	// OnlyPending restricts to invoices with IsDownloaded=false.
	OnlyPending bool
}

// DateRange is an inclusive day-granularity range used by the fetcher.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Valid reports whether the range is well-formed.
func (r DateRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.To.Before(r.From)
}
