package domain

import "time"

// TaxProviderStatus tracks whether a retrieval route for the provider
// has been worked out.
type TaxProviderStatus string

const (
	// StatusTBD means no retrieval route is known yet.
	StatusTBD TaxProviderStatus = "TBD"

	// StatusResolved means a retrieval route exists for this provider.
	StatusResolved TaxProviderStatus = "RESOLVED"
)

// TaxProvider represents the intermediary (T-VAN) through which an invoice
// was issued. Its name is derived from the portal's source marker by
// stripping the marker prefix; status, note and search URL come from the
// operator profile, not from raw records.
type TaxProvider struct {
	// ID is the store-assigned row identifier.
	ID int64

	// Name is the unique natural key.
	Name string

	// Status is TBD until an operator confirms a retrieval route.
	Status TaxProviderStatus

	// Note is free-form operator text.
	Note string

	// SearchURL is the provider's public invoice lookup page.
	SearchURL string

	// CreatedAt is when the provider was first sighted.
	CreatedAt time.Time

	// UpdatedAt is when the provider attributes were last refreshed.
	UpdatedAt time.Time
}

// SourceMarkerPrefix marks records issued through a T-VAN intermediary.
// The provider name is the marker with this prefix stripped.
const SourceMarkerPrefix = "tvan_"
