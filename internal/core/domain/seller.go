package domain

import "time"

// Seller represents the issuing party of an invoice.
// Sellers are identified by their tax code; the display name follows
// whatever the portal reported most recently.
type Seller struct {
	// ID is the store-assigned row identifier.
	ID int64

	// TaxCode is the unique natural key (string, may carry leading zeros).
	TaxCode string

	// Name is the display name. Latest-wins on re-ingestion.
	Name string

	// CreatedAt is when the seller was first sighted.
	CreatedAt time.Time

	// UpdatedAt is when the seller was last refreshed.
	UpdatedAt time.Time
}
