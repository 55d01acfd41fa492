package domain

import "time"

// IngestResult reports what one ingestion run changed.
type IngestResult struct {
	// RunID correlates log lines with this run.
	RunID string

	// NewSellers counts sellers created on first sighting.
	NewSellers int

	// UpdatedSellers counts sellers whose stored name was refreshed.
	UpdatedSellers int

	// NewTaxProviders counts providers created on first sighting.
	NewTaxProviders int

	// UpdatedTaxProviders counts providers whose attributes changed on
	// refresh from the profile.
	UpdatedTaxProviders int

	// NewInvoices counts invoices inserted.
	NewInvoices int

	// TrackingCodeFills counts existing invoices whose empty tracking
	// code was filled by this run.
	TrackingCodeFills int

	// SkippedInvoices counts records whose invoice already existed and
	// contributed nothing new.
	SkippedInvoices int

	// DroppedRecords counts records unusable for ingestion (no seller
	// identity or incomplete natural key).
	DroppedRecords int
}

// ReconcileResult reports a flat-file tracking-code backfill run.
type ReconcileResult struct {
	// Entries is the number of well-formed lines read.
	Entries int

	// Malformed is the number of lines that could not be parsed.
	Malformed int

	// Filled counts invoices whose tracking code was set.
	Filled int

	// AlreadySet counts matches left untouched because a tracking code
	// was already stored.
	AlreadySet int

	// Unmatched counts entries with no invoice in the store.
	Unmatched int
}

// ProviderCount pairs a tax provider with its invoice count.
type ProviderCount struct {
	Provider string
	Count    int
}

// StoreStats summarises the entity store for reporting.
type StoreStats struct {
	// TotalInvoices is the invoice row count.
	TotalInvoices int

	// Downloaded is the count of invoices with IsDownloaded=true.
	Downloaded int

	// Sellers is the seller row count.
	Sellers int

	// TaxProviders is the provider row count.
	TaxProviders int

	// EarliestIssued and LatestIssued bound the stored issue timestamps.
	EarliestIssued time.Time
	LatestIssued   time.Time

	// ByProvider lists invoice counts per tax provider.
	ByProvider []ProviderCount
}
