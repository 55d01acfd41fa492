package domain

import "time"

// TaxProviderEntry is the operator-supplied configuration for one tax
// provider. Fields left empty fall back to whatever is already stored.
type TaxProviderEntry struct {
	Status    TaxProviderStatus
	Note      string
	SearchURL string
}

// Profile is the read-only configuration value handed to every component
// at construction time. It is loaded once at process start and never
// mutated afterwards.
type Profile struct {
	// Name identifies the active profile.
	Name string

	// DatabasePath locates the SQLite entity store.
	DatabasePath string

	// DownloadDir is where retrieved documents are written.
	DownloadDir string

	// DataDir is where fetched raw-record files are written.
	DataDir string

	// PortalToken is an optional pre-captured bearer credential. When
	// empty the token is taken from the environment or prompted for.
	PortalToken string

	// PageSize is the fetch page size.
	PageSize int

	// BatchSize is the ingestion commit batch size.
	BatchSize int

	// MaxAttempts bounds retrieval attempts per invoice.
	MaxAttempts int

	// DownloadDelay is the fixed inter-invoice delay.
	DownloadDelay time.Duration

	// ManualStepTimeout bounds the wait for a human-paced verification
	// step inside a single retrieval attempt.
	ManualStepTimeout time.Duration

	// TaxProviders maps provider name to its configured attributes.
	TaxProviders map[string]TaxProviderEntry

	// SellerShortNames maps a seller's full display name to the short
	// name used in target artifact names.
	SellerShortNames map[string]string
}

// Defaults used when the profile file omits a value.
const (
	DefaultPageSize          = 50
	DefaultBatchSize         = 100
	DefaultMaxAttempts       = 3
	DefaultDownloadDelay     = time.Second
	DefaultManualStepTimeout = 90 * time.Second
)

// ApplyDefaults fills zero values with the package defaults.
func (p *Profile) ApplyDefaults() {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.BatchSize <= 0 {
		p.BatchSize = DefaultBatchSize
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.DownloadDelay <= 0 {
		p.DownloadDelay = DefaultDownloadDelay
	}
	if p.ManualStepTimeout <= 0 {
		p.ManualStepTimeout = DefaultManualStepTimeout
	}
	if p.TaxProviders == nil {
		p.TaxProviders = make(map[string]TaxProviderEntry)
	}
	if p.SellerShortNames == nil {
		p.SellerShortNames = make(map[string]string)
	}
}

// ShortName resolves the configured short name for a seller.
func (p *Profile) ShortName(sellerName string) (string, bool) {
	short, ok := p.SellerShortNames[sellerName]
	return short, ok
}

// ProviderEntry resolves the configured attributes for a tax provider.
func (p *Profile) ProviderEntry(name string) (TaxProviderEntry, bool) {
	e, ok := p.TaxProviders[name]
	return e, ok
}
