package driving

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// Downloader walks pending invoices and advances their download state.
// Each invoice resolves to one outcome; skips and failures never abort
// the run.
type Downloader interface {
	Run(ctx context.Context, filter domain.InvoiceFilter) (*domain.DownloadSummary, error)
}

// Reconciler backfills tracking codes from a seller-specific flat-file
// export. Entries match invoices on (series, number); fills are
// monotonic, exactly like ingestion.
type Reconciler interface {
	Reconcile(ctx context.Context, path string) (*domain.ReconcileResult, error)
}
