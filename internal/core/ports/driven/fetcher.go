package driven

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// RecordFetcher pulls raw invoice records from the portal for a date
// range. Implementations walk every fetch dimension (endpoint x status
// filter) page by page and concatenate the results without deduplication;
// dedup is the ingestion pipeline's and the store's job.
//
// A transport failure aborts only the dimension it occurred in. Records
// accumulated before the failure are always returned; the error joins the
// per-dimension failures so callers can report them.
type RecordFetcher interface {
	Fetch(ctx context.Context, dr domain.DateRange) ([]domain.RawRecord, error)
}

// TokenProvider supplies the bearer credential for portal API calls.
// The core never authenticates against the portal itself.
type TokenProvider interface {
	// Token returns a valid bearer token, or domain.ErrAuthRequired
	// when none is available.
	Token(ctx context.Context) (string, error)
}
