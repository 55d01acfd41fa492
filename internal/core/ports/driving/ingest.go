package driving

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// Ingestor merges raw portal records into the entity store.
// Ingestion is idempotent: re-running it over the same records creates
// nothing new.
type Ingestor interface {
	Ingest(ctx context.Context, records []domain.RawRecord) (*domain.IngestResult, error)
}
