package driven

import (
	"context"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// DocumentRetriever fetches the document bytes for one invoice from its
// origin portal. One variant exists per tax provider; how a variant
// obtains the bytes (plain HTTP, browser automation, manual verification
// steps) is opaque to the core.
//
// Retrieve must honour ctx cancellation: several variants block on a
// human-paced verification step with a bounded timeout.
type DocumentRetriever interface {
	// Name returns the tax provider name this variant serves.
	Name() string

	// Retrieve attempts to fetch the invoice's document bytes.
	Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error)
}

// DocumentValidator checks that retrieved bytes form a well-formed
// document. Validation is structural ("this parses as the expected
// format"), not merely "bytes were received".
type DocumentValidator interface {
	// Validate returns nil when the bytes are a well-formed document,
	// or an error wrapping domain.ErrValidationFailed.
	Validate(data []byte) error
}

// ArtifactStore persists retrieved documents under deterministic names.
type ArtifactStore interface {
	// Exists reports whether an artifact with the given name is present.
	Exists(name string) bool

	// Write stores the artifact atomically.
	Write(name string, data []byte) error

	// Delete removes the artifact. Removing an absent artifact is not
	// an error.
	Delete(name string) error

	// Path returns the absolute location of the named artifact.
	Path(name string) string
}
