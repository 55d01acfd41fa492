package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// defaultRetryWait is the pause between retrieval attempts. Attempt
// latency is dominated by the retrieval itself (often a human-paced
// step), so the wait stays constant instead of growing.
const defaultRetryWait = 2 * time.Second

// RetrievalWrapper drives one retriever variant with structural
// validation and bounded retry. An attempt succeeds only when the
// retrieved bytes are written under the target name AND validate; an
// artifact that fails validation is deleted before the next attempt.
type RetrievalWrapper struct {
	validator   driven.DocumentValidator
	artifacts   driven.ArtifactStore
	maxAttempts int
	retryWait   time.Duration
	log         zerolog.Logger
}

// NewRetrievalWrapper creates the wrapper. maxAttempts bounds attempts
// per invoice, defaulting when non-positive.
func NewRetrievalWrapper(validator driven.DocumentValidator, artifacts driven.ArtifactStore, maxAttempts int) *RetrievalWrapper {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	return &RetrievalWrapper{
		validator:   validator,
		artifacts:   artifacts,
		maxAttempts: maxAttempts,
		retryWait:   defaultRetryWait,
		log:         logger.With("retrieval"),
	}
}

// Retrieve runs the full attempt cycle for one invoice. On return with
// nil error the validated artifact exists under targetName.
func (w *RetrievalWrapper) Retrieve(ctx context.Context, retriever driven.DocumentRetriever, inv domain.Invoice, targetName string) error {
	attempt := 0
	op := func() error {
		attempt++
		w.log.Debug().Stringer("invoice", inv.Key).Str("variant", retriever.Name()).
			Int("attempt", attempt).Msg("retrieval attempt")

		data, err := retriever.Retrieve(ctx, inv)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}

		if err := w.artifacts.Write(targetName, data); err != nil {
			// A failing artifact store is environmental, not transient.
			return backoff.Permanent(fmt.Errorf("writing %s: %w", targetName, err))
		}

		if err := w.validator.Validate(data); err != nil {
			if delErr := w.artifacts.Delete(targetName); delErr != nil {
				w.log.Warn().Str("artifact", targetName).Err(delErr).
					Msg("could not remove invalid artifact")
			}
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.retryWait), uint64(w.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("%w after %d attempts: %v", domain.ErrRetrieveFailed, attempt, err)
	}
	return nil
}
