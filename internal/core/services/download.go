package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driving"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// DownloadOrchestrator walks pending invoices and advances their download
// state. Every invoice resolves to exactly one outcome; a skip or failure
// moves on to the next invoice, never aborts the run.
type DownloadOrchestrator struct {
	profile   *domain.Profile
	invoices  driven.InvoiceStore
	registry  *Registry
	retrieval *RetrievalWrapper
	artifacts driven.ArtifactStore
	delay     time.Duration
	log       zerolog.Logger
}

var _ driving.Downloader = (*DownloadOrchestrator)(nil)

// NewDownloadOrchestrator creates the orchestrator. The inter-invoice
// pace comes from the profile's download delay.
func NewDownloadOrchestrator(profile *domain.Profile, invoices driven.InvoiceStore, registry *Registry, retrieval *RetrievalWrapper, artifacts driven.ArtifactStore) *DownloadOrchestrator {
	return &DownloadOrchestrator{
		profile:   profile,
		invoices:  invoices,
		registry:  registry,
		retrieval: retrieval,
		artifacts: artifacts,
		delay:     profile.DownloadDelay,
		log:       logger.With("download"),
	}
}

// Run processes every pending invoice matching the filter. Download state
// is committed per invoice, so an interrupted run keeps its progress.
func (o *DownloadOrchestrator) Run(ctx context.Context, filter domain.InvoiceFilter) (*domain.DownloadSummary, error) {
	filter.OnlyPending = true
	pending, err := o.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing pending invoices: %w", err)
	}

	summary := domain.NewDownloadSummary(uuid.NewString())
	log := o.log.With().Str("run_id", summary.RunID).Logger()
	log.Info().Int("pending", len(pending)).Msg("starting download run")

	for _, inv := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome := o.process(ctx, inv)
		summary.Add(outcome)
		o.logOutcome(log, outcome)

		if err := o.pause(ctx); err != nil {
			return summary, err
		}
	}

	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("reconciled", summary.Reconciled).
		Int("skipped", summary.SkippedTotal()).
		Int("failed", summary.Failed).
		Msg("download run complete")
	return summary, nil
}

// pause applies the fixed inter-invoice delay after each processed
// invoice, including the first.
func (o *DownloadOrchestrator) pause(ctx context.Context) error {
	timer := time.NewTimer(o.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// process resolves one invoice to its outcome.
func (o *DownloadOrchestrator) process(ctx context.Context, inv domain.Invoice) domain.InvoiceOutcome {
	outcome := domain.InvoiceOutcome{Key: inv.Key}

	targetName, err := TargetName(o.profile, inv)
	if err != nil {
		outcome.Status = domain.OutcomeSkipped
		outcome.Reason = domain.ReasonConfigurationError
		return outcome
	}

	if o.artifacts.Exists(targetName) {
		if err := o.invoices.MarkDownloaded(ctx, inv.Key); err != nil {
			outcome.Status = domain.OutcomeFailed
			outcome.Err = fmt.Sprintf("marking downloaded: %v", err)
			return outcome
		}
		outcome.Status = domain.OutcomeReconciled
		return outcome
	}

	if inv.TrackingCode == "" {
		outcome.Status = domain.OutcomeSkipped
		outcome.Reason = domain.ReasonMissingTrackingCode
		return outcome
	}

	if inv.TaxProvider == nil {
		outcome.Status = domain.OutcomeSkipped
		outcome.Reason = domain.ReasonNoTaxProvider
		return outcome
	}

	retriever, ok := o.registry.Lookup(inv.TaxProvider.Name)
	if !ok {
		outcome.Status = domain.OutcomeSkipped
		outcome.Reason = domain.ReasonNoRetriever
		return outcome
	}

	if err := o.retrieval.Retrieve(ctx, retriever, inv, targetName); err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = err.Error()
		return outcome
	}

	if err := o.invoices.MarkDownloaded(ctx, inv.Key); err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Err = fmt.Sprintf("marking downloaded: %v", err)
		return outcome
	}
	outcome.Status = domain.OutcomeSucceeded
	return outcome
}

func (o *DownloadOrchestrator) logOutcome(log zerolog.Logger, outcome domain.InvoiceOutcome) {
	ev := log.Info()
	if outcome.Status == domain.OutcomeFailed {
		ev = log.Error()
	}
	ev = ev.Stringer("invoice", outcome.Key).Stringer("status", outcome.Status)
	if outcome.Reason != "" {
		ev = ev.Str("reason", string(outcome.Reason))
	}
	if outcome.Err != "" {
		ev = ev.Str("error", outcome.Err)
	}
	ev.Msg("invoice processed")
}
