package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driving"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// TrackingReconciler backfills tracking codes from a seller-provided
// flat-file export. Entries are matched on (series, number) because the
// exports carry no form code; fills are monotonic, like ingestion.
type TrackingReconciler struct {
	invoices driven.InvoiceStore
	log      zerolog.Logger
}

var _ driving.Reconciler = (*TrackingReconciler)(nil)

// NewTrackingReconciler creates the reconciler.
func NewTrackingReconciler(invoices driven.InvoiceStore) *TrackingReconciler {
	return &TrackingReconciler{
		invoices: invoices,
		log:      logger.With("reconcile"),
	}
}

// flatEntry is one parsed export line: series_number_date_trackingCode.
type flatEntry struct {
	series   string
	number   string
	tracking string
}

// parseFlatFile splits an export into entries. Entries are separated by
// newlines or commas and may be wrapped in square brackets; each entry
// has four underscore-separated parts.
func parseFlatFile(data []byte) (entries []flatEntry, malformed int) {
	text := strings.NewReplacer("[", "", "]", "", "\r", "").Replace(string(data))
	for _, line := range strings.Split(text, "\n") {
		for _, raw := range strings.Split(line, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			parts := strings.Split(raw, "_")
			if len(parts) != 4 {
				malformed++
				continue
			}
			e := flatEntry{
				series:   strings.TrimSpace(parts[0]),
				number:   strings.TrimSpace(parts[1]),
				tracking: strings.TrimSpace(parts[3]),
			}
			if e.series == "" || e.number == "" || e.tracking == "" {
				malformed++
				continue
			}
			entries = append(entries, e)
		}
	}
	return entries, malformed
}

// Reconcile reads the export at path and fills tracking codes for
// matching invoices.
func (r *TrackingReconciler) Reconcile(ctx context.Context, path string) (*domain.ReconcileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tracking export: %w", err)
	}

	entries, malformed := parseFlatFile(data)
	res := &domain.ReconcileResult{Entries: len(entries), Malformed: malformed}
	r.log.Info().Str("path", path).Int("entries", res.Entries).
		Int("malformed", res.Malformed).Msg("starting reconciliation")

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		inv, err := r.invoices.GetBySeriesNumber(ctx, e.series, e.number)
		switch {
		case isNotFound(err):
			res.Unmatched++
			r.log.Debug().Str("series", e.series).Str("number", e.number).
				Msg("no invoice for export entry")
			continue
		case err != nil:
			return res, fmt.Errorf("looking up invoice %s/%s: %w", e.series, e.number, err)
		}

		if inv.TrackingCode != "" {
			res.AlreadySet++
			continue
		}

		written, err := r.invoices.SetTrackingCode(ctx, inv.Key, e.tracking)
		if err != nil {
			return res, fmt.Errorf("filling tracking code for %s: %w", inv.Key, err)
		}
		if written {
			res.Filled++
		} else {
			res.AlreadySet++
		}
	}

	r.log.Info().Int("filled", res.Filled).Int("already_set", res.AlreadySet).
		Int("unmatched", res.Unmatched).Msg("reconciliation complete")
	return res, nil
}
