package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driving"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// IngestionPipeline turns raw portal records into stored entities.
// Records are processed in input order; invoices are committed in
// batches so a mid-run failure loses at most one batch.
type IngestionPipeline struct {
	profile   *domain.Profile
	sellers   driven.SellerStore
	providers driven.TaxProviderStore
	invoices  driven.InvoiceStore
	log       zerolog.Logger
}

var _ driving.Ingestor = (*IngestionPipeline)(nil)

// NewIngestionPipeline creates the pipeline.
func NewIngestionPipeline(profile *domain.Profile, sellers driven.SellerStore, providers driven.TaxProviderStore, invoices driven.InvoiceStore) *IngestionPipeline {
	return &IngestionPipeline{
		profile:   profile,
		sellers:   sellers,
		providers: providers,
		invoices:  invoices,
		log:       logger.With("ingest"),
	}
}

// sellerState tracks a seller across one run so counters count each
// seller at most once regardless of how many records mention it.
type sellerState struct {
	seller  *domain.Seller
	created bool
	updated bool
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

type providerState struct {
	provider *domain.TaxProvider
	created  bool
	updated  bool
}

// Ingest merges the given records into the entity store and reports what
// changed. Re-ingesting the same records is a no-op beyond the skip
// counters.
func (p *IngestionPipeline) Ingest(ctx context.Context, records []domain.RawRecord) (*domain.IngestResult, error) {
	res := &domain.IngestResult{RunID: uuid.NewString()}
	log := p.log.With().Str("run_id", res.RunID).Logger()
	log.Info().Int("records", len(records)).Msg("starting ingestion")

	sellers := make(map[string]*sellerState)
	providers := make(map[string]*providerState)

	var batch []*domain.Invoice
	pending := make(map[domain.InvoiceKey]*domain.Invoice)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := p.invoices.InsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("inserting invoice batch: %w", err)
		}
		res.NewInvoices += inserted
		res.SkippedInvoices += len(batch) - inserted
		batch = batch[:0]
		pending = make(map[domain.InvoiceKey]*domain.Invoice)
		return nil
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		key, ok := rec.Key()
		taxCode := strings.TrimSpace(rec.SellerTaxCode)
		sellerName := strings.TrimSpace(rec.SellerName)
		if !ok || taxCode == "" || sellerName == "" {
			res.DroppedRecords++
			log.Warn().Stringer("invoice", key).Str("seller_tax_code", taxCode).
				Msg("dropping unusable record")
			continue
		}

		seller, err := p.mergeSeller(ctx, sellers, taxCode, sellerName)
		if err != nil {
			return res, err
		}

		var providerID int64
		if name := rec.TaxProviderName(); name != "" {
			prov, err := p.mergeProvider(ctx, providers, name)
			if err != nil {
				return res, err
			}
			providerID = prov.ID
		}

		code := rec.ResolveTrackingCode()

		// Deduplicate within the uncommitted batch first.
		if inv, ok := pending[key]; ok {
			if inv.TrackingCode == "" && code != "" {
				inv.TrackingCode = code
			}
			res.SkippedInvoices++
			continue
		}

		existing, err := p.invoices.GetByKey(ctx, key)
		switch {
		case err == nil:
			if code != "" && existing.TrackingCode == "" {
				written, err := p.invoices.SetTrackingCode(ctx, key, code)
				if err != nil {
					return res, fmt.Errorf("filling tracking code for %s: %w", key, err)
				}
				if written {
					res.TrackingCodeFills++
					continue
				}
			}
			res.SkippedInvoices++
			continue
		case !isNotFound(err):
			return res, fmt.Errorf("checking invoice %s: %w", key, err)
		}

		inv := &domain.Invoice{
			Key:           key,
			TrackingCode:  code,
			SellerID:      seller.ID,
			TaxProviderID: providerID,
		}
		if ts, err := rec.Timestamp(); err == nil {
			inv.IssuedAt = ts
		} else if rec.IssuedAt != "" {
			log.Warn().Stringer("invoice", key).Str("tdlap", rec.IssuedAt).
				Msg("unparseable issue timestamp, storing without one")
		}

		batch = append(batch, inv)
		pending[key] = inv
		if len(batch) >= p.profile.BatchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}

	if err := flush(); err != nil {
		return res, err
	}

	for _, s := range sellers {
		if s.created {
			res.NewSellers++
		} else if s.updated {
			res.UpdatedSellers++
		}
	}
	for _, pr := range providers {
		if pr.created {
			res.NewTaxProviders++
		} else if pr.updated {
			res.UpdatedTaxProviders++
		}
	}

	log.Info().
		Int("new_invoices", res.NewInvoices).
		Int("tracking_fills", res.TrackingCodeFills).
		Int("skipped", res.SkippedInvoices).
		Int("dropped", res.DroppedRecords).
		Msg("ingestion complete")
	return res, nil
}

// mergeSeller resolves the seller for a record, creating it on first
// sighting and refreshing the stored name when the portal reports a new
// one. Latest-wins within a run and across runs.
func (p *IngestionPipeline) mergeSeller(ctx context.Context, cache map[string]*sellerState, taxCode, name string) (*domain.Seller, error) {
	if st, ok := cache[taxCode]; ok {
		if name != "" && name != st.seller.Name {
			st.seller.Name = name
			if err := p.sellers.Save(ctx, st.seller); err != nil {
				return nil, fmt.Errorf("updating seller %s: %w", taxCode, err)
			}
			if !st.created {
				st.updated = true
			}
		}
		return st.seller, nil
	}

	seller, err := p.sellers.GetByTaxCode(ctx, taxCode)
	switch {
	case isNotFound(err):
		seller = &domain.Seller{TaxCode: taxCode, Name: name}
		if err := p.sellers.Save(ctx, seller); err != nil {
			return nil, fmt.Errorf("creating seller %s: %w", taxCode, err)
		}
		cache[taxCode] = &sellerState{seller: seller, created: true}
		return seller, nil
	case err != nil:
		return nil, fmt.Errorf("looking up seller %s: %w", taxCode, err)
	}

	st := &sellerState{seller: seller}
	if name != "" && name != seller.Name {
		seller.Name = name
		if err := p.sellers.Save(ctx, seller); err != nil {
			return nil, fmt.Errorf("updating seller %s: %w", taxCode, err)
		}
		st.updated = true
	}
	cache[taxCode] = st
	return seller, nil
}

// mergeProvider resolves the tax provider for a record. New providers
// start as TBD unless the profile configures them; existing providers
// have their attributes refreshed from the profile, with empty profile
// fields falling back to what is stored.
func (p *IngestionPipeline) mergeProvider(ctx context.Context, cache map[string]*providerState, name string) (*domain.TaxProvider, error) {
	if st, ok := cache[name]; ok {
		return st.provider, nil
	}

	entry, _ := p.profile.ProviderEntry(name)

	prov, err := p.providers.GetByName(ctx, name)
	switch {
	case isNotFound(err):
		prov = &domain.TaxProvider{
			Name:      name,
			Status:    entry.Status,
			Note:      entry.Note,
			SearchURL: entry.SearchURL,
		}
		if prov.Status == "" {
			prov.Status = domain.StatusTBD
		}
		if err := p.providers.Save(ctx, prov); err != nil {
			return nil, fmt.Errorf("creating tax provider %s: %w", name, err)
		}
		cache[name] = &providerState{provider: prov, created: true}
		return prov, nil
	case err != nil:
		return nil, fmt.Errorf("looking up tax provider %s: %w", name, err)
	}

	st := &providerState{provider: prov}
	changed := false
	if entry.Status != "" && entry.Status != prov.Status {
		prov.Status = entry.Status
		changed = true
	}
	if entry.Note != "" && entry.Note != prov.Note {
		prov.Note = entry.Note
		changed = true
	}
	if entry.SearchURL != "" && entry.SearchURL != prov.SearchURL {
		prov.SearchURL = entry.SearchURL
		changed = true
	}
	if changed {
		if err := p.providers.Save(ctx, prov); err != nil {
			return nil, fmt.Errorf("updating tax provider %s: %w", name, err)
		}
		st.updated = true
	}
	cache[name] = st
	return prov, nil
}
