package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// Fetch dimensions: every endpoint is queried once per processing-status
// filter. The same invoice may appear under more than one dimension; this
// layer concatenates without deduplicating.
var (
	endpoints = []string{
		"/query/invoices/purchase",
		"/sco-query/invoices/purchase",
	}
	statusFilters = []int{5, 6}
)

// Ensure Fetcher implements the interface.
var _ driven.RecordFetcher = (*Fetcher)(nil)

// Fetcher walks every fetch dimension page by page.
type Fetcher struct {
	client   *Client
	pageSize int
	log      zerolog.Logger
}

// NewFetcher creates a fetcher using the given client and page size.
func NewFetcher(client *Client, pageSize int) *Fetcher {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Fetcher{
		client:   client,
		pageSize: pageSize,
		log:      logger.With("portal"),
	}
}

// Fetch pulls all records in the date range across every dimension.
// A failing dimension is truncated at the failing page; its accumulated
// records and those of every other dimension are still returned, with
// the per-dimension errors joined.
func (f *Fetcher) Fetch(ctx context.Context, dr domain.DateRange) ([]domain.RawRecord, error) {
	if !dr.Valid() {
		return nil, fmt.Errorf("%w: invalid date range", domain.ErrInvalidInput)
	}

	var all []domain.RawRecord
	var errs []error
	for _, endpoint := range endpoints {
		for _, status := range statusFilters {
			records, err := f.fetchDimension(ctx, endpoint, status, dr)
			all = append(all, records...)
			if err != nil {
				f.log.Warn().Str("endpoint", endpoint).Int("ttxly", status).
					Err(err).Msg("dimension truncated")
				errs = append(errs, err)
				if ctx.Err() != nil {
					return all, errors.Join(errs...)
				}
				continue
			}
			f.log.Debug().Str("endpoint", endpoint).Int("ttxly", status).
				Int("records", len(records)).Msg("dimension complete")
		}
	}
	return all, errors.Join(errs...)
}

// fetchDimension pages through one endpoint x status dimension. The total
// is fixed by the first page; the loop ends when the accumulated count
// reaches it, never by waiting for an empty page.
func (f *Fetcher) fetchDimension(ctx context.Context, endpoint string, status int, dr domain.DateRange) ([]domain.RawRecord, error) {
	var (
		records []domain.RawRecord
		total   = -1
		state   string
	)

	for page := 0; ; page++ {
		resp, err := f.client.queryPage(ctx, endpoint, status, dr, page, f.pageSize, state)
		if err != nil {
			return records, fmt.Errorf("fetching %s ttxly=%d page %d: %w", endpoint, status, page, err)
		}

		if total < 0 {
			total = resp.Total
			f.log.Debug().Str("endpoint", endpoint).Int("ttxly", status).
				Int("total", total).Msg("dimension size reported")
		}

		state = resp.State
		records = append(records, resp.Datas...)

		if len(records) >= total {
			return records, nil
		}
		if len(resp.Datas) == 0 {
			// The portal under-delivered against its own total; without
			// progress the loop cannot terminate normally.
			return records, fmt.Errorf("fetching %s ttxly=%d page %d: %w: empty page before total reached (%d/%d)",
				endpoint, status, page, domain.ErrTransport, len(records), total)
		}
	}
}
