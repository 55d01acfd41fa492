package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// invoiceStore implements driven.InvoiceStore.
type invoiceStore struct {
	store *Store
}

var _ driven.InvoiceStore = (*invoiceStore)(nil)

// invoiceColumns is the joined projection shared by all invoice reads.
const invoiceColumns = `
	i.id, i.invoice_form, i.invoice_series, i.invoice_number,
	i.invoice_timestamp, i.tracking_code, i.seller_id, i.tax_provider_id,
	i.is_downloaded,
	s.id, s.tax_code, s.name,
	tp.id, tp.name, tp.status, tp.note, tp.search_url
`

const invoiceJoins = `
	FROM invoices i
	JOIN sellers s ON s.id = i.seller_id
	LEFT JOIN tax_providers tp ON tp.id = i.tax_provider_id
`

// GetByKey retrieves an invoice by its natural key.
func (s *invoiceStore) GetByKey(ctx context.Context, key domain.InvoiceKey) (*domain.Invoice, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+invoiceJoins+`
		WHERE i.invoice_form = ? AND i.invoice_series = ? AND i.invoice_number = ?
	`, key.Form, key.Series, key.Number)

	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	return inv, nil
}

// GetBySeriesNumber retrieves an invoice by series and number alone.
// Flat-file reconciliation entries carry no form code.
func (s *invoiceStore) GetBySeriesNumber(ctx context.Context, series, number string) (*domain.Invoice, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+invoiceJoins+`
		WHERE i.invoice_series = ? AND i.invoice_number = ?
		ORDER BY i.id LIMIT 1
	`, series, number)

	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	return inv, nil
}

// InsertBatch inserts invoices inside one transaction. Natural-key
// collisions are resolved by the UNIQUE constraint: the conflicting row
// is left untouched and not counted, and the batch carries on. This is
// the authoritative dedup point; callers' pre-checks are an optimisation.
func (s *invoiceStore) InsertBatch(ctx context.Context, invoices []*domain.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO invoices (invoice_form, invoice_series, invoice_number,
			invoice_timestamp, tracking_code, seller_id, tax_provider_id,
			is_downloaded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(invoice_form, invoice_series, invoice_number) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for _, inv := range invoices {
		var taxProviderID any
		if inv.TaxProviderID != 0 {
			taxProviderID = inv.TaxProviderID
		}
		var issuedAt any
		if !inv.IssuedAt.IsZero() {
			issuedAt = inv.IssuedAt.UTC()
		}

		res, err := stmt.ExecContext(ctx, inv.Key.Form, inv.Key.Series, inv.Key.Number,
			issuedAt, nullString(inv.TrackingCode), inv.SellerID, taxProviderID, now)
		if err != nil {
			return 0, fmt.Errorf("inserting invoice %s: %w", inv.Key, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}
	return inserted, nil
}

// SetTrackingCode fills the tracking code only when none is stored.
// The WHERE clause enforces monotonic-fill at the storage level.
func (s *invoiceStore) SetTrackingCode(ctx context.Context, key domain.InvoiceKey, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE invoices SET tracking_code = ?
		WHERE invoice_form = ? AND invoice_series = ? AND invoice_number = ?
		  AND (tracking_code IS NULL OR tracking_code = '')
	`, code, key.Form, key.Series, key.Number)
	if err != nil {
		return false, fmt.Errorf("setting tracking code: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkDownloaded flips IsDownloaded. Auto-committed: each successful
// download is an individually durable fact.
func (s *invoiceStore) MarkDownloaded(ctx context.Context, key domain.InvoiceKey) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE invoices SET is_downloaded = 1
		WHERE invoice_form = ? AND invoice_series = ? AND invoice_number = ?
	`, key.Form, key.Series, key.Number)
	if err != nil {
		return fmt.Errorf("marking downloaded: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns invoices matching the filter, seller and provider joined,
// in issue-timestamp order then natural key.
func (s *invoiceStore) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	var conds []string
	var args []any

	if !filter.From.IsZero() {
		conds = append(conds, "i.invoice_timestamp >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "i.invoice_timestamp <= ?")
		args = append(args, filter.To.UTC())
	}
	if filter.SellerTaxCode != "" {
		conds = append(conds, "s.tax_code = ?")
		args = append(args, filter.SellerTaxCode)
	}
	if filter.OnlyPending {
		conds = append(conds, "i.is_downloaded = 0")
	}

	query := "SELECT " + invoiceColumns + invoiceJoins
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY i.invoice_timestamp, i.invoice_form, i.invoice_series, i.invoice_number"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice //nolint:prealloc // size unknown from query
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}
	return invoices, nil
}

// Stats summarises the store for reporting.
func (s *invoiceStore) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(is_downloaded), 0),
		       MIN(invoice_timestamp),
		       MAX(invoice_timestamp)
		FROM invoices
	`)
	var earliest, latest sql.NullTime
	if err := row.Scan(&stats.TotalInvoices, &stats.Downloaded, &earliest, &latest); err != nil {
		return nil, fmt.Errorf("scanning invoice stats: %w", err)
	}
	if earliest.Valid {
		stats.EarliestIssued = earliest.Time
	}
	if latest.Valid {
		stats.LatestIssued = latest.Time
	}

	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sellers").Scan(&stats.Sellers); err != nil {
		return nil, fmt.Errorf("counting sellers: %w", err)
	}
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tax_providers").Scan(&stats.TaxProviders); err != nil {
		return nil, fmt.Errorf("counting tax providers: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT tp.name, COUNT(i.id)
		FROM tax_providers tp
		JOIN invoices i ON i.tax_provider_id = tp.id
		GROUP BY tp.name
		ORDER BY tp.name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying provider counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pc domain.ProviderCount
		if err := rows.Scan(&pc.Provider, &pc.Count); err != nil {
			return nil, fmt.Errorf("scanning provider count: %w", err)
		}
		stats.ByProvider = append(stats.ByProvider, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating provider counts: %w", err)
	}

	return stats, nil
}

// scanInvoice scans one joined invoice row.
func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var issuedAt sql.NullTime
	var trackingCode sql.NullString
	var taxProviderID sql.NullInt64
	var seller domain.Seller
	var tpID sql.NullInt64
	var tpName, tpStatus, tpNote, tpSearchURL sql.NullString

	if err := row.Scan(&inv.ID, &inv.Key.Form, &inv.Key.Series, &inv.Key.Number,
		&issuedAt, &trackingCode, &inv.SellerID, &taxProviderID,
		&inv.IsDownloaded,
		&seller.ID, &seller.TaxCode, &seller.Name,
		&tpID, &tpName, &tpStatus, &tpNote, &tpSearchURL); err != nil {
		return nil, err
	}

	if issuedAt.Valid {
		inv.IssuedAt = issuedAt.Time
	}
	inv.TrackingCode = trackingCode.String
	inv.TaxProviderID = taxProviderID.Int64
	inv.Seller = &seller

	if tpID.Valid {
		inv.TaxProvider = &domain.TaxProvider{
			ID:        tpID.Int64,
			Name:      tpName.String,
			Status:    domain.TaxProviderStatus(tpStatus.String),
			Note:      tpNote.String,
			SearchURL: tpSearchURL.String,
		}
	}
	return &inv, nil
}
