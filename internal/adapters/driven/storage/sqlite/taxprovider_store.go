package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// taxProviderStore implements driven.TaxProviderStore.
type taxProviderStore struct {
	store *Store
}

var _ driven.TaxProviderStore = (*taxProviderStore)(nil)

// GetByName retrieves a provider by its natural key.
func (s *taxProviderStore) GetByName(ctx context.Context, name string) (*domain.TaxProvider, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, status, note, search_url, created_at, updated_at
		FROM tax_providers WHERE name = ?
	`, name)

	provider, err := scanTaxProvider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning tax provider: %w", err)
	}
	return provider, nil
}

// Save inserts the provider or refreshes its attributes.
func (s *taxProviderStore) Save(ctx context.Context, provider *domain.TaxProvider) error {
	if provider.Status == "" {
		provider.Status = domain.StatusTBD
	}

	now := time.Now().UTC()
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO tax_providers (name, status, note, search_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			status = excluded.status,
			note = excluded.note,
			search_url = excluded.search_url,
			updated_at = excluded.updated_at
	`, provider.Name, string(provider.Status), nullString(provider.Note),
		nullString(provider.SearchURL), now, now)
	if err != nil {
		return fmt.Errorf("saving tax provider: %w", err)
	}

	if provider.ID == 0 {
		row := s.store.db.QueryRowContext(ctx,
			"SELECT id FROM tax_providers WHERE name = ?", provider.Name)
		if err := row.Scan(&provider.ID); err != nil {
			return fmt.Errorf("resolving tax provider id: %w", err)
		}
	}
	return nil
}

// List returns all providers ordered by name.
func (s *taxProviderStore) List(ctx context.Context) ([]domain.TaxProvider, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, status, note, search_url, created_at, updated_at
		FROM tax_providers ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tax providers: %w", err)
	}
	defer rows.Close()

	var providers []domain.TaxProvider //nolint:prealloc // size unknown from query
	for rows.Next() {
		provider, err := scanTaxProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tax provider: %w", err)
		}
		providers = append(providers, *provider)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tax providers: %w", err)
	}
	return providers, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTaxProvider scans one provider row.
func scanTaxProvider(row rowScanner) (*domain.TaxProvider, error) {
	var provider domain.TaxProvider
	var status string
	var note, searchURL sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&provider.ID, &provider.Name, &status, &note, &searchURL,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	provider.Status = domain.TaxProviderStatus(status)
	provider.Note = note.String
	provider.SearchURL = searchURL.String
	if createdAt.Valid {
		provider.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		provider.UpdatedAt = updatedAt.Time
	}
	return &provider, nil
}

// nullString maps "" to NULL for optional text columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
