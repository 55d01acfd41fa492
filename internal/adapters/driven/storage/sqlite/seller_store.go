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

// sellerStore implements driven.SellerStore.
type sellerStore struct {
	store *Store
}

var _ driven.SellerStore = (*sellerStore)(nil)

// GetByTaxCode retrieves a seller by its natural key.
func (s *sellerStore) GetByTaxCode(ctx context.Context, taxCode string) (*domain.Seller, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, tax_code, name, created_at, updated_at
		FROM sellers WHERE tax_code = ?
	`, taxCode)

	var seller domain.Seller
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&seller.ID, &seller.TaxCode, &seller.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning seller: %w", err)
	}
	if createdAt.Valid {
		seller.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		seller.UpdatedAt = updatedAt.Time
	}

	return &seller, nil
}

// Save inserts the seller or updates its name. The UNIQUE constraint on
// tax_code makes concurrent first sightings converge on one row.
func (s *sellerStore) Save(ctx context.Context, seller *domain.Seller) error {
	now := time.Now().UTC()
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sellers (tax_code, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tax_code) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`, seller.TaxCode, seller.Name, now, now)
	if err != nil {
		return fmt.Errorf("saving seller: %w", err)
	}

	if seller.ID == 0 {
		// LastInsertId is unreliable on the conflict path; resolve the
		// row id by natural key instead.
		row := s.store.db.QueryRowContext(ctx,
			"SELECT id FROM sellers WHERE tax_code = ?", seller.TaxCode)
		if err := row.Scan(&seller.ID); err != nil {
			return fmt.Errorf("resolving seller id: %w", err)
		}
	}
	return nil
}

// List returns all sellers ordered by tax code.
func (s *sellerStore) List(ctx context.Context) ([]domain.Seller, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, tax_code, name, created_at, updated_at
		FROM sellers ORDER BY tax_code
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sellers: %w", err)
	}
	defer rows.Close()

	var sellers []domain.Seller //nolint:prealloc // size unknown from query
	for rows.Next() {
		var seller domain.Seller
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&seller.ID, &seller.TaxCode, &seller.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning seller: %w", err)
		}
		if createdAt.Valid {
			seller.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			seller.UpdatedAt = updatedAt.Time
		}
		sellers = append(sellers, seller)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sellers: %w", err)
	}
	return sellers, nil
}
