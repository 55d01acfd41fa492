package services

import (
	"fmt"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// TargetName computes the deterministic artifact name for an invoice:
// <Mon>_<short>_<number>.pdf, where Mon is the issue month's three-letter
// abbreviation and short is the profile's short name for the seller.
// Returns domain.ErrNoShortName when the seller has no mapping; a missing
// mapping is an operator-actionable configuration gap, never a silent drop.
func TargetName(profile *domain.Profile, inv domain.Invoice) (string, error) {
	sellerName := ""
	if inv.Seller != nil {
		sellerName = inv.Seller.Name
	}

	short, ok := profile.ShortName(sellerName)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNoShortName, sellerName)
	}

	month := "Unknown"
	if !inv.IssuedAt.IsZero() {
		month = inv.IssuedAt.Format("Jan")
	}
	return fmt.Sprintf("%s_%s_%s.pdf", month, short, inv.Key.Number), nil
}
