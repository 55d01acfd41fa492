package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

func targetProfile() *domain.Profile {
	p := &domain.Profile{
		SellerShortNames: map[string]string{"ABC Co Ltd": "abc"},
	}
	p.ApplyDefaults()
	return p
}

func TestTargetName(t *testing.T) {
	inv := domain.Invoice{
		Key:      domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: "00000123"},
		IssuedAt: time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
		Seller:   &domain.Seller{Name: "ABC Co Ltd"},
	}

	name, err := TargetName(targetProfile(), inv)
	require.NoError(t, err)
	assert.Equal(t, "Mar_abc_00000123.pdf", name)
}

func TestTargetName_UnknownMonth(t *testing.T) {
	inv := domain.Invoice{
		Key:    domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: "00000123"},
		Seller: &domain.Seller{Name: "ABC Co Ltd"},
	}

	name, err := TargetName(targetProfile(), inv)
	require.NoError(t, err)
	assert.Equal(t, "Unknown_abc_00000123.pdf", name)
}

func TestTargetName_NoShortName(t *testing.T) {
	inv := domain.Invoice{
		Key:    domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: "00000123"},
		Seller: &domain.Seller{Name: "Unmapped Seller"},
	}

	_, err := TargetName(targetProfile(), inv)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoShortName)
	assert.Contains(t, err.Error(), "Unmapped Seller")
}

func TestTargetName_NilSeller(t *testing.T) {
	inv := domain.Invoice{
		Key: domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: "00000123"},
	}

	_, err := TargetName(targetProfile(), inv)
	assert.ErrorIs(t, err, domain.ErrNoShortName)
}
