package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

func TestToInvoiceView(t *testing.T) {
	inv := domain.Invoice{
		Key:          domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: "00000123"},
		IssuedAt:     time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC),
		TrackingCode: "TRACK1",
		IsDownloaded: true,
		Seller:       &domain.Seller{Name: "ABC Co Ltd"},
		TaxProvider:  &domain.TaxProvider{Name: "MISA"},
	}

	v := toInvoiceView(inv)
	assert.Equal(t, "1", v.Form)
	assert.Equal(t, "C22TAB", v.Series)
	assert.Equal(t, "00000123", v.Number)
	assert.Equal(t, "2023-03-15T10:30:00Z", v.IssuedAt)
	assert.Equal(t, "TRACK1", v.TrackingCode)
	assert.Equal(t, "ABC Co Ltd", v.Seller)
	assert.Equal(t, "MISA", v.TaxProvider)
	assert.True(t, v.Downloaded)
}

func TestToInvoiceView_SparseInvoice(t *testing.T) {
	inv := domain.Invoice{
		Key: domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: "00000001"},
	}

	v := toInvoiceView(inv)
	assert.Empty(t, v.IssuedAt)
	assert.Empty(t, v.Seller)
	assert.Empty(t, v.TaxProvider)
	assert.False(t, v.Downloaded)
}
