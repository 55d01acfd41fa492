package retrievers

import (
	"context"
	"fmt"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

const (
	viettelSearchURL      = "https://vinvoice.viettel.vn/utilities/invoice-search"
	viettelTaxCodeField   = "[formcontrolname='supplierTaxCode']"
	viettelTrackingField  = "[formcontrolname='reservationCode']"
	viettelDownloadButton = "[class='btn btn-link mr-2']"
)

// Ensure viettelRetriever implements the interface.
var _ driven.DocumentRetriever = (*viettelRetriever)(nil)

// viettelRetriever drives Viettel's invoice-search portal. The form is
// pre-filled here; the CAPTCHA and the search click are the operator's.
// The download button appearing is the signal that the manual step is done.
type viettelRetriever struct {
	mgr         *browser.Manager
	manualLimit time.Duration
}

// NewViettel creates the viettel variant.
func NewViettel(mgr *browser.Manager, manualLimit time.Duration) driven.DocumentRetriever {
	return &viettelRetriever{mgr: mgr, manualLimit: manualLimit}
}

func (r *viettelRetriever) Name() string { return "viettel" }

func (r *viettelRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	if inv.Seller == nil || inv.Seller.TaxCode == "" {
		return nil, fmt.Errorf("%w: invoice carries no seller tax code", domain.ErrRetrieveFailed)
	}

	page, err := r.mgr.OpenPage(ctx, viettelSearchURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := fill(ctx, page, viettelTaxCodeField, inv.Seller.TaxCode); err != nil {
		return nil, err
	}
	if err := fill(ctx, page, viettelTrackingField, inv.TrackingCode); err != nil {
		return nil, err
	}

	if err := r.mgr.WaitManualStep(ctx, page, viettelDownloadButton, r.manualLimit); err != nil {
		return nil, err
	}

	return r.mgr.CaptureDownload(ctx, func() error {
		return clickSelector(ctx, page, viettelDownloadButton)
	})
}
