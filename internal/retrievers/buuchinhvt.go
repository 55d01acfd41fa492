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
	buuchinhvtTrackingField  = "#strFkey"
	buuchinhvtCaptchaField   = ".captcha_input.form-control"
	buuchinhvtDownloadButton = "[class='icon-download-alt']"
)

// Ensure buuchinhvtRetriever implements the interface.
var _ driven.DocumentRetriever = (*buuchinhvtRetriever)(nil)

// buuchinhvtRetriever drives the VNPT invoice lookup portal. The portal
// lives on a per-seller subdomain derived from the seller's tax code.
type buuchinhvtRetriever struct {
	mgr         *browser.Manager
	manualLimit time.Duration
}

// NewBuuChinhVT creates the buuchinhvt variant.
func NewBuuChinhVT(mgr *browser.Manager, manualLimit time.Duration) driven.DocumentRetriever {
	return &buuchinhvtRetriever{mgr: mgr, manualLimit: manualLimit}
}

func (r *buuchinhvtRetriever) Name() string { return "buuchinhvt" }

func buuchinhvtURL(sellerTaxCode string) string {
	return fmt.Sprintf("https://%s-tt78.vnpt-invoice.com.vn/HomeNoLogin/SearchByFkey", sellerTaxCode)
}

func (r *buuchinhvtRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	if inv.Seller == nil || inv.Seller.TaxCode == "" {
		return nil, fmt.Errorf("%w: invoice carries no seller tax code", domain.ErrRetrieveFailed)
	}

	page, err := r.mgr.OpenPage(ctx, buuchinhvtURL(inv.Seller.TaxCode))
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := fill(ctx, page, buuchinhvtTrackingField, inv.TrackingCode); err != nil {
		return nil, err
	}
	if err := focusField(ctx, page, buuchinhvtCaptchaField); err != nil {
		return nil, err
	}

	if err := r.mgr.WaitManualStep(ctx, page, buuchinhvtDownloadButton, r.manualLimit); err != nil {
		return nil, err
	}

	return r.mgr.CaptureDownload(ctx, func() error {
		return clickSelector(ctx, page, buuchinhvtDownloadButton)
	})
}
