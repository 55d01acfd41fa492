package retrievers

import (
	"context"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

const (
	thaisonSearchURL      = "https://einvoice.vn/tra-cuu"
	thaisonTrackingField  = "[class='col-md-7 form-control h36 fix-with-content opacity-placeholder MaNhanHoaDon']"
	thaisonCaptchaField   = "#CaptchaInputText"
	thaisonDownloadButton = "a.btn-icon-fix[href*='/tra-cuu/tai-hoa-don-dien-tu?format=pdf']"
)

// Ensure thaisonRetriever implements the interface.
var _ driven.DocumentRetriever = (*thaisonRetriever)(nil)

// thaisonRetriever drives the einvoice.vn lookup portal.
type thaisonRetriever struct {
	mgr         *browser.Manager
	manualLimit time.Duration
}

// NewThaiSon creates the thaison variant.
func NewThaiSon(mgr *browser.Manager, manualLimit time.Duration) driven.DocumentRetriever {
	return &thaisonRetriever{mgr: mgr, manualLimit: manualLimit}
}

func (r *thaisonRetriever) Name() string { return "thaison" }

func (r *thaisonRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	page, err := r.mgr.OpenPage(ctx, thaisonSearchURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := fill(ctx, page, thaisonTrackingField, inv.TrackingCode); err != nil {
		return nil, err
	}
	// Park the cursor on the CAPTCHA input for the operator.
	if err := focusField(ctx, page, thaisonCaptchaField); err != nil {
		return nil, err
	}

	if err := r.mgr.WaitManualStep(ctx, page, thaisonDownloadButton, r.manualLimit); err != nil {
		return nil, err
	}

	return r.mgr.CaptureDownload(ctx, func() error {
		return clickSelector(ctx, page, thaisonDownloadButton)
	})
}
