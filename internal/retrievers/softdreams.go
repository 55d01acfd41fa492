package retrievers

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

const (
	softdreamsTrackingField  = "#iFkey"
	softdreamsCaptchaField   = "#Capcha"
	softdreamsDownloadButton = "button[name='downloadPdfAndFileAttach']"
)

// Ensure softdreamsRetriever implements the interface.
var _ driven.DocumentRetriever = (*softdreamsRetriever)(nil)

// softdreamsRetriever drives the easyinvoice lookup portal. Sellers are
// split across two domains; both are tried in order. The portal delivers
// a zip archive from which the PDF is extracted.
type softdreamsRetriever struct {
	mgr         *browser.Manager
	manualLimit time.Duration
}

// NewSoftDreams creates the softdreams variant.
func NewSoftDreams(mgr *browser.Manager, manualLimit time.Duration) driven.DocumentRetriever {
	return &softdreamsRetriever{mgr: mgr, manualLimit: manualLimit}
}

func (r *softdreamsRetriever) Name() string { return "softdreams" }

func softdreamsDomains(sellerTaxCode string) []string {
	return []string{
		fmt.Sprintf("https://%shd.easyinvoice.com.vn", sellerTaxCode),
		fmt.Sprintf("https://%shd.easyinvoice.vn", sellerTaxCode),
	}
}

func (r *softdreamsRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	if inv.Seller == nil || inv.Seller.TaxCode == "" {
		return nil, fmt.Errorf("%w: invoice carries no seller tax code", domain.ErrRetrieveFailed)
	}

	var errs []error
	for _, domainURL := range softdreamsDomains(inv.Seller.TaxCode) {
		data, err := r.retrieveFrom(ctx, domainURL, inv)
		if err == nil {
			return data, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", domainURL, err))
		// A manual-step timeout means the operator walked away, not that
		// the other domain would fare better.
		if errors.Is(err, domain.ErrManualStepTimeout) || ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

func (r *softdreamsRetriever) retrieveFrom(ctx context.Context, domainURL string, inv domain.Invoice) ([]byte, error) {
	page, err := r.mgr.OpenPage(ctx, domainURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := fill(ctx, page, softdreamsTrackingField, inv.TrackingCode); err != nil {
		return nil, err
	}
	if err := focusField(ctx, page, softdreamsCaptchaField); err != nil {
		return nil, err
	}

	if err := r.mgr.WaitManualStep(ctx, page, softdreamsDownloadButton, r.manualLimit); err != nil {
		return nil, err
	}

	archive, err := r.mgr.CaptureDownload(ctx, func() error {
		return clickSelector(ctx, page, softdreamsDownloadButton)
	})
	if err != nil {
		return nil, err
	}
	return extractPDF(archive)
}

// extractPDF pulls the first PDF out of the zip archive the portal serves.
func extractPDF(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening zip: %v", domain.ErrRetrieveFailed, err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrRetrieveFailed, f.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrRetrieveFailed, f.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: no PDF in archive", domain.ErrRetrieveFailed)
}
