package retrievers

import (
	"context"
	"net/url"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Ensure fptRetriever implements the interface.
var _ driven.DocumentRetriever = (*fptRetriever)(nil)

// fptRetriever navigates a browser to FPT's mail-PDF endpoint, which
// responds with a download instead of a page. No manual step is involved
// but the endpoint refuses non-browser clients.
type fptRetriever struct {
	mgr *browser.Manager
}

// NewFPT creates the fpt variant.
func NewFPT(mgr *browser.Manager) driven.DocumentRetriever {
	return &fptRetriever{mgr: mgr}
}

func (r *fptRetriever) Name() string { return "fpt" }

func fptURL(inv domain.Invoice) string {
	return "https://hoadondientu.kimtingroup.com/api/invoice-mailpdf?sec=" +
		url.QueryEscape(inv.TrackingCode)
}

// Retrieve triggers the download by pointing a blank page at the endpoint.
func (r *fptRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	page, err := r.mgr.OpenPage(ctx, "about:blank")
	if err != nil {
		return nil, err
	}
	defer page.Close()

	target := fptURL(inv)
	return r.mgr.CaptureDownload(ctx, func() error {
		_, err := page.Context(ctx).Eval(`u => { window.location.href = u }`, target)
		return err
	})
}
