package retrievers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

const (
	vinaSearchURL      = "https://tracuuhd.smartsign.com.vn/"
	vinaTrackingField  = "#ContentPlaceHolder1_txtCode"
	vinaCaptchaField   = "#ContentPlaceHolder1_txtCapcha"
	vinaDropdownButton = "button.btn.dropdown-toggle"
	vinaDropdownItem   = "a.dropdown-item"
)

// Ensure vinaRetriever implements the interface.
var _ driven.DocumentRetriever = (*vinaRetriever)(nil)

// vinaRetriever drives the smartsign lookup portal. The download sits
// behind a "Tai File" dropdown whose PDF entry triggers the download.
type vinaRetriever struct {
	mgr         *browser.Manager
	manualLimit time.Duration
}

// NewVina creates the vina variant.
func NewVina(mgr *browser.Manager, manualLimit time.Duration) driven.DocumentRetriever {
	return &vinaRetriever{mgr: mgr, manualLimit: manualLimit}
}

func (r *vinaRetriever) Name() string { return "vina" }

func (r *vinaRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	page, err := r.mgr.OpenPage(ctx, vinaSearchURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := fill(ctx, page, vinaTrackingField, inv.TrackingCode); err != nil {
		return nil, err
	}
	if err := focusField(ctx, page, vinaCaptchaField); err != nil {
		return nil, err
	}

	if err := r.mgr.WaitManualStep(ctx, page, vinaDropdownButton, r.manualLimit); err != nil {
		return nil, err
	}

	if err := clickByText(ctx, page, vinaDropdownButton, "Tải File"); err != nil {
		return nil, err
	}

	return r.mgr.CaptureDownload(ctx, func() error {
		return clickByText(ctx, page, vinaDropdownItem, "PDF")
	})
}

// clickByText clicks the first element matching selector whose text
// contains want.
func clickByText(ctx context.Context, page *rod.Page, selector, want string) error {
	els, err := page.Context(ctx).Elements(selector)
	if err != nil {
		return fmt.Errorf("finding %s: %w", selector, err)
	}
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if strings.Contains(strings.TrimSpace(text), want) {
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				return fmt.Errorf("clicking %s: %w", selector, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: no %s element with text %q", domain.ErrRetrieveFailed, selector, want)
}
