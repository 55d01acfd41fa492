package retrievers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// directTimeout bounds one direct document request.
const directTimeout = 60 * time.Second

// Ensure direct variants implement the interface.
var _ driven.DocumentRetriever = (*directRetriever)(nil)

// directRetriever fetches the document with a plain HTTP GET against a
// provider URL derived from the invoice.
type directRetriever struct {
	name   string
	urlFor func(inv domain.Invoice) string
	client *http.Client
}

func newDirectRetriever(name string, urlFor func(inv domain.Invoice) string) *directRetriever {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	rc.HTTPClient.Timeout = directTimeout
	return &directRetriever{
		name:   name,
		urlFor: urlFor,
		client: rc.StandardClient(),
	}
}

// Name returns the tax provider name this variant serves.
func (r *directRetriever) Name() string { return r.name }

// Retrieve GETs the provider's document URL for the invoice.
func (r *directRetriever) Retrieve(ctx context.Context, inv domain.Invoice) ([]byte, error) {
	reqURL := r.urlFor(inv)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieveFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrRetrieveFailed, r.name, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrRetrieveFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrRetrieveFailed)
	}
	return data, nil
}

// misaURL is MISA's meinvoice download handler, keyed by tracking code.
func misaURL(inv domain.Invoice) string {
	return "https://www.meinvoice.vn/tra-cuu/DownloadHandler.ashx?Type=pdf&Viewer=1&Code=" +
		url.QueryEscape(inv.TrackingCode)
}

// hiloURL is the Grab e-invoice endpoint, keyed by Fkey.
func hiloURL(inv domain.Invoice) string {
	return "https://vn.einvoice.grab.com/Invoice/DowloadPdf?Fkey=" +
		url.QueryEscape(inv.TrackingCode)
}

// NewMISA creates the misa variant.
func NewMISA() driven.DocumentRetriever {
	return newDirectRetriever("misa", misaURL)
}

// NewHilo creates the hilo variant.
func NewHilo() driven.DocumentRetriever {
	return newDirectRetriever("hilo", hiloURL)
}
