// Package portal implements the paginated invoice-record fetcher against
// the national e-invoice portal's query API.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the portal's query API origin.
	DefaultBaseURL = "https://hoadondientu.gdt.gov.vn:30000"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// requestsPerSecond bounds the request rate against the portal.
	requestsPerSecond = 2
)

// Client is an authenticated, rate-limited HTTP client for the portal
// query API. The bearer token is obtained lazily from the provider so
// interactive prompts happen only when a request is actually made.
type Client struct {
	baseURL string
	tokens  driven.TokenProvider
	limiter *rate.Limiter
	http    *http.Client
}

// NewClient creates a portal client using the given token provider.
func NewClient(tokens driven.TokenProvider) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// WithBaseURL overrides the portal origin. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// ensure initialises the HTTP client on first use.
func (c *Client) ensure(ctx context.Context) error {
	if c.http != nil {
		return nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("getting portal token: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = time.Second
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.HTTPClient = oauth2.NewClient(ctx, ts)
	rc.HTTPClient.Timeout = DefaultTimeout

	c.http = rc.StandardClient()
	return nil
}

// pageResponse is the portal's page envelope. "total" is the dimension's
// record count, "state" the opaque continuation token for the next page.
type pageResponse struct {
	Total int                `json:"total"`
	State string             `json:"state"`
	Datas []domain.RawRecord `json:"datas"`
}

// queryPage requests one page of one fetch dimension.
func (c *Client) queryPage(ctx context.Context, endpoint string, status int, dr domain.DateRange, page, size int, state string) (*pageResponse, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("sort", "tdlap:desc,khmshdon:asc,shdon:desc")
	q.Set("size", fmt.Sprintf("%d", size))
	q.Set("page", fmt.Sprintf("%d", page))
	if state != "" {
		q.Set("state", state)
	}
	q.Set("search", fmt.Sprintf("tdlap=ge=%sT00:00:00;tdlap=le=%sT23:59:59;ttxly==%d",
		dr.From.Format("02/01/2006"), dr.To.Format("02/01/2006"), status))

	reqURL := c.baseURL + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "vi")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: portal returned %s", domain.ErrAuthRequired, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: portal returned %s", domain.ErrTransport, resp.Status)
	}

	var pr pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("%w: decoding page: %v", domain.ErrTransport, err)
	}
	return &pr, nil
}
