// Package browser manages the Chrome session used by portal-driven
// retrievers: launch via Rod, stealth page creation, bounded waits for
// human-paced verification steps, and download capture.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// navigateTimeout bounds page navigation and load.
const navigateTimeout = 30 * time.Second

// Manager owns one Chrome process, launched lazily on first page request.
// Most lookup portals gate the download behind a CAPTCHA the operator
// solves by hand, so the browser runs headed unless told otherwise.
type Manager struct {
	headless bool
	log      zerolog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a browser manager. headless must stay false for
// retrievers that involve a manual verification step.
func NewManager(headless bool) *Manager {
	return &Manager{
		headless: headless,
		log:      logger.With("browser"),
	}
}

// Browser returns the Rod handle, launching Chrome on first use.
func (m *Manager) Browser() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.New("browser manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	l := launcher.New().
		Headless(m.headless).
		Set("disable-blink-features", "AutomationControlled")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching chrome: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connecting to chrome: %w", err)
	}

	m.lnch = l
	m.browser = b
	m.log.Debug().Bool("headless", m.headless).Msg("chrome launched")
	return b, nil
}

// OpenPage opens a stealth page and navigates it to url.
func (m *Manager) OpenPage(ctx context.Context, url string) (*rod.Page, error) {
	b, err := m.Browser()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.log.Warn().Str("url", url).Err(err).Msg("page load wait timed out")
	}
	return page, nil
}

// WaitManualStep blocks until the element at selector becomes visible,
// which on lookup portals happens only after the operator has solved the
// CAPTCHA and submitted the search. The wait is bounded by timeout.
func (m *Manager) WaitManualStep(ctx context.Context, page *rod.Page, selector string, timeout time.Duration) error {
	p := page.Context(ctx).Timeout(timeout)

	el, err := p.Element(selector)
	if err != nil {
		return manualStepErr(selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return manualStepErr(selector, err)
	}
	return nil
}

func manualStepErr(selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s never became visible", domain.ErrManualStepTimeout, selector)
	}
	return fmt.Errorf("waiting for %s: %w", selector, err)
}

// Close shuts Chrome down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
