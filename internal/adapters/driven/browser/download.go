package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// CaptureDownload arms download interception on the browser, runs trigger
// (typically a click on the portal's download affordance), waits for the
// download to finish, and returns its bytes. The file lands in a temp dir
// removed before returning.
func (m *Manager) CaptureDownload(ctx context.Context, trigger func() error) ([]byte, error) {
	b, err := m.Browser()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "hoadon-dl-*")
	if err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wait := b.Context(ctx).WaitDownload(dir)

	if err := trigger(); err != nil {
		return nil, fmt.Errorf("triggering download: %w", err)
	}

	info := wait()
	if info == nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: download never started", domain.ErrManualStepTimeout)
		}
		return nil, fmt.Errorf("%w: download did not complete", domain.ErrRetrieveFailed)
	}

	data, err := os.ReadFile(filepath.Join(dir, info.GUID))
	if err != nil {
		return nil, fmt.Errorf("reading downloaded file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty download", domain.ErrRetrieveFailed)
	}
	return data, nil
}
