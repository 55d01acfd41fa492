// Package file loads the operator profile from a TOML file. The profile
// is read once at process start; nothing watches the file afterwards.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// DefaultPath is the profile location used when none is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".hoadon", "config.toml"), nil
}

// fileProfile is the on-disk shape. Durations are TOML strings in
// time.ParseDuration syntax.
type fileProfile struct {
	Name              string `toml:"name"`
	DatabasePath      string `toml:"database_path"`
	DownloadDir       string `toml:"download_dir"`
	DataDir           string `toml:"data_dir"`
	PortalToken       string `toml:"portal_token"`
	PageSize          int    `toml:"page_size"`
	BatchSize         int    `toml:"batch_size"`
	MaxAttempts       int    `toml:"max_attempts"`
	DownloadDelay     string `toml:"download_delay"`
	ManualStepTimeout string `toml:"manual_step_timeout"`

	TaxProviders     map[string]fileProviderEntry `toml:"tax_providers"`
	SellerShortNames map[string]string            `toml:"seller_short_names"`
}

type fileProviderEntry struct {
	Status    string `toml:"status"`
	Note      string `toml:"note"`
	SearchURL string `toml:"search_url"`
}

// Load reads the profile at path. A missing file yields the default
// profile rather than an error so first runs work without setup.
func Load(path string) (*domain.Profile, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			profile := &domain.Profile{Name: "default"}
			profile.ApplyDefaults()
			return profile, nil
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var fp fileProfile
	if err := toml.Unmarshal(data, &fp); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	profile, err := fp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}
	return profile, nil
}

func (fp *fileProfile) toDomain() (*domain.Profile, error) {
	profile := &domain.Profile{
		Name:         fp.Name,
		DatabasePath: fp.DatabasePath,
		DownloadDir:  fp.DownloadDir,
		DataDir:      fp.DataDir,
		PortalToken:  fp.PortalToken,
		PageSize:     fp.PageSize,
		BatchSize:    fp.BatchSize,
		MaxAttempts:  fp.MaxAttempts,
	}
	if profile.Name == "" {
		profile.Name = "default"
	}

	if fp.DownloadDelay != "" {
		d, err := time.ParseDuration(fp.DownloadDelay)
		if err != nil {
			return nil, fmt.Errorf("parsing download_delay: %w", err)
		}
		profile.DownloadDelay = d
	}
	if fp.ManualStepTimeout != "" {
		d, err := time.ParseDuration(fp.ManualStepTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing manual_step_timeout: %w", err)
		}
		profile.ManualStepTimeout = d
	}

	if len(fp.TaxProviders) > 0 {
		profile.TaxProviders = make(map[string]domain.TaxProviderEntry, len(fp.TaxProviders))
		for name, entry := range fp.TaxProviders {
			status := domain.TaxProviderStatus(entry.Status)
			switch status {
			case "", domain.StatusTBD, domain.StatusResolved:
			default:
				return nil, fmt.Errorf("%w: unknown provider status %q", domain.ErrInvalidInput, entry.Status)
			}
			profile.TaxProviders[name] = domain.TaxProviderEntry{
				Status:    status,
				Note:      entry.Note,
				SearchURL: entry.SearchURL,
			}
		}
	}
	profile.SellerShortNames = fp.SellerShortNames

	profile.ApplyDefaults()
	return profile, nil
}
