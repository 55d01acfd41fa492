package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
	"github.com/vantoi-labs/hoadon-cli/internal/logger"
)

// FetchService pulls raw records from the portal and archives them as a
// JSON file in the profile's data directory. The archive lets a fetch be
// re-ingested later without touching the portal again.
type FetchService struct {
	profile *domain.Profile
	fetcher driven.RecordFetcher
	log     zerolog.Logger
}

// NewFetchService creates the service.
func NewFetchService(profile *domain.Profile, fetcher driven.RecordFetcher) *FetchService {
	return &FetchService{
		profile: profile,
		fetcher: fetcher,
		log:     logger.With("fetch"),
	}
}

// ArchiveName is the data-directory file name for a fetch starting in the
// given range: <year>_<Mon>_invoices.json.
func ArchiveName(dr domain.DateRange) string {
	return fmt.Sprintf("%d_%s_invoices.json", dr.From.Year(), dr.From.Format("Jan"))
}

// Fetch pulls the range's records and writes the archive. Records pulled
// before a partial transport failure are still archived; the error is
// returned alongside the archive path so callers can report it.
func (s *FetchService) Fetch(ctx context.Context, dr domain.DateRange) ([]domain.RawRecord, string, error) {
	records, fetchErr := s.fetcher.Fetch(ctx, dr)
	if len(records) == 0 && fetchErr != nil {
		return nil, "", fetchErr
	}

	path, err := s.archive(dr, records)
	if err != nil {
		return records, "", err
	}
	s.log.Info().Int("records", len(records)).Str("archive", path).Msg("fetch archived")
	return records, path, fetchErr
}

func (s *FetchService) archive(dr domain.DateRange, records []domain.RawRecord) (string, error) {
	if err := os.MkdirAll(s.profile.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}

	path := filepath.Join(s.profile.DataDir, ArchiveName(dr))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing archive: %w", err)
	}
	return path, nil
}

// LoadArchive reads a previously archived fetch for re-ingestion.
func LoadArchive(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	var records []domain.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	return records, nil
}
