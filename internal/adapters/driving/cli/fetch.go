package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

var (
	fetchFrom   string
	fetchTo     string
	fetchIngest bool
)

// dateLayout is the operator-facing day format.
const dateLayout = "02/01/2006"

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch invoice records from the portal",
	Long: `Queries the national portal for invoice records in a date range and
archives them as JSON in the data directory. With --ingest the records
are merged into the local store in the same run.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date (dd/mm/yyyy)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date (dd/mm/yyyy)")
	fetchCmd.Flags().BoolVar(&fetchIngest, "ingest", false, "ingest fetched records immediately")
	_ = fetchCmd.MarkFlagRequired("from")
	_ = fetchCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(fetchCmd)
}

func parseDay(value, flag string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: %w", flag, value, err)
	}
	return t, nil
}

func parseDateRange(from, to string) (domain.DateRange, error) {
	start, err := parseDay(from, "--from")
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := parseDay(to, "--to")
	if err != nil {
		return domain.DateRange{}, err
	}
	dr := domain.DateRange{From: start, To: end}
	if !dr.Valid() {
		return domain.DateRange{}, fmt.Errorf("%w: end date precedes start date", domain.ErrInvalidInput)
	}
	return dr, nil
}

func runFetch(cmd *cobra.Command, _ []string) error {
	dr, err := parseDateRange(fetchFrom, fetchTo)
	if err != nil {
		return err
	}

	records, path, fetchErr := newFetchService().Fetch(cmd.Context(), dr)
	if fetchErr != nil && len(records) == 0 {
		return fmt.Errorf("fetch failed: %w", fetchErr)
	}

	cmd.Printf("Fetched %d records into %s\n", len(records), path)
	if fetchErr != nil {
		cmd.Printf("Warning: some fetch dimensions failed: %v\n", fetchErr)
	}

	if fetchIngest {
		ingestor, err := newIngestor()
		if err != nil {
			return err
		}
		res, err := ingestor.Ingest(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		printIngestResult(cmd, res)
	}
	return nil
}
