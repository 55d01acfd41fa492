package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [archive.json]",
	Short: "Ingest archived invoice records",
	Long: `Merges a previously fetched JSON archive into the local store.
Re-ingesting the same archive is harmless: existing invoices are skipped
and empty tracking codes are filled where the archive supplies them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	records, err := services.LoadArchive(args[0])
	if err != nil {
		return err
	}

	ingestor, err := newIngestor()
	if err != nil {
		return err
	}

	res, err := ingestor.Ingest(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestResult(cmd, res)
	return nil
}

func printIngestResult(cmd *cobra.Command, res *domain.IngestResult) {
	cmd.Printf("Ingestion %s:\n", res.RunID)
	cmd.Printf("  Sellers:       %d new, %d updated\n", res.NewSellers, res.UpdatedSellers)
	cmd.Printf("  Tax providers: %d new, %d updated\n", res.NewTaxProviders, res.UpdatedTaxProviders)
	cmd.Printf("  Invoices:      %d new, %d tracking codes filled\n", res.NewInvoices, res.TrackingCodeFills)
	cmd.Printf("  Skipped:       %d existing, %d dropped\n", res.SkippedInvoices, res.DroppedRecords)
}
