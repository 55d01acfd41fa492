package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the local store",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	querier, err := newQuerier()
	if err != nil {
		return err
	}

	stats, err := querier.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Invoices:      %d (%d downloaded, %d pending)\n",
		stats.TotalInvoices, stats.Downloaded, stats.TotalInvoices-stats.Downloaded)
	cmd.Printf("Sellers:       %d\n", stats.Sellers)
	cmd.Printf("Tax providers: %d\n", stats.TaxProviders)
	if !stats.EarliestIssued.IsZero() {
		cmd.Printf("Issued range:  %s to %s\n",
			stats.EarliestIssued.Format("2006-01-02"), stats.LatestIssued.Format("2006-01-02"))
	}
	if len(stats.ByProvider) > 0 {
		cmd.Println("By provider:")
		for _, pc := range stats.ByProvider {
			cmd.Printf("  %-15s %d\n", pc.Provider, pc.Count)
		}
	}
	return nil
}
