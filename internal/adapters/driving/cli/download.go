package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/browser"
	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/validate"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
	"github.com/vantoi-labs/hoadon-cli/internal/core/services"
	"github.com/vantoi-labs/hoadon-cli/internal/retrievers"
)

var (
	downloadFrom     string
	downloadTo       string
	downloadSeller   string
	downloadHeadless bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download documents for pending invoices",
	Long: `Walks invoices not yet downloaded and retrieves their PDF documents
from the issuing tax provider's lookup service. Several providers gate
downloads behind a verification step; those open a browser window and
wait for you to complete it.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadFrom, "from", "", "only invoices issued on or after this date (dd/mm/yyyy)")
	downloadCmd.Flags().StringVar(&downloadTo, "to", "", "only invoices issued on or before this date (dd/mm/yyyy)")
	downloadCmd.Flags().StringVar(&downloadSeller, "seller", "", "only invoices from this seller tax code")
	downloadCmd.Flags().BoolVar(&downloadHeadless, "headless", false, "run the browser headless (verification steps will time out)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	filter, err := parseInvoiceFilter(downloadFrom, downloadTo, downloadSeller)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	artifacts, err := newArtifactStore()
	if err != nil {
		return err
	}

	mgr := browser.NewManager(downloadHeadless)
	defer mgr.Close()

	registry := services.NewRegistry(retrievers.All(mgr, profile.ManualStepTimeout)...)
	wrapper := services.NewRetrievalWrapper(validate.NewPDFValidator(), artifacts, profile.MaxAttempts)
	orch := services.NewDownloadOrchestrator(profile, s.InvoiceStore(), registry, wrapper, artifacts)

	summary, err := orch.Run(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("download run failed: %w", err)
	}
	printDownloadSummary(cmd, summary)
	return nil
}

func parseInvoiceFilter(from, to, seller string) (domain.InvoiceFilter, error) {
	var filter domain.InvoiceFilter
	if from != "" {
		t, err := parseDay(from, "--from")
		if err != nil {
			return filter, err
		}
		filter.From = t
	}
	if to != "" {
		t, err := parseDay(to, "--to")
		if err != nil {
			return filter, err
		}
		filter.To = t
	}
	filter.SellerTaxCode = seller
	return filter, nil
}

func printDownloadSummary(cmd *cobra.Command, summary *domain.DownloadSummary) {
	cmd.Printf("Download run %s:\n", summary.RunID)
	cmd.Printf("  Succeeded:  %d\n", summary.Succeeded)
	cmd.Printf("  Reconciled: %d\n", summary.Reconciled)
	cmd.Printf("  Failed:     %d\n", summary.Failed)
	cmd.Printf("  Skipped:    %d\n", summary.SkippedTotal())

	reasons := make([]string, 0, len(summary.Skipped))
	for reason := range summary.Skipped {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		cmd.Printf("    %s: %d\n", reason, summary.Skipped[domain.SkipReason(reason)])
	}
}
