package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantoi-labs/hoadon-cli/internal/core/services"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [tracking-file]",
	Short: "Backfill tracking codes from a flat-file export",
	Long: `Reads a seller-provided export of tracking codes and fills them into
matching invoices. Entries match on series and number; codes already
stored are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	res, err := services.NewTrackingReconciler(s.InvoiceStore()).Reconcile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	cmd.Printf("Entries:     %d (%d malformed)\n", res.Entries, res.Malformed)
	cmd.Printf("Filled:      %d\n", res.Filled)
	cmd.Printf("Already set: %d\n", res.AlreadySet)
	cmd.Printf("Unmatched:   %d\n", res.Unmatched)
	return nil
}
