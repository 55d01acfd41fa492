package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

var (
	queryFrom    string
	queryTo      string
	querySeller  string
	queryPending bool
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List stored invoices",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryFrom, "from", "", "only invoices issued on or after this date (dd/mm/yyyy)")
	queryCmd.Flags().StringVar(&queryTo, "to", "", "only invoices issued on or before this date (dd/mm/yyyy)")
	queryCmd.Flags().StringVar(&querySeller, "seller", "", "only invoices from this seller tax code")
	queryCmd.Flags().BoolVar(&queryPending, "pending", false, "only invoices not yet downloaded")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output invoices as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	filter, err := parseInvoiceFilter(queryFrom, queryTo, querySeller)
	if err != nil {
		return err
	}
	filter.OnlyPending = queryPending

	querier, err := newQuerier()
	if err != nil {
		return err
	}

	invoices, err := querier.Query(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputInvoicesJSON(cmd, invoices)
	}
	return outputInvoicesTable(cmd, invoices)
}

// invoiceView is the JSON export shape: natural key plus the fields an
// operator acts on.
type invoiceView struct {
	Form         string `json:"form"`
	Series       string `json:"series"`
	Number       string `json:"number"`
	IssuedAt     string `json:"issued_at,omitempty"`
	TrackingCode string `json:"tracking_code,omitempty"`
	Seller       string `json:"seller,omitempty"`
	TaxProvider  string `json:"tax_provider,omitempty"`
	Downloaded   bool   `json:"downloaded"`
}

func toInvoiceView(inv domain.Invoice) invoiceView {
	v := invoiceView{
		Form:         inv.Key.Form,
		Series:       inv.Key.Series,
		Number:       inv.Key.Number,
		TrackingCode: inv.TrackingCode,
		Downloaded:   inv.IsDownloaded,
	}
	if !inv.IssuedAt.IsZero() {
		v.IssuedAt = inv.IssuedAt.Format(time.RFC3339)
	}
	if inv.Seller != nil {
		v.Seller = inv.Seller.Name
	}
	if inv.TaxProvider != nil {
		v.TaxProvider = inv.TaxProvider.Name
	}
	return v
}

func outputInvoicesJSON(cmd *cobra.Command, invoices []domain.Invoice) error {
	views := make([]invoiceView, len(invoices))
	for i, inv := range invoices {
		views[i] = toInvoiceView(inv)
	}
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding invoices: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputInvoicesTable(cmd *cobra.Command, invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		cmd.Println("No invoices found.")
		return nil
	}

	for _, inv := range invoices {
		state := " "
		if inv.IsDownloaded {
			state = "x"
		}
		issued := "----------"
		if !inv.IssuedAt.IsZero() {
			issued = inv.IssuedAt.Format("2006-01-02")
		}
		seller := ""
		if inv.Seller != nil {
			seller = inv.Seller.Name
		}
		cmd.Printf("[%s] %s  %-30s  %s", state, issued, seller, inv.Key)
		if inv.TrackingCode == "" {
			cmd.Print("  (no tracking code)")
		}
		cmd.Println()
	}
	cmd.Printf("\n%d invoices\n", len(invoices))
	return nil
}
