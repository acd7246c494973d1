package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/spf13/cobra"
)

var (
	accountsFrom  string
	accountsTo    string
	accountsLimit int
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts with their balances and recent transactions",
	Long: `Lists every account and fetches balances and transactions for all of them
concurrently. An account whose details fail is reported without hiding the rest.`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func init() {
	accountsCmd.Flags().StringVar(&accountsFrom, "from", "", "Earliest booking date (YYYY-MM-DD)")
	accountsCmd.Flags().StringVar(&accountsTo, "to", "", "Latest booking date (YYYY-MM-DD)")
	accountsCmd.Flags().IntVar(&accountsLimit, "limit", 5, "Transactions per account, 0 for all")
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	query, err := transactionQuery(accountsFrom, accountsTo, accountsLimit)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	snapshot, err := a.accounts.Snapshot(cmd.Context(), query)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), snapshot, func(w io.Writer) error {
		return printSnapshot(w, snapshot)
	})
}

func transactionQuery(from, to string, limit int) (models.TransactionQuery, error) {
	q := models.TransactionQuery{Limit: limit}
	if from != "" {
		t, err := time.Parse(models.DateFormat, from)
		if err != nil {
			return q, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
		}
		q.From = t
	}
	if to != "" {
		t, err := time.Parse(models.DateFormat, to)
		if err != nil {
			return q, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
		}
		q.To = t
	}
	return q, q.Validate()
}

func printSnapshot(w io.Writer, snapshot domain.Snapshot) error {
	if len(snapshot.Accounts) == 0 {
		_, err := fmt.Fprintln(w, "No accounts.")
		return err
	}

	for i, entry := range snapshot.Accounts {
		if i > 0 {
			fmt.Fprintln(w)
		}

		acc := entry.Account
		title := acc.ID
		if acc.Nickname != "" {
			title += " (" + acc.Nickname + ")"
		}
		fmt.Fprintf(w, "%s  %s %s %s\n", title, acc.Type, acc.Currency, dim(acc.AccountNumber))

		if entry.Err != "" {
			fmt.Fprintf(w, "  %s %s\n", red("✗"), entry.Err)
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, b := range entry.Balances {
			fmt.Fprintf(tw, "  %s\t%s %s\t%s\n", b.Type, b.Amount.StringFixed(2), b.Currency, b.CreditDebitIndicator)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if len(entry.Transactions) == 0 {
			fmt.Fprintln(w, dim("  no transactions"))
			continue
		}
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, t := range entry.Transactions {
			sign := "+"
			if t.CreditDebitIndicator == domain.Debit {
				sign = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s%s %s\t%s\n", t.BookingDate.Format(models.DateFormat), sign, t.Amount.StringFixed(2), t.Currency, t.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if failed := snapshot.Failed(); failed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %d of %d accounts incomplete\n", yellow("!"), failed, len(snapshot.Accounts))
	}
	return nil
}
