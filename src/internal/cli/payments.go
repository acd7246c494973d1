package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Inspect and cancel payments",
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments known to the bank",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		payments, err := a.payments.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), payments, func(w io.Writer) error {
			return printPayments(w, payments)
		})
	},
}

var paymentsGetCmd = &cobra.Command{
	Use:   "get <payment-id>",
	Short: "Show the current status of a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		payment, err := a.payments.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), payment, func(w io.Writer) error {
			return printPayments(w, []domain.Payment{payment})
		})
	},
}

var paymentsCancelCmd = &cobra.Command{
	Use:   "cancel <payment-id>",
	Short: "Cancel a payment that has not started processing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		payment, err := a.payments.Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), payment, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s payment %s is %s\n", green("✓"), payment.ID, payment.Status)
			return err
		})
	},
}

var paymentsJournalCmd = &cobra.Command{
	Use:   "journal <payment-id>",
	Short: "Show the locally recorded steps of a payment",
	Long: `Reads the payment journal written by earlier commands. Without DATABASE_DSN
the journal only lives for one invocation, so this is mostly useful with Postgres.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.payments.Journal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), entries, func(w io.Writer) error {
			return printJournal(w, entries)
		})
	},
}

func init() {
	paymentsCmd.AddCommand(paymentsListCmd, paymentsGetCmd, paymentsCancelCmd, paymentsJournalCmd)
}

func printPayments(w io.Writer, payments []domain.Payment) error {
	if len(payments) == 0 {
		_, err := fmt.Fprintln(w, "No payments.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tAMOUNT\tCREDITOR\tCREATED")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n",
			p.ID, p.Status, p.Amount.StringFixed(2), p.Currency, p.Creditor.Name, p.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func printJournal(w io.Writer, entries []domain.PaymentJournalEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No journal entries.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTEP\tSTATUS\tAMOUNT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Step, e.Status, e.Amount.StringFixed(2), e.Currency)
	}
	return tw.Flush()
}
