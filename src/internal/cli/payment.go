package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// The defaults pay the sandbox's demo payee from the first account.
var paymentOpts = struct {
	amount          string
	currency        string
	debtor          string
	creditorName    string
	creditorAccount string
	creditorBank    string
	reference       string
	description     string
	otp             string
	idempotencyKey  string
	allowMismatch   bool
}{}

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Verify a payee, initiate a payment and follow it to a final status",
	Long: `Runs the full payment flow: confirmation of payee, initiation, OTP
authorization when the bank asks for it, then status polling until the
payment completes, fails or the poll budget runs out.`,
	Args: cobra.NoArgs,
	RunE: runPayment,
}

func init() {
	f := paymentCmd.Flags()
	f.StringVar(&paymentOpts.amount, "amount", "100.00", "Amount to pay")
	f.StringVar(&paymentOpts.currency, "currency", "", "Currency, defaults to the debtor account currency")
	f.StringVar(&paymentOpts.debtor, "debtor", "", "Debtor account id, defaults to the first account")
	f.StringVar(&paymentOpts.creditorName, "creditor-name", "Jane Doe", "Payee name")
	f.StringVar(&paymentOpts.creditorAccount, "creditor-account", "1234567890", "Payee account number")
	f.StringVar(&paymentOpts.creditorBank, "creditor-bank", "033", "Payee bank code")
	f.StringVar(&paymentOpts.reference, "reference", "OFKIT-DEMO", "Payment reference")
	f.StringVar(&paymentOpts.description, "description", "", "Free text description")
	f.StringVar(&paymentOpts.otp, "otp", "", "One-time password for payments that need authorization")
	f.StringVar(&paymentOpts.idempotencyKey, "idempotency-key", "", "Reuse a key to replay an earlier initiation")
	f.BoolVar(&paymentOpts.allowMismatch, "allow-mismatch", false, "Continue when payee verification returns NO_MATCH")
}

func runPayment(cmd *cobra.Command, _ []string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(paymentOpts.amount))
	if err != nil {
		return fmt.Errorf("--amount: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	debtorID, currency, err := resolveDebtor(cmd.Context(), a, paymentOpts.debtor, paymentOpts.currency)
	if err != nil {
		return err
	}

	flow := service_interfaces.PaymentFlow{
		Request: models.InitiatePaymentRequest{
			Amount:          amount,
			Currency:        currency,
			DebtorAccountID: debtorID,
			Creditor: domain.Creditor{
				Name:          paymentOpts.creditorName,
				AccountNumber: paymentOpts.creditorAccount,
				BankCode:      paymentOpts.creditorBank,
			},
			Reference:   paymentOpts.reference,
			Description: paymentOpts.description,
		},
		OTP:            paymentOpts.otp,
		AllowMismatch:  paymentOpts.allowMismatch,
		IdempotencyKey: paymentOpts.idempotencyKey,
	}

	result, runErr := a.payments.Run(cmd.Context(), flow)
	if runErr != nil && result.Verification.Match == "" {
		return runErr
	}

	if err := render(cmd.OutOrStdout(), result, func(w io.Writer) error {
		return printPaymentResult(w, result)
	}); err != nil {
		return err
	}
	return runErr
}

func resolveDebtor(ctx context.Context, a *app, debtorID, currency string) (string, string, error) {
	if debtorID != "" && currency != "" {
		return debtorID, currency, nil
	}

	accounts, err := a.accounts.ListAccounts(ctx)
	if err != nil {
		return "", "", err
	}
	if len(accounts) == 0 {
		return "", "", errors.New("no accounts available to pay from")
	}

	if debtorID == "" {
		return accounts[0].ID, firstNonEmpty(currency, accounts[0].Currency), nil
	}
	for _, acc := range accounts {
		if acc.ID == debtorID {
			return debtorID, firstNonEmpty(currency, acc.Currency), nil
		}
	}
	return "", "", fmt.Errorf("debtor account %s not found", debtorID)
}

func printPaymentResult(w io.Writer, result service_interfaces.PaymentFlowResult) error {
	v := result.Verification
	mark := green("✓")
	switch v.Match {
	case domain.MatchResultCloseMatch:
		mark = yellow("!")
	case domain.MatchResultNoMatch:
		mark = red("✗")
	}
	line := fmt.Sprintf("%s payee verification: %s", mark, v.Match)
	if v.Name != "" {
		line += " (" + v.Name + ")"
	}
	if v.Reason != "" {
		line += dim(" - " + v.Reason)
	}
	fmt.Fprintln(w, line)

	p := result.Payment
	if p.ID == "" {
		return nil
	}
	fmt.Fprintf(w, "%s payment %s: %s %s to %s\n", green("✓"), p.ID, p.Amount.StringFixed(2), p.Currency, p.Creditor.Name)
	if result.Authorized {
		fmt.Fprintf(w, "%s authorized with OTP\n", green("✓"))
	}

	status := string(p.Status)
	switch {
	case p.Status == domain.PaymentStatusCompleted:
		status = green(status)
	case p.Status.IsTerminal():
		status = red(status)
	default:
		status = yellow(status)
	}
	line = "  final status: " + status
	if p.StatusReason != "" {
		line += dim(" - " + p.StatusReason)
	}
	fmt.Fprintln(w, line)

	switch {
	case p.Status == domain.PaymentStatusAwaitingAuthorization:
		fmt.Fprintln(w, dim("  rerun with --otp to authorize, or `ofkit payments cancel "+p.ID+"`"))
	case !p.Status.IsTerminal() && result.Polled:
		fmt.Fprintln(w, dim("  still in flight; check later with `ofkit payments get "+p.ID+"`"))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
