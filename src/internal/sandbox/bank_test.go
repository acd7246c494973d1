package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/memory"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestBank() *Bank {
	return NewBank(Credentials{ClientID: "kit-client", ClientSecret: "kit-secret"}, memory.NewPayeeDirectoryRepository(), time.Minute)
}

func paymentRequest(amount string) models.InitiatePaymentRequest {
	return models.InitiatePaymentRequest{
		Amount:          decimal.RequireFromString(amount),
		Currency:        "AED",
		DebtorAccountID: "acc-1001",
		Creditor:        domain.Creditor{Name: "Jane Doe", AccountNumber: "1234567890", BankCode: "033"},
	}
}

func TestIssueToken(t *testing.T) {
	bank := newTestBank()

	if _, err := bank.IssueToken("kit-client", "wrong", "client_credentials", ""); !errors.Is(err, ErrInvalidClient) {
		t.Fatalf("expected invalid client, got %v", err)
	}
	if _, err := bank.IssueToken("kit-client", "kit-secret", "password", ""); !errors.Is(err, ErrUnsupportedGrant) {
		t.Fatalf("expected unsupported grant, got %v", err)
	}

	resp, err := bank.IssueToken("kit-client", "kit-secret", "client_credentials", "accounts")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.ExpiresIn != 60 || resp.TokenType != "Bearer" || resp.Scope != "accounts" {
		t.Fatalf("unexpected token response %+v", resp)
	}
	if !bank.ValidToken(resp.AccessToken) {
		t.Fatal("expected issued token to be valid")
	}
	if bank.ValidToken("forged") {
		t.Fatal("expected unknown token to be rejected")
	}

	bank.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if bank.ValidToken(resp.AccessToken) {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPaymentLifecycle(t *testing.T) {
	bank := newTestBank()
	ctx := context.Background()

	payment, created, err := bank.InitiatePayment(ctx, paymentRequest("100.00"), "idem-1")
	if err != nil || !created {
		t.Fatalf("expected payment created, got created=%v err=%v", created, err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Fatalf("expected PENDING, got %s", payment.Status)
	}

	again, created, err := bank.InitiatePayment(ctx, paymentRequest("100.00"), "idem-1")
	if err != nil || created || again.ID != payment.ID {
		t.Fatalf("expected idempotent replay of %s, got %s created=%v err=%v", payment.ID, again.ID, created, err)
	}

	want := []domain.PaymentStatus{domain.PaymentStatusProcessing, domain.PaymentStatusCompleted, domain.PaymentStatusCompleted}
	for i, status := range want {
		got, err := bank.GetPayment(ctx, payment.ID)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if got.Status != status {
			t.Fatalf("poll %d: expected %s, got %s", i+1, status, got.Status)
		}
	}

	balances, err := bank.GetBalances(ctx, "acc-1001")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !balances[1].Amount.Equal(decimal.RequireFromString("24900.00")) {
		t.Fatalf("expected booked balance debited, got %s", balances[1].Amount)
	}

	txns, _ := bank.GetTransactions(ctx, "acc-1001", models.TransactionQuery{Limit: 1})
	if len(txns) != 1 || !txns[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected newest transaction to be the payment, got %+v", txns)
	}

	if _, err := bank.CancelPayment(ctx, payment.ID); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected completed payment not cancellable, got %v", err)
	}
}

func TestPaymentEndingIn99IsRejected(t *testing.T) {
	bank := newTestBank()
	ctx := context.Background()

	payment, _, err := bank.InitiatePayment(ctx, paymentRequest("10.99"), "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	_, _ = bank.GetPayment(ctx, payment.ID)
	got, _ := bank.GetPayment(ctx, payment.ID)
	if got.Status != domain.PaymentStatusRejected {
		t.Fatalf("expected REJECTED, got %s", got.Status)
	}
}

func TestLargePaymentNeedsOTP(t *testing.T) {
	bank := newTestBank()
	ctx := context.Background()

	payment, _, err := bank.InitiatePayment(ctx, paymentRequest("1500.00"), "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payment.Status != domain.PaymentStatusAwaitingAuthorization {
		t.Fatalf("expected AWAITING_AUTHORIZATION, got %s", payment.Status)
	}

	if _, err := bank.AuthorizePayment(ctx, payment.ID, "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected invalid otp, got %v", err)
	}

	authorized, err := bank.AuthorizePayment(ctx, payment.ID, AuthorizationOTP)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if authorized.Status != domain.PaymentStatusPending {
		t.Fatalf("expected PENDING after authorization, got %s", authorized.Status)
	}
}

func TestPaymentRejectsWrongCurrencyAndUnknownAccount(t *testing.T) {
	bank := newTestBank()
	ctx := context.Background()

	req := paymentRequest("10")
	req.Currency = "USD"
	if _, _, err := bank.InitiatePayment(ctx, req, ""); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected currency mismatch, got %v", err)
	}

	req = paymentRequest("10")
	req.DebtorAccountID = "acc-9"
	if _, _, err := bank.InitiatePayment(ctx, req, ""); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestInsufficientBalanceFails(t *testing.T) {
	bank := newTestBank()
	ctx := context.Background()

	req := paymentRequest("900.00")
	req.DebtorAccountID = "acc-1003"
	req.Currency = "USD"
	bank.balances["acc-1003"] = decimal.NewFromInt(5)

	payment, _, err := bank.InitiatePayment(ctx, req, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, _ = bank.GetPayment(ctx, payment.ID)
	got, _ := bank.GetPayment(ctx, payment.ID)
	if got.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", got.Status)
	}
}

func TestVerifyPayee(t *testing.T) {
	bank := newTestBank()

	tests := []struct {
		name string
		req  models.PayeeVerificationRequest
		want domain.MatchResult
	}{
		{name: "exact ignoring case", req: models.PayeeVerificationRequest{Name: "  jane   DOE", AccountNumber: "1234567890", BankCode: "033"}, want: domain.MatchResultMatch},
		{name: "same surname", req: models.PayeeVerificationRequest{Name: "J Doe", AccountNumber: "1234567890", BankCode: "033"}, want: domain.MatchResultCloseMatch},
		{name: "different holder", req: models.PayeeVerificationRequest{Name: "John Smith", AccountNumber: "1234567890", BankCode: "033"}, want: domain.MatchResultNoMatch},
		{name: "unknown account", req: models.PayeeVerificationRequest{Name: "Jane Doe", AccountNumber: "999", BankCode: "033"}, want: domain.MatchResultNoMatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := bank.VerifyPayee(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if got.Match != tc.want {
				t.Fatalf("expected %s, got %s (%s)", tc.want, got.Match, got.Reason)
			}
		})
	}
}

func TestTransactionsFilteredByDate(t *testing.T) {
	bank := newTestBank()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	txns, err := bank.GetTransactions(context.Background(), "acc-1001", models.TransactionQuery{
		From: today.AddDate(0, 0, -7),
		To:   today,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 transactions in the last week, got %d", len(txns))
	}
	if txns[0].ID != "txn-1001-1" {
		t.Fatalf("expected newest first, got %s", txns[0].ID)
	}
}
