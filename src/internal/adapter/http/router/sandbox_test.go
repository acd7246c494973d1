package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/memory"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/sandbox"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/service_interfaces"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

func newSandboxClient(t *testing.T) *openfinance.Client {
	t.Helper()

	bank := sandbox.NewBank(sandbox.Credentials{ClientID: "kit-client", ClientSecret: "kit-secret"}, memory.NewPayeeDirectoryRepository(), time.Hour)
	srv := httptest.NewServer(NewSandbox(bank))
	t.Cleanup(srv.Close)

	client, err := openfinance.NewClient(openfinance.ClientConfig{
		BaseURL:      srv.URL,
		ClientID:     "kit-client",
		ClientSecret: "kit-secret",
		Scope:        "accounts payments",
		HTTPClient:   srv.Client(),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return client
}

func TestSandboxPaymentFlowEndToEnd(t *testing.T) {
	client := newSandboxClient(t)
	ctx := context.Background()

	tokens := services.NewTokenProvider(client, memory.NewTokenStore(), "kit-client", services.DefaultTokenSkew)
	journal := memory.NewPaymentJournalRepository()
	payments := services.NewPaymentService(client, tokens, journal, nil, services.PollPolicy{
		MaxAttempts: 10,
		Interval:    time.Millisecond,
		Multiplier:  1,
	})

	result, err := payments.Run(ctx, service_interfaces.PaymentFlow{
		Request: models.InitiatePaymentRequest{
			Amount:          decimal.RequireFromString("1500.00"),
			Currency:        "AED",
			DebtorAccountID: "acc-1001",
			Creditor:        domain.Creditor{Name: "Jane Doe", AccountNumber: "1234567890", BankCode: "033"},
			Reference:       "INV-42",
		},
		OTP: sandbox.AuthorizationOTP,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if result.Verification.Match != domain.MatchResultMatch {
		t.Fatalf("expected MATCH, got %s", result.Verification.Match)
	}
	if !result.Authorized {
		t.Fatal("expected OTP authorization step")
	}
	if result.Payment.Status != domain.PaymentStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Payment.Status)
	}

	entries, err := payments.Journal(ctx, result.Payment.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(entries) < 4 {
		t.Fatalf("expected verified, initiated, authorized and polled entries, got %d", len(entries))
	}

	listed, err := payments.List(ctx)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(listed) != 1 || listed[0].ID != result.Payment.ID {
		t.Fatalf("expected the payment listed, got %+v", listed)
	}
}

func TestSandboxSnapshot(t *testing.T) {
	client := newSandboxClient(t)
	tokens := services.NewTokenProvider(client, nil, "kit-client", services.DefaultTokenSkew)
	accounts := services.NewAccountService(client, tokens, 2)

	snapshot, err := accounts.Snapshot(context.Background(), models.TransactionQuery{Limit: 2})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(snapshot.Accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(snapshot.Accounts))
	}
	for _, entry := range snapshot.Accounts {
		if entry.Err != "" {
			t.Fatalf("expected no errors, got %q for %s", entry.Err, entry.Account.ID)
		}
		if len(entry.Balances) != 2 {
			t.Fatalf("expected 2 balances for %s, got %d", entry.Account.ID, len(entry.Balances))
		}
		if len(entry.Transactions) > 2 {
			t.Fatalf("expected limit applied for %s, got %d", entry.Account.ID, len(entry.Transactions))
		}
	}
}

func TestSandboxRejectsUnauthenticatedCalls(t *testing.T) {
	client := newSandboxClient(t)

	_, err := client.ListAccounts(context.Background(), "forged")
	var apiErr *commons.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 API error, got %v", err)
	}
}

func TestSandboxCancelAndConflict(t *testing.T) {
	client := newSandboxClient(t)
	ctx := context.Background()

	token, err := client.RequestToken(ctx)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	payment, err := client.InitiatePayment(ctx, token.AccessToken, models.InitiatePaymentRequest{
		Amount:          decimal.RequireFromString("20.00"),
		Currency:        "AED",
		DebtorAccountID: "acc-1001",
		Creditor:        domain.Creditor{Name: "Jane Doe", AccountNumber: "1234567890", BankCode: "033"},
	}, "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	cancelled, err := client.CancelPayment(ctx, token.AccessToken, payment.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cancelled.Status != domain.PaymentStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	_, err = client.CancelPayment(ctx, token.AccessToken, payment.ID)
	var apiErr *commons.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second cancel, got %v", err)
	}
}

func TestSandboxTokenErrors(t *testing.T) {
	bank := sandbox.NewBank(sandbox.Credentials{ClientID: "kit-client", ClientSecret: "kit-secret"}, memory.NewPayeeDirectoryRepository(), time.Hour)
	mux := NewSandbox(bank)

	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader("grant_type=client_credentials&client_id=kit-client&client_secret=nope"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized || !strings.Contains(rr.Body.String(), "invalid_client") {
		t.Fatalf("expected 401 invalid_client, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestSwaggerServed(t *testing.T) {
	mux := New(nil, nil, nil, nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/openapi.json", nil))

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/payments/{id}/authorize") {
		t.Fatalf("expected openapi document, got %d", rr.Code)
	}
}
