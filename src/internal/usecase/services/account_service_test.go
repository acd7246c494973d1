package services_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

func threeAccounts(context.Context, string) ([]domain.Account, error) {
	return []domain.Account{
		{ID: "acc-1", Currency: "AED"},
		{ID: "acc-2", Currency: "AED"},
		{ID: "acc-3", Currency: "USD"},
	}, nil
}

func TestAccountServiceSnapshotKeepsOrderAndIsolatesFailures(t *testing.T) {
	svc := services.NewAccountService(accountsAPIStub{
		listAccountsFn: threeAccounts,
		getBalancesFn: func(_ context.Context, token string, accountID string) ([]domain.Balance, error) {
			if token != "tok" {
				t.Errorf("expected bearer token tok, got %q", token)
			}
			if accountID == "acc-1" {
				time.Sleep(20 * time.Millisecond)
			}
			if accountID == "acc-2" {
				return nil, &commons.APIError{Method: "GET", Path: "/accounts/acc-2/balances", StatusCode: 500, Body: "boom"}
			}
			return []domain.Balance{{AccountID: accountID, Amount: decimal.NewFromInt(100)}}, nil
		},
		getTransactionsFn: func(_ context.Context, _ string, accountID string, _ models.TransactionQuery) ([]domain.Transaction, error) {
			return []domain.Transaction{{ID: "txn-" + accountID, AccountID: accountID}}, nil
		},
	}, staticTokens("tok"), 0)

	snapshot, err := svc.Snapshot(context.Background(), models.TransactionQuery{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(snapshot.Accounts) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snapshot.Accounts))
	}
	for i, want := range []string{"acc-1", "acc-2", "acc-3"} {
		if snapshot.Accounts[i].Account.ID != want {
			t.Fatalf("expected entry %d to be %s, got %s", i, want, snapshot.Accounts[i].Account.ID)
		}
	}

	failed := snapshot.Accounts[1]
	if !strings.Contains(failed.Err, "status 500") {
		t.Fatalf("expected acc-2 error recorded, got %q", failed.Err)
	}
	if len(failed.Transactions) != 1 {
		t.Fatalf("expected acc-2 transactions kept despite balance failure, got %d", len(failed.Transactions))
	}
	if snapshot.Accounts[0].Err != "" || len(snapshot.Accounts[0].Balances) != 1 {
		t.Fatalf("expected acc-1 complete, got %+v", snapshot.Accounts[0])
	}
	if snapshot.Failed() != 1 {
		t.Fatalf("expected one failed account, got %d", snapshot.Failed())
	}
}

func TestAccountServiceSnapshotListFailureAborts(t *testing.T) {
	boom := errors.New("gateway down")
	svc := services.NewAccountService(accountsAPIStub{
		listAccountsFn: func(context.Context, string) ([]domain.Account, error) {
			return nil, boom
		},
	}, staticTokens("tok"), 0)

	if _, err := svc.Snapshot(context.Background(), models.TransactionQuery{}); !errors.Is(err, boom) {
		t.Fatalf("expected listing error, got %v", err)
	}
}

func TestAccountServiceSnapshotHonoursConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	track := func() func() {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		return func() { atomic.AddInt32(&inFlight, -1) }
	}

	svc := services.NewAccountService(accountsAPIStub{
		listAccountsFn: threeAccounts,
		getBalancesFn: func(context.Context, string, string) ([]domain.Balance, error) {
			defer track()()
			time.Sleep(10 * time.Millisecond)
			return nil, nil
		},
		getTransactionsFn: func(context.Context, string, string, models.TransactionQuery) ([]domain.Transaction, error) {
			defer track()()
			time.Sleep(10 * time.Millisecond)
			return nil, nil
		},
	}, staticTokens("tok"), 1)

	if _, err := svc.Snapshot(context.Background(), models.TransactionQuery{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// one account at a time, two calls per account
	if peak > 2 {
		t.Fatalf("expected at most 2 calls in flight, got %d", peak)
	}
}

func TestAccountServiceGetTransactionsRejectsBadRange(t *testing.T) {
	svc := services.NewAccountService(accountsAPIStub{}, staticTokens("tok"), 0)

	_, err := svc.GetTransactions(context.Background(), "acc-1", models.TransactionQuery{
		From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
