package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/service_interfaces"
	"golang.org/x/sync/errgroup"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	api         openfinance.AccountsAPI
	tokens      service_interfaces.TokenSource
	concurrency int
}

// NewAccountService builds the service. concurrency bounds how many accounts
// Snapshot fetches at once; zero or less means no bound.
func NewAccountService(api openfinance.AccountsAPI, tokens service_interfaces.TokenSource, concurrency int) *AccountService {
	return &AccountService{api: api, tokens: tokens, concurrency: concurrency}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.api.ListAccounts(ctx, token)
	if err != nil {
		logger.Error("account service list accounts failed", err, nil)
		return nil, err
	}

	logger.Info("account service list accounts success", logger.Fields{"count": len(accounts)})
	return accounts, nil
}

func (s *AccountService) GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.GetBalances(ctx, token, accountID)
}

func (s *AccountService) GetTransactions(ctx context.Context, accountID string, query models.TransactionQuery) ([]domain.Transaction, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.GetTransactions(ctx, token, accountID, query)
}

// Snapshot lists every account and fetches balances and transactions for all
// of them concurrently. A failure on one account is recorded on that entry;
// only a failed listing aborts the snapshot. Entries keep the listing order.
func (s *AccountService) Snapshot(ctx context.Context, query models.TransactionQuery) (domain.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return domain.Snapshot{}, err
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	accounts, err := s.api.ListAccounts(ctx, token)
	if err != nil {
		logger.Error("account snapshot list accounts failed", err, nil)
		return domain.Snapshot{}, fmt.Errorf("list accounts: %w", err)
	}

	entries := make([]domain.AccountSnapshot, len(accounts))

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			entries[i] = s.fetchAccount(ctx, token, account, query)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	snapshot := domain.Snapshot{GeneratedAt: time.Now().UTC(), Accounts: entries}
	logger.Info("account snapshot built", logger.Fields{
		"accounts": len(entries),
		"failed":   snapshot.Failed(),
	})
	return snapshot, nil
}

func (s *AccountService) fetchAccount(ctx context.Context, token string, account domain.Account, query models.TransactionQuery) domain.AccountSnapshot {
	entry := domain.AccountSnapshot{Account: account}

	var (
		g        errgroup.Group
		balErr   error
		txnErr   error
		balances []domain.Balance
		txns     []domain.Transaction
	)
	g.Go(func() error {
		balances, balErr = s.api.GetBalances(ctx, token, account.ID)
		return balErr
	})
	g.Go(func() error {
		txns, txnErr = s.api.GetTransactions(ctx, token, account.ID, query)
		return txnErr
	})
	_ = g.Wait()

	entry.Balances = balances
	entry.Transactions = txns

	if err := errors.Join(describeAs("balances", balErr), describeAs("transactions", txnErr)); err != nil {
		entry.Err = err.Error()
		logger.Error("account snapshot entry failed", err, logger.Fields{"accountId": account.ID})
	}
	return entry
}

func describeAs(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s", what, commons.Describe(err))
}
