package openfinance

import (
	"context"
	"fmt"
	"net/http"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

func (c *Client) ListAccounts(ctx context.Context, token string) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := c.do(ctx, request{method: http.MethodGet, path: "/accounts", token: token}, "accounts", &accounts); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (c *Client) GetBalances(ctx context.Context, token string, accountID string) ([]domain.Balance, error) {
	var balances []domain.Balance
	path := "/accounts/" + escape(accountID) + "/balances"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, "balances", &balances); err != nil {
		return nil, fmt.Errorf("get balances for account %s: %w", accountID, err)
	}

	for i := range balances {
		if balances[i].AccountID == "" {
			balances[i].AccountID = accountID
		}
	}
	return balances, nil
}

func (c *Client) GetTransactions(ctx context.Context, token string, accountID string, query models.TransactionQuery) ([]domain.Transaction, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("get transactions for account %s: %w", accountID, err)
	}

	var transactions []domain.Transaction
	path := "/accounts/" + escape(accountID) + "/transactions"
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		query:  query.Values(),
		token:  token,
	}, "transactions", &transactions); err != nil {
		return nil, fmt.Errorf("get transactions for account %s: %w", accountID, err)
	}

	for i := range transactions {
		if transactions[i].AccountID == "" {
			transactions[i].AccountID = accountID
		}
	}
	return transactions, nil
}
