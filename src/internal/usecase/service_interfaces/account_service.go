package service_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type AccountService interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error)
	GetTransactions(ctx context.Context, accountID string, query models.TransactionQuery) ([]domain.Transaction, error)
	Snapshot(ctx context.Context, query models.TransactionQuery) (domain.Snapshot, error)
}
