package repo_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

// PayeeDirectory resolves the registered holder of an account at a bank.
// Lookup returns commons.ErrRecordNotFound for unknown accounts.
type PayeeDirectory interface {
	Lookup(ctx context.Context, accountNumber string, bankCode string) (domain.Creditor, error)
}
