package repo_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type PaymentJournalRepository interface {
	Append(ctx context.Context, entry domain.PaymentJournalEntry) (domain.PaymentJournalEntry, error)
	ListByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentJournalEntry, error)
}
