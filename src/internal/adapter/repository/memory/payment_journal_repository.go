package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type PaymentJournalRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.PaymentJournalEntry
}

func NewPaymentJournalRepository() *PaymentJournalRepository {
	return &PaymentJournalRepository{}
}

func (r *PaymentJournalRepository) Append(_ context.Context, entry domain.PaymentJournalEntry) (domain.PaymentJournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *PaymentJournalRepository) ListByPaymentID(_ context.Context, paymentID string) ([]domain.PaymentJournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.PaymentJournalEntry
	for _, e := range r.entries {
		if e.PaymentID == paymentID {
			out = append(out, e)
		}
	}
	return out, nil
}
