package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/shopspring/decimal"
)

type PaymentJournalRepository struct {
	db *sql.DB
}

func NewPaymentJournalRepository(db *sql.DB) *PaymentJournalRepository {
	return &PaymentJournalRepository{db: db}
}

func (r *PaymentJournalRepository) Append(ctx context.Context, entry domain.PaymentJournalEntry) (domain.PaymentJournalEntry, error) {
	logger.Debug("payment journal repository append", logger.Fields{
		"paymentId": entry.PaymentID,
		"step":      entry.Step,
		"status":    entry.Status,
	})

	const query = `
INSERT INTO payment_journal (
	payment_id,
	step,
	status,
	amount,
	currency,
	audit_payload
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	var (
		id        int64
		createdAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.PaymentID,
		entry.Step,
		entry.Status,
		entry.Amount.String(),
		entry.Currency,
		entry.AuditPayload,
	).Scan(&id, &createdAt); err != nil {
		logger.Error("payment journal repository append failed", err, logger.Fields{
			"paymentId": entry.PaymentID,
			"step":      entry.Step,
		})
		return domain.PaymentJournalEntry{}, fmt.Errorf("append payment journal entry: %w", err)
	}

	entry.ID = id
	entry.CreatedAt = createdAt
	return entry, nil
}

func (r *PaymentJournalRepository) ListByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentJournalEntry, error) {
	const query = `
SELECT id, payment_id, step, status, amount, currency, audit_payload, created_at
FROM payment_journal
WHERE payment_id = $1
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, paymentID)
	if err != nil {
		logger.Error("payment journal repository list failed", err, logger.Fields{
			"paymentId": paymentID,
		})
		return nil, fmt.Errorf("list payment journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.PaymentJournalEntry
	for rows.Next() {
		var (
			entry  domain.PaymentJournalEntry
			step   string
			status string
			amount string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.PaymentID,
			&step,
			&status,
			&amount,
			&entry.Currency,
			&entry.AuditPayload,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment journal row: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse journal amount %q: %w", amount, err)
		}
		entry.Amount = parsed
		entry.Step = domain.PaymentStep(step)
		entry.Status = domain.PaymentStatus(status)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment journal: %w", err)
	}

	return entries, nil
}
