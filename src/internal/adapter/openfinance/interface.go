package openfinance

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type AuthAPI interface {
	RequestToken(ctx context.Context) (domain.Token, error)
}

type AccountsAPI interface {
	ListAccounts(ctx context.Context, token string) ([]domain.Account, error)
	GetBalances(ctx context.Context, token string, accountID string) ([]domain.Balance, error)
	GetTransactions(ctx context.Context, token string, accountID string, query models.TransactionQuery) ([]domain.Transaction, error)
}

type PaymentsAPI interface {
	VerifyPayee(ctx context.Context, token string, req models.PayeeVerificationRequest) (domain.PayeeVerification, error)
	InitiatePayment(ctx context.Context, token string, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error)
	AuthorizePayment(ctx context.Context, token string, paymentID string, otp string) (domain.Payment, error)
	GetPayment(ctx context.Context, token string, paymentID string) (domain.Payment, error)
	CancelPayment(ctx context.Context, token string, paymentID string) (domain.Payment, error)
	ListPayments(ctx context.Context, token string) ([]domain.Payment, error)
}
