package service_interfaces

import (
	"context"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

// PaymentFlow is the input to a full verify, initiate, authorize and poll run.
type PaymentFlow struct {
	Request        models.InitiatePaymentRequest
	OTP            string
	AllowMismatch  bool
	IdempotencyKey string
}

type PaymentFlowResult struct {
	Verification domain.PayeeVerification `json:"verification" yaml:"verification"`
	Payment      domain.Payment           `json:"payment" yaml:"payment"`
	Authorized   bool                     `json:"authorized" yaml:"authorized"`
	Polled       bool                     `json:"polled" yaml:"polled"`
}

type PaymentService interface {
	VerifyPayee(ctx context.Context, req models.PayeeVerificationRequest) (domain.PayeeVerification, error)
	Initiate(ctx context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error)
	Authorize(ctx context.Context, paymentID string, otp string) (domain.Payment, error)
	Get(ctx context.Context, paymentID string) (domain.Payment, error)
	Cancel(ctx context.Context, paymentID string) (domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
	AwaitStatus(ctx context.Context, paymentID string) (domain.Payment, error)
	Run(ctx context.Context, flow PaymentFlow) (PaymentFlowResult, error)
	Journal(ctx context.Context, paymentID string) ([]domain.PaymentJournalEntry, error)
}
