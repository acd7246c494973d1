package openfinance

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/google/uuid"
)

func (c *Client) VerifyPayee(ctx context.Context, token string, req models.PayeeVerificationRequest) (domain.PayeeVerification, error) {
	if err := req.Validate(); err != nil {
		return domain.PayeeVerification{}, fmt.Errorf("verify payee: %w", err)
	}

	var result domain.PayeeVerification
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/payee-verification",
		token:  token,
		json:   req,
	}, "", &result); err != nil {
		return domain.PayeeVerification{}, fmt.Errorf("verify payee: %w", err)
	}
	return result, nil
}

// InitiatePayment creates a payment. An empty idempotencyKey gets a fresh one.
func (c *Client) InitiatePayment(ctx context.Context, token string, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Payment{}, fmt.Errorf("initiate payment: %w", err)
	}

	if strings.TrimSpace(idempotencyKey) == "" {
		idempotencyKey = uuid.NewString()
	}

	var payment domain.Payment
	if err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/payments",
		token:   token,
		json:    req,
		headers: http.Header{HeaderIdempotencyKey: []string{idempotencyKey}},
	}, "", &payment); err != nil {
		return domain.Payment{}, fmt.Errorf("initiate payment: %w", err)
	}
	return payment, nil
}

func (c *Client) AuthorizePayment(ctx context.Context, token string, paymentID string, otp string) (domain.Payment, error) {
	body := models.AuthorizePaymentRequest{OTP: strings.TrimSpace(otp)}
	if err := body.Validate(); err != nil {
		return domain.Payment{}, fmt.Errorf("authorize payment %s: %w", paymentID, err)
	}

	var payment domain.Payment
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/payments/" + escape(paymentID) + "/authorize",
		token:  token,
		json:   body,
	}, "", &payment); err != nil {
		return domain.Payment{}, fmt.Errorf("authorize payment %s: %w", paymentID, err)
	}
	return payment, nil
}

func (c *Client) GetPayment(ctx context.Context, token string, paymentID string) (domain.Payment, error) {
	var payment domain.Payment
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/payments/" + escape(paymentID),
		token:  token,
	}, "", &payment); err != nil {
		return domain.Payment{}, fmt.Errorf("get payment %s: %w", paymentID, err)
	}
	return payment, nil
}

// CancelPayment deletes a payment. Servers answering 204 yield a payment
// carrying only the id and the CANCELLED status.
func (c *Client) CancelPayment(ctx context.Context, token string, paymentID string) (domain.Payment, error) {
	payment := domain.Payment{ID: paymentID, Status: domain.PaymentStatusCancelled}
	if err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/payments/" + escape(paymentID),
		token:  token,
	}, "", &payment); err != nil {
		return domain.Payment{}, fmt.Errorf("cancel payment %s: %w", paymentID, err)
	}
	return payment, nil
}

func (c *Client) ListPayments(ctx context.Context, token string) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := c.do(ctx, request{method: http.MethodGet, path: "/payments", token: token}, "payments", &payments); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
