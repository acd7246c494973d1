package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/messaging"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/openfinance"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
)

var _ service_interfaces.PaymentService = (*PaymentService)(nil)

type PaymentService struct {
	api       openfinance.PaymentsAPI
	tokens    service_interfaces.TokenSource
	journal   repo_interfaces.PaymentJournalRepository
	publisher messaging.Publisher
	policy    PollPolicy
}

// NewPaymentService builds the service. journal and publisher may be nil.
func NewPaymentService(
	api openfinance.PaymentsAPI,
	tokens service_interfaces.TokenSource,
	journal repo_interfaces.PaymentJournalRepository,
	publisher messaging.Publisher,
	policy PollPolicy,
) *PaymentService {
	if publisher == nil {
		publisher = messaging.Noop{}
	}
	return &PaymentService{
		api:       api,
		tokens:    tokens,
		journal:   journal,
		publisher: publisher,
		policy:    policy.normalized(),
	}
}

func (s *PaymentService) VerifyPayee(ctx context.Context, req models.PayeeVerificationRequest) (domain.PayeeVerification, error) {
	logger.Info("payment service verify payee request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return domain.PayeeVerification{}, err
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.PayeeVerification{}, err
	}

	result, err := s.api.VerifyPayee(ctx, token, req)
	if err != nil {
		logger.Error("payment service verify payee failed", err, nil)
		return domain.PayeeVerification{}, err
	}

	logger.Info("payment service verify payee result", logger.Fields{"match": result.Match})
	return result, nil
}

func (s *PaymentService) Initiate(ctx context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error) {
	payment, err := s.initiate(ctx, req, idempotencyKey)
	if err != nil {
		return domain.Payment{}, err
	}

	s.record(ctx, domain.PaymentStepInitiated, payment, req.Normalize())
	return payment, nil
}

func (s *PaymentService) initiate(ctx context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Payment{}, err
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		idempotencyKey = uuid.NewString()
	}

	logger.Info("payment service initiate request", logger.Fields{
		"payload":        logger.SanitizePayload(req),
		"idempotencyKey": idempotencyKey,
	})

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.Payment{}, err
	}

	payment, err := s.api.InitiatePayment(ctx, token, req, idempotencyKey)
	if err != nil {
		logger.Error("payment service initiate failed", err, nil)
		return domain.Payment{}, err
	}

	logger.Info("payment service initiate success", logger.Fields{
		"paymentId": payment.ID,
		"status":    payment.Status,
	})
	return payment, nil
}

func (s *PaymentService) Authorize(ctx context.Context, paymentID string, otp string) (domain.Payment, error) {
	if err := (models.AuthorizePaymentRequest{OTP: otp}).Validate(); err != nil {
		return domain.Payment{}, err
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.Payment{}, err
	}

	payment, err := s.api.AuthorizePayment(ctx, token, paymentID, strings.TrimSpace(otp))
	if err != nil {
		logger.Error("payment service authorize failed", err, logger.Fields{"paymentId": paymentID})
		return domain.Payment{}, err
	}

	s.record(ctx, domain.PaymentStepAuthorized, payment, nil)
	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID string) (domain.Payment, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	return s.api.GetPayment(ctx, token, paymentID)
}

func (s *PaymentService) Cancel(ctx context.Context, paymentID string) (domain.Payment, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.Payment{}, err
	}

	payment, err := s.api.CancelPayment(ctx, token, paymentID)
	if err != nil {
		logger.Error("payment service cancel failed", err, logger.Fields{"paymentId": paymentID})
		return domain.Payment{}, err
	}

	s.record(ctx, domain.PaymentStepCancelled, payment, nil)
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context) ([]domain.Payment, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.ListPayments(ctx, token)
}

// AwaitStatus polls the payment until it reaches a terminal status or the
// policy runs out of attempts. Running out is not an error: the last
// observed payment is returned as is.
func (s *PaymentService) AwaitStatus(ctx context.Context, paymentID string) (domain.Payment, error) {
	var last domain.Payment

	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		token, err := s.tokens.AccessToken(ctx)
		if err != nil {
			return last, err
		}

		payment, err := s.api.GetPayment(ctx, token, paymentID)
		if err != nil {
			logger.Error("payment status poll failed", err, logger.Fields{
				"paymentId": paymentID,
				"attempt":   attempt,
			})
			return last, err
		}

		logger.Info("payment status polled", logger.Fields{
			"paymentId": paymentID,
			"attempt":   attempt,
			"status":    payment.Status,
		})

		if payment.Status != last.Status {
			s.record(ctx, domain.PaymentStepPolled, payment, nil)
		}
		last = payment

		if payment.Status.IsTerminal() {
			return payment, nil
		}
		if attempt == s.policy.MaxAttempts {
			break
		}

		if err := sleepContext(ctx, s.policy.Delay(attempt)); err != nil {
			return last, err
		}
	}

	logger.Warn("payment did not reach a terminal status", logger.Fields{
		"paymentId": paymentID,
		"attempts":  s.policy.MaxAttempts,
		"status":    last.Status,
	})
	return last, nil
}

// Run walks a payment through verification, initiation, optional OTP
// authorization and status polling. Nothing is undone when a step fails.
func (s *PaymentService) Run(ctx context.Context, flow service_interfaces.PaymentFlow) (service_interfaces.PaymentFlowResult, error) {
	var result service_interfaces.PaymentFlowResult

	req := flow.Request.Normalize()
	if err := req.Validate(); err != nil {
		return result, err
	}

	verification, err := s.VerifyPayee(ctx, models.PayeeVerificationFor(req.Creditor))
	if err != nil {
		return result, fmt.Errorf("verify payee: %w", err)
	}
	result.Verification = verification

	if verification.Match == domain.MatchResultNoMatch && !flow.AllowMismatch {
		reason := verification.Reason
		if reason == "" {
			reason = "name does not match account holder"
		}
		return result, fmt.Errorf("%w: %s", commons.ErrPayeeMismatch, reason)
	}

	payment, err := s.initiate(ctx, req, flow.IdempotencyKey)
	if err != nil {
		return result, fmt.Errorf("initiate payment: %w", err)
	}
	result.Payment = payment
	s.record(ctx, domain.PaymentStepVerified, payment, verification)
	s.record(ctx, domain.PaymentStepInitiated, payment, req)

	if payment.Status == domain.PaymentStatusAwaitingAuthorization {
		if strings.TrimSpace(flow.OTP) == "" {
			logger.Warn("payment awaits authorization and no otp was given", logger.Fields{"paymentId": payment.ID})
			return result, nil
		}

		payment, err = s.Authorize(ctx, payment.ID, flow.OTP)
		if err != nil {
			return result, fmt.Errorf("authorize payment: %w", err)
		}
		result.Payment = payment
		result.Authorized = true
	}

	if payment.Status.IsTerminal() {
		return result, nil
	}

	final, err := s.AwaitStatus(ctx, payment.ID)
	if final.ID != "" {
		result.Payment = final
		result.Polled = true
	}
	if err != nil {
		return result, fmt.Errorf("await payment status: %w", err)
	}
	return result, nil
}

func (s *PaymentService) Journal(ctx context.Context, paymentID string) ([]domain.PaymentJournalEntry, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.ListByPaymentID(ctx, paymentID)
}

// record writes a journal entry and publishes an event for one step. Both
// are side channels: failures are logged and never fail the flow.
func (s *PaymentService) record(ctx context.Context, step domain.PaymentStep, payment domain.Payment, audit any) {
	now := time.Now().UTC()

	if s.journal != nil {
		entry := domain.PaymentJournalEntry{
			PaymentID:    payment.ID,
			Step:         step,
			Status:       payment.Status,
			Amount:       payment.Amount,
			Currency:     payment.Currency,
			AuditPayload: auditPayload(audit),
			CreatedAt:    now,
		}
		if _, err := s.journal.Append(ctx, entry); err != nil {
			logger.Error("payment journal append failed", err, logger.Fields{
				"paymentId": payment.ID,
				"step":      step,
			})
		}
	}

	event := domain.PaymentEvent{
		PaymentID:  payment.ID,
		Step:       step,
		Status:     payment.Status,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		OccurredAt: now,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("payment event not published", logger.Fields{
			"paymentId": payment.ID,
			"step":      step,
			"error":     err.Error(),
		})
	}
}

func auditPayload(v any) string {
	if v == nil {
		return "{}"
	}
	raw, err := json.Marshal(logger.SanitizePayload(v))
	if err != nil {
		return "{}"
	}
	return string(raw)
}
