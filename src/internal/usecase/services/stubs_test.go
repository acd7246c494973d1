package services_test

import (
	"context"
	"sync"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

type staticTokens string

func (s staticTokens) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

type authStub struct {
	mu        sync.Mutex
	calls     int
	requestFn func(ctx context.Context) (domain.Token, error)
}

func (s *authStub) RequestToken(ctx context.Context) (domain.Token, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.requestFn != nil {
		return s.requestFn(ctx)
	}
	return domain.Token{}, nil
}

func (s *authStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type accountsAPIStub struct {
	listAccountsFn    func(ctx context.Context, token string) ([]domain.Account, error)
	getBalancesFn     func(ctx context.Context, token string, accountID string) ([]domain.Balance, error)
	getTransactionsFn func(ctx context.Context, token string, accountID string, query models.TransactionQuery) ([]domain.Transaction, error)
}

func (s accountsAPIStub) ListAccounts(ctx context.Context, token string) ([]domain.Account, error) {
	if s.listAccountsFn != nil {
		return s.listAccountsFn(ctx, token)
	}
	return nil, nil
}

func (s accountsAPIStub) GetBalances(ctx context.Context, token string, accountID string) ([]domain.Balance, error) {
	if s.getBalancesFn != nil {
		return s.getBalancesFn(ctx, token, accountID)
	}
	return nil, nil
}

func (s accountsAPIStub) GetTransactions(ctx context.Context, token string, accountID string, query models.TransactionQuery) ([]domain.Transaction, error) {
	if s.getTransactionsFn != nil {
		return s.getTransactionsFn(ctx, token, accountID, query)
	}
	return nil, nil
}

type paymentsAPIStub struct {
	verifyPayeeFn      func(ctx context.Context, token string, req models.PayeeVerificationRequest) (domain.PayeeVerification, error)
	initiatePaymentFn  func(ctx context.Context, token string, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error)
	authorizePaymentFn func(ctx context.Context, token string, paymentID string, otp string) (domain.Payment, error)
	getPaymentFn       func(ctx context.Context, token string, paymentID string) (domain.Payment, error)
	cancelPaymentFn    func(ctx context.Context, token string, paymentID string) (domain.Payment, error)
	listPaymentsFn     func(ctx context.Context, token string) ([]domain.Payment, error)
}

func (s paymentsAPIStub) VerifyPayee(ctx context.Context, token string, req models.PayeeVerificationRequest) (domain.PayeeVerification, error) {
	if s.verifyPayeeFn != nil {
		return s.verifyPayeeFn(ctx, token, req)
	}
	return domain.PayeeVerification{Match: domain.MatchResultMatch}, nil
}

func (s paymentsAPIStub) InitiatePayment(ctx context.Context, token string, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, error) {
	if s.initiatePaymentFn != nil {
		return s.initiatePaymentFn(ctx, token, req, idempotencyKey)
	}
	return domain.Payment{}, nil
}

func (s paymentsAPIStub) AuthorizePayment(ctx context.Context, token string, paymentID string, otp string) (domain.Payment, error) {
	if s.authorizePaymentFn != nil {
		return s.authorizePaymentFn(ctx, token, paymentID, otp)
	}
	return domain.Payment{}, nil
}

func (s paymentsAPIStub) GetPayment(ctx context.Context, token string, paymentID string) (domain.Payment, error) {
	if s.getPaymentFn != nil {
		return s.getPaymentFn(ctx, token, paymentID)
	}
	return domain.Payment{}, nil
}

func (s paymentsAPIStub) CancelPayment(ctx context.Context, token string, paymentID string) (domain.Payment, error) {
	if s.cancelPaymentFn != nil {
		return s.cancelPaymentFn(ctx, token, paymentID)
	}
	return domain.Payment{}, nil
}

func (s paymentsAPIStub) ListPayments(ctx context.Context, token string) ([]domain.Payment, error) {
	if s.listPaymentsFn != nil {
		return s.listPaymentsFn(ctx, token)
	}
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.PaymentEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Steps() []domain.PaymentStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.PaymentStep, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Step)
	}
	return out
}
