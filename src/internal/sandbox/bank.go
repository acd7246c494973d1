package sandbox

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/http/models"
	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AuthorizationOTP is the one-time password the sandbox accepts.
	AuthorizationOTP = "123456"
	DefaultTokenTTL  = time.Hour
	BankCode         = "999"
	grantType        = "client_credentials"
)

var (
	ErrInvalidClient       = errors.New("client authentication failed")
	ErrUnsupportedGrant    = errors.New("grant type not supported")
	ErrAccountNotFound     = errors.New("account not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidOTP          = errors.New("otp is not valid for this payment")
	ErrCurrencyMismatch    = errors.New("currency does not match debtor account")
	authorizationThreshold = decimal.NewFromInt(1000)
	rejectedCents          = decimal.RequireFromString("0.99")
)

// Credentials is the single client the sandbox issues tokens to.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Bank is the in-memory state behind the sandbox API. All methods are safe
// for concurrent use.
type Bank struct {
	creds    Credentials
	payees   repo_interfaces.PayeeDirectory
	tokenTTL time.Duration
	now      func() time.Time

	mu           sync.Mutex
	tokens       map[string]time.Time
	accounts     []domain.Account
	balances     map[string]decimal.Decimal
	transactions map[string][]domain.Transaction
	payments     map[string]*domain.Payment
	paymentOrder []string
	idempotency  map[string]string
}

func NewBank(creds Credentials, payees repo_interfaces.PayeeDirectory, tokenTTL time.Duration) *Bank {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	b := &Bank{
		creds:        creds,
		payees:       payees,
		tokenTTL:     tokenTTL,
		now:          time.Now,
		tokens:       make(map[string]time.Time),
		balances:     make(map[string]decimal.Decimal),
		transactions: make(map[string][]domain.Transaction),
		payments:     make(map[string]*domain.Payment),
		idempotency:  make(map[string]string),
	}
	b.seed()
	return b
}

// IssueToken runs the client-credentials grant.
func (b *Bank) IssueToken(clientID, clientSecret, grant, scope string) (models.TokenResponse, error) {
	if grant != grantType {
		return models.TokenResponse{}, ErrUnsupportedGrant
	}
	if !secureEqual(clientID, b.creds.ClientID) || !secureEqual(clientSecret, b.creds.ClientSecret) {
		return models.TokenResponse{}, ErrInvalidClient
	}

	token := "sbx_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	b.mu.Lock()
	b.tokens[token] = b.now().Add(b.tokenTTL)
	b.mu.Unlock()

	if strings.TrimSpace(scope) == "" {
		scope = "accounts payments"
	}
	return models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(b.tokenTTL / time.Second),
		Scope:       scope,
	}, nil
}

// ValidToken reports whether token was issued here and has not expired.
func (b *Bank) ValidToken(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.tokens[token]
	if !ok {
		return false
	}
	if !b.now().Before(expiry) {
		delete(b.tokens, token)
		return false
	}
	return true
}

func (b *Bank) ListAccounts(_ context.Context) ([]domain.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Account, len(b.accounts))
	copy(out, b.accounts)
	return out, nil
}

func (b *Bank) GetBalances(_ context.Context, accountID string) ([]domain.Balance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	account, ok := b.accountLocked(accountID)
	if !ok {
		return nil, ErrAccountNotFound
	}

	updated := b.now().UTC()
	return []domain.Balance{
		newBalance(account, "CLOSING_AVAILABLE", b.availableLocked(account.ID), updated),
		newBalance(account, "CLOSING_BOOKED", b.balances[account.ID], updated),
	}, nil
}

// GetTransactions returns the account's transactions newest first, filtered
// by booking date and truncated to query.Limit.
func (b *Bank) GetTransactions(_ context.Context, accountID string, query models.TransactionQuery) ([]domain.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.accountLocked(accountID); !ok {
		return nil, ErrAccountNotFound
	}

	out := []domain.Transaction{}
	for _, t := range b.transactions[accountID] {
		day := t.BookingDate.UTC().Truncate(24 * time.Hour)
		if !query.From.IsZero() && day.Before(query.From.UTC().Truncate(24*time.Hour)) {
			continue
		}
		if !query.To.IsZero() && day.After(query.To.UTC().Truncate(24*time.Hour)) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookingDate.After(out[j].BookingDate)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// VerifyPayee compares the supplied name with the directory entry for the
// account. Case and spacing are ignored; sharing a surname is a close match.
func (b *Bank) VerifyPayee(ctx context.Context, req models.PayeeVerificationRequest) (domain.PayeeVerification, error) {
	result := domain.PayeeVerification{
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		BankCode:      strings.TrimSpace(req.BankCode),
	}

	payee, err := b.payees.Lookup(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			result.Match = domain.MatchResultNoMatch
			result.Reason = "account not found at bank"
			return result, nil
		}
		return domain.PayeeVerification{}, err
	}

	given, actual := normalizeName(req.Name), normalizeName(payee.Name)
	switch {
	case given == actual:
		result.Match = domain.MatchResultMatch
		result.Name = payee.Name
	case closeMatch(given, actual):
		result.Match = domain.MatchResultCloseMatch
		result.Name = payee.Name
		result.Reason = "name is similar to the account holder name"
	default:
		result.Match = domain.MatchResultNoMatch
		result.Reason = "name does not match the account holder"
	}
	return result, nil
}

// InitiatePayment creates a payment. Repeating an idempotency key returns the
// payment created by the first call.
func (b *Bank) InitiatePayment(_ context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (domain.Payment, bool, error) {
	req = req.Normalize()

	b.mu.Lock()
	defer b.mu.Unlock()

	if idempotencyKey != "" {
		if id, ok := b.idempotency[idempotencyKey]; ok {
			return *b.payments[id], false, nil
		}
	}

	debtor, ok := b.accountLocked(req.DebtorAccountID)
	if !ok {
		return domain.Payment{}, false, ErrAccountNotFound
	}
	if debtor.Currency != req.Currency {
		return domain.Payment{}, false, fmt.Errorf("%w: account is %s, payment is %s", ErrCurrencyMismatch, debtor.Currency, req.Currency)
	}

	now := b.now().UTC()
	payment := &domain.Payment{
		ID:              "pmt-" + uuid.NewString(),
		Status:          domain.PaymentStatusPending,
		Amount:          req.Amount,
		Currency:        req.Currency,
		DebtorAccountID: debtor.ID,
		Creditor:        req.Creditor,
		Reference:       req.Reference,
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Amount.GreaterThan(authorizationThreshold) {
		payment.Status = domain.PaymentStatusAwaitingAuthorization
		payment.StatusReason = "amount above " + authorizationThreshold.String() + " requires OTP authorization"
	}

	b.payments[payment.ID] = payment
	b.paymentOrder = append(b.paymentOrder, payment.ID)
	if idempotencyKey != "" {
		b.idempotency[idempotencyKey] = payment.ID
	}

	logger.Info("sandbox payment created", logger.Fields{
		"paymentId": payment.ID,
		"status":    payment.Status,
		"amount":    payment.Amount.String(),
	})
	return *payment, true, nil
}

func (b *Bank) AuthorizePayment(_ context.Context, paymentID string, otp string) (domain.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	payment, ok := b.payments[paymentID]
	if !ok {
		return domain.Payment{}, ErrPaymentNotFound
	}
	if payment.Status != domain.PaymentStatusAwaitingAuthorization {
		return domain.Payment{}, fmt.Errorf("%w: payment is %s", domain.ErrInvalidStatusTransition, payment.Status)
	}
	if !secureEqual(strings.TrimSpace(otp), AuthorizationOTP) {
		return domain.Payment{}, ErrInvalidOTP
	}

	b.transitionLocked(payment, domain.PaymentStatusPending, "")
	return *payment, nil
}

// GetPayment returns the payment and then moves it one step along
// PENDING, PROCESSING, COMPLETED. Amounts ending in .99 are rejected at the
// last step and payments exceeding the balance fail there.
func (b *Bank) GetPayment(_ context.Context, paymentID string) (domain.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	payment, ok := b.payments[paymentID]
	if !ok {
		return domain.Payment{}, ErrPaymentNotFound
	}

	switch payment.Status {
	case domain.PaymentStatusPending:
		b.transitionLocked(payment, domain.PaymentStatusProcessing, "")
	case domain.PaymentStatusProcessing:
		b.settleLocked(payment)
	}
	return *payment, nil
}

func (b *Bank) CancelPayment(_ context.Context, paymentID string) (domain.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	payment, ok := b.payments[paymentID]
	if !ok {
		return domain.Payment{}, ErrPaymentNotFound
	}

	switch payment.Status {
	case domain.PaymentStatusPending, domain.PaymentStatusAwaitingAuthorization:
		b.transitionLocked(payment, domain.PaymentStatusCancelled, "cancelled by client")
		return *payment, nil
	default:
		return domain.Payment{}, fmt.Errorf("%w: payment is %s", domain.ErrInvalidStatusTransition, payment.Status)
	}
}

func (b *Bank) ListPayments(_ context.Context) ([]domain.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Payment, 0, len(b.paymentOrder))
	for _, id := range b.paymentOrder {
		out = append(out, *b.payments[id])
	}
	return out, nil
}

func (b *Bank) settleLocked(payment *domain.Payment) {
	if fractionalPart(payment.Amount).Equal(rejectedCents) {
		b.transitionLocked(payment, domain.PaymentStatusRejected, "rejected by beneficiary bank")
		return
	}

	balance := b.balances[payment.DebtorAccountID]
	if balance.LessThan(payment.Amount) {
		b.transitionLocked(payment, domain.PaymentStatusFailed, domain.ErrInsufficientBalance.Error())
		return
	}

	b.balances[payment.DebtorAccountID] = balance.Sub(payment.Amount)
	now := b.now().UTC()
	b.transactions[payment.DebtorAccountID] = append(b.transactions[payment.DebtorAccountID], domain.Transaction{
		ID:                   "txn-" + uuid.NewString(),
		AccountID:            payment.DebtorAccountID,
		Amount:               payment.Amount,
		Currency:             payment.Currency,
		CreditDebitIndicator: domain.Debit,
		Status:               "BOOKED",
		Description:          strings.TrimSpace("Payment to " + payment.Creditor.Name + " " + payment.Reference),
		BookingDate:          now,
		ValueDate:            &now,
	})
	b.transitionLocked(payment, domain.PaymentStatusCompleted, "")
}

func (b *Bank) transitionLocked(payment *domain.Payment, status domain.PaymentStatus, reason string) {
	from := payment.Status
	payment.Status = status
	payment.StatusReason = reason
	payment.UpdatedAt = b.now().UTC()

	logger.Info("sandbox payment status changed", logger.Fields{
		"paymentId": payment.ID,
		"from":      from,
		"to":        status,
	})
}

func (b *Bank) accountLocked(id string) (domain.Account, bool) {
	id = strings.TrimSpace(id)
	for _, a := range b.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Account{}, false
}

// availableLocked is the booked balance less payments still in flight.
func (b *Bank) availableLocked(accountID string) decimal.Decimal {
	available := b.balances[accountID]
	for _, p := range b.payments {
		if p.DebtorAccountID == accountID && p.Status == domain.PaymentStatusProcessing {
			available = available.Sub(p.Amount)
		}
	}
	return available
}

func newBalance(account domain.Account, kind string, amount decimal.Decimal, at time.Time) domain.Balance {
	indicator := domain.Credit
	if amount.IsNegative() {
		indicator = domain.Debit
	}
	return domain.Balance{
		AccountID:            account.ID,
		Type:                 kind,
		Amount:               amount.Abs(),
		Currency:             account.Currency,
		CreditDebitIndicator: indicator,
		UpdatedAt:            at,
	}
}

func fractionalPart(d decimal.Decimal) decimal.Decimal {
	return d.Sub(d.Truncate(0))
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func closeMatch(given, actual string) bool {
	if given == "" || actual == "" {
		return false
	}
	if strings.Contains(actual, given) || strings.Contains(given, actual) {
		return true
	}

	g, a := strings.Fields(given), strings.Fields(actual)
	return g[len(g)-1] == a[len(a)-1]
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
