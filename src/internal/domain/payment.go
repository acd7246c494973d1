package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending               PaymentStatus = "PENDING"
	PaymentStatusAwaitingAuthorization PaymentStatus = "AWAITING_AUTHORIZATION"
	PaymentStatusProcessing            PaymentStatus = "PROCESSING"
	PaymentStatusCompleted             PaymentStatus = "COMPLETED"
	PaymentStatusFailed                PaymentStatus = "FAILED"
	PaymentStatusRejected              PaymentStatus = "REJECTED"
	PaymentStatusCancelled             PaymentStatus = "CANCELLED"
)

// IsTerminal reports whether the server will not move the payment any further.
// Unknown statuses are treated as still in flight.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRejected, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

type Creditor struct {
	Name          string `json:"name" yaml:"name"`
	AccountNumber string `json:"accountNumber" yaml:"accountNumber"`
	BankCode      string `json:"bankCode" yaml:"bankCode"`
}

type Payment struct {
	ID              string          `json:"paymentId" yaml:"paymentId"`
	Status          PaymentStatus   `json:"status" yaml:"status"`
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	Currency        string          `json:"currency" yaml:"currency"`
	DebtorAccountID string          `json:"debtorAccountId" yaml:"debtorAccountId"`
	Creditor        Creditor        `json:"creditor" yaml:"creditor"`
	Reference       string          `json:"reference,omitempty" yaml:"reference,omitempty"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	StatusReason    string          `json:"statusReason,omitempty" yaml:"statusReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

type MatchResult string

const (
	MatchResultMatch      MatchResult = "MATCH"
	MatchResultCloseMatch MatchResult = "CLOSE_MATCH"
	MatchResultNoMatch    MatchResult = "NO_MATCH"
)

type PayeeVerification struct {
	Match         MatchResult `json:"match" yaml:"match"`
	Name          string      `json:"name,omitempty" yaml:"name,omitempty"`
	AccountNumber string      `json:"accountNumber" yaml:"accountNumber"`
	BankCode      string      `json:"bankCode" yaml:"bankCode"`
	Reason        string      `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// PaymentStep names a stage of the payment flow for the journal and events.
type PaymentStep string

const (
	PaymentStepVerified   PaymentStep = "PAYEE_VERIFIED"
	PaymentStepInitiated  PaymentStep = "INITIATED"
	PaymentStepAuthorized PaymentStep = "AUTHORIZED"
	PaymentStepPolled     PaymentStep = "POLLED"
	PaymentStepCancelled  PaymentStep = "CANCELLED"
)

// PaymentJournalEntry is one locally recorded step of a payment flow.
type PaymentJournalEntry struct {
	ID           int64           `json:"id" yaml:"id"`
	PaymentID    string          `json:"paymentId" yaml:"paymentId"`
	Step         PaymentStep     `json:"step" yaml:"step"`
	Status       PaymentStatus   `json:"status" yaml:"status"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	Currency     string          `json:"currency" yaml:"currency"`
	AuditPayload string          `json:"auditPayload,omitempty" yaml:"auditPayload,omitempty"`
	CreatedAt    time.Time       `json:"createdAt" yaml:"createdAt"`
}

// PaymentEvent is published after each payment flow step.
type PaymentEvent struct {
	PaymentID  string          `json:"paymentId"`
	Step       PaymentStep     `json:"step"`
	Status     PaymentStatus   `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	OccurredAt time.Time       `json:"occurredAt"`
}
