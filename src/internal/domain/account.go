package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

type CreditDebitIndicator string

const (
	Credit CreditDebitIndicator = "CREDIT"
	Debit  CreditDebitIndicator = "DEBIT"
)

type Account struct {
	ID            string        `json:"accountId" yaml:"accountId"`
	AccountNumber string        `json:"accountNumber" yaml:"accountNumber"`
	BankCode      string        `json:"bankCode,omitempty" yaml:"bankCode,omitempty"`
	Type          string        `json:"accountType" yaml:"accountType"`
	Currency      string        `json:"currency" yaml:"currency"`
	Status        AccountStatus `json:"status" yaml:"status"`
	Nickname      string        `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	HolderName    string        `json:"holderName,omitempty" yaml:"holderName,omitempty"`
}

type Balance struct {
	AccountID            string               `json:"accountId" yaml:"accountId"`
	Type                 string               `json:"type" yaml:"type"`
	Amount               decimal.Decimal      `json:"amount" yaml:"amount"`
	Currency             string               `json:"currency" yaml:"currency"`
	CreditDebitIndicator CreditDebitIndicator `json:"creditDebitIndicator" yaml:"creditDebitIndicator"`
	UpdatedAt            time.Time            `json:"updatedAt" yaml:"updatedAt"`
}

type Transaction struct {
	ID                   string               `json:"transactionId" yaml:"transactionId"`
	AccountID            string               `json:"accountId" yaml:"accountId"`
	Amount               decimal.Decimal      `json:"amount" yaml:"amount"`
	Currency             string               `json:"currency" yaml:"currency"`
	CreditDebitIndicator CreditDebitIndicator `json:"creditDebitIndicator" yaml:"creditDebitIndicator"`
	Status               string               `json:"status" yaml:"status"`
	Description          string               `json:"description,omitempty" yaml:"description,omitempty"`
	BookingDate          time.Time            `json:"bookingDate" yaml:"bookingDate"`
	ValueDate            *time.Time           `json:"valueDate,omitempty" yaml:"valueDate,omitempty"`
}

// AccountSnapshot is one account with its balances and transactions. Err is
// set when either detail request failed; the other fields are then partial.
type AccountSnapshot struct {
	Account      Account       `json:"account" yaml:"account"`
	Balances     []Balance     `json:"balances" yaml:"balances"`
	Transactions []Transaction `json:"transactions" yaml:"transactions"`
	Err          string        `json:"error,omitempty" yaml:"error,omitempty"`
}

type Snapshot struct {
	GeneratedAt time.Time         `json:"generatedAt" yaml:"generatedAt"`
	Accounts    []AccountSnapshot `json:"accounts" yaml:"accounts"`
}

// Failed counts the accounts whose details could not be fetched.
func (s Snapshot) Failed() int {
	n := 0
	for _, a := range s.Accounts {
		if a.Err != "" {
			n++
		}
	}
	return n
}
