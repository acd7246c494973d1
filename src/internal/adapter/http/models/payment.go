package models

import (
	"errors"
	"strings"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/shopspring/decimal"
)

type InitiatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	Currency        string          `json:"currency" yaml:"currency"`
	DebtorAccountID string          `json:"debtorAccountId" yaml:"debtorAccountId"`
	Creditor        domain.Creditor `json:"creditor" yaml:"creditor"`
	Reference       string          `json:"reference,omitempty" yaml:"reference,omitempty"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
}

func (r InitiatePaymentRequest) Validate() error {
	var errs []string

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if r.Amount.Exponent() < -2 && !r.Amount.Equal(r.Amount.Round(2)) {
		errs = append(errs, "amount must have at most 2 decimal places")
	}
	if !isCurrencyCode(r.Currency) {
		errs = append(errs, "currency must be a 3-letter code")
	}
	if strings.TrimSpace(r.DebtorAccountID) == "" {
		errs = append(errs, "debtorAccountId is required")
	}
	if strings.TrimSpace(r.Creditor.Name) == "" {
		errs = append(errs, "creditor.name is required")
	}
	if !digitsOnly(strings.TrimSpace(r.Creditor.AccountNumber)) {
		errs = append(errs, "creditor.accountNumber must contain digits only")
	}
	if !digitsOnly(strings.TrimSpace(r.Creditor.BankCode)) {
		errs = append(errs, "creditor.bankCode must contain digits only")
	}
	if len(r.Reference) > 35 {
		errs = append(errs, "reference must be at most 35 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Normalize returns a copy with trimmed fields and an upper-case currency.
func (r InitiatePaymentRequest) Normalize() InitiatePaymentRequest {
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.DebtorAccountID = strings.TrimSpace(r.DebtorAccountID)
	r.Creditor.Name = strings.TrimSpace(r.Creditor.Name)
	r.Creditor.AccountNumber = strings.TrimSpace(r.Creditor.AccountNumber)
	r.Creditor.BankCode = strings.TrimSpace(r.Creditor.BankCode)
	r.Reference = strings.TrimSpace(r.Reference)
	r.Description = strings.TrimSpace(r.Description)
	return r
}

type AuthorizePaymentRequest struct {
	OTP string `json:"otp"`
}

func (r AuthorizePaymentRequest) Validate() error {
	otp := strings.TrimSpace(r.OTP)
	if len(otp) < 4 || len(otp) > 8 || !digitsOnly(otp) {
		return errors.New("otp must be 4 to 8 digits")
	}
	return nil
}

type PayeeVerificationRequest struct {
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
}

func (r PayeeVerificationRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !digitsOnly(strings.TrimSpace(r.AccountNumber)) {
		errs = append(errs, "accountNumber must contain digits only")
	}
	if !digitsOnly(strings.TrimSpace(r.BankCode)) {
		errs = append(errs, "bankCode must contain digits only")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func PayeeVerificationFor(c domain.Creditor) PayeeVerificationRequest {
	return PayeeVerificationRequest{
		Name:          c.Name,
		AccountNumber: c.AccountNumber,
		BankCode:      c.BankCode,
	}
}

func isCurrencyCode(value string) bool {
	v := strings.TrimSpace(value)
	if len(v) != 3 {
		return false
	}
	for _, ch := range v {
		if (ch < 'A' || ch > 'Z') && (ch < 'a' || ch > 'z') {
			return false
		}
	}
	return true
}

func digitsOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
