package memory

import (
	"context"
	"strings"

	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
)

// PayeeDirectoryRepository is a fixed list of account holders known to the
// sandbox payee verification endpoint.
type PayeeDirectoryRepository struct {
	payees []domain.Creditor
}

func NewPayeeDirectoryRepository() *PayeeDirectoryRepository {
	return &PayeeDirectoryRepository{payees: []domain.Creditor{
		{Name: "Jane Doe", AccountNumber: "1234567890", BankCode: "033"},
		{Name: "Ahmed Al Mansouri", AccountNumber: "2000000001", BankCode: "044"},
		{Name: "Priya Nair", AccountNumber: "2000000002", BankCode: "057"},
		{Name: "Chen Wei", AccountNumber: "2000000003", BankCode: "058"},
		{Name: "Fatima Zahra", AccountNumber: "2000000004", BankCode: "070"},
		{Name: "Sandbox Utilities LLC", AccountNumber: "3000000001", BankCode: "214"},
	}}
}

func (r *PayeeDirectoryRepository) Lookup(_ context.Context, accountNumber string, bankCode string) (domain.Creditor, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	bankCode = strings.TrimSpace(bankCode)

	for _, p := range r.payees {
		if p.AccountNumber == accountNumber && p.BankCode == bankCode {
			return p, nil
		}
	}
	return domain.Creditor{}, commons.ErrRecordNotFound
}
