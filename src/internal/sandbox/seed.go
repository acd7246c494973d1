package sandbox

import (
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/shopspring/decimal"
)

type seedTransaction struct {
	id          string
	daysAgo     int
	amount      string
	indicator   domain.CreditDebitIndicator
	description string
}

func (b *Bank) seed() {
	b.accounts = []domain.Account{
		{ID: "acc-1001", AccountNumber: "1001000001", BankCode: BankCode, Type: "CURRENT", Currency: "AED", Status: domain.AccountStatusActive, Nickname: "Everyday", HolderName: "Sandbox User"},
		{ID: "acc-1002", AccountNumber: "1001000002", BankCode: BankCode, Type: "SAVINGS", Currency: "AED", Status: domain.AccountStatusActive, Nickname: "Rainy day", HolderName: "Sandbox User"},
		{ID: "acc-1003", AccountNumber: "1001000003", BankCode: BankCode, Type: "CURRENT", Currency: "USD", Status: domain.AccountStatusActive, Nickname: "Travel", HolderName: "Sandbox User"},
	}

	b.balances["acc-1001"] = decimal.RequireFromString("25000.00")
	b.balances["acc-1002"] = decimal.RequireFromString("120500.50")
	b.balances["acc-1003"] = decimal.RequireFromString("3200.00")

	today := b.now().UTC().Truncate(24 * time.Hour)
	history := map[string][]seedTransaction{
		"acc-1001": {
			{id: "txn-1001-1", daysAgo: 1, amount: "45.50", indicator: domain.Debit, description: "Coffee Lab"},
			{id: "txn-1001-2", daysAgo: 3, amount: "18000.00", indicator: domain.Credit, description: "Salary"},
			{id: "txn-1001-3", daysAgo: 7, amount: "320.75", indicator: domain.Debit, description: "DEWA utilities"},
			{id: "txn-1001-4", daysAgo: 12, amount: "1250.00", indicator: domain.Debit, description: "Transfer to savings"},
			{id: "txn-1001-5", daysAgo: 30, amount: "89.99", indicator: domain.Debit, description: "Streaming subscription"},
		},
		"acc-1002": {
			{id: "txn-1002-1", daysAgo: 12, amount: "1250.00", indicator: domain.Credit, description: "Transfer from current"},
			{id: "txn-1002-2", daysAgo: 31, amount: "410.22", indicator: domain.Credit, description: "Profit share"},
		},
		"acc-1003": {
			{id: "txn-1003-1", daysAgo: 2, amount: "64.00", indicator: domain.Debit, description: "Airport taxi"},
			{id: "txn-1003-2", daysAgo: 20, amount: "1500.00", indicator: domain.Credit, description: "FX top-up"},
		},
	}

	for _, account := range b.accounts {
		for _, s := range history[account.ID] {
			booked := today.AddDate(0, 0, -s.daysAgo)
			value := booked
			b.transactions[account.ID] = append(b.transactions[account.ID], domain.Transaction{
				ID:                   s.id,
				AccountID:            account.ID,
				Amount:               decimal.RequireFromString(s.amount),
				Currency:             account.Currency,
				CreditDebitIndicator: s.indicator,
				Status:               "BOOKED",
				Description:          s.description,
				BookingDate:          booked,
				ValueDate:            &value,
			})
		}
	}
}
