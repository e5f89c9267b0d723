package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a petty-cash account held by a branch.
type Account struct {
	ID              string
	BoardingHouseID string
	Name            string
	Code            string
	OwnerRef        string
	Currency        string
	OpeningBalance  decimal.Decimal
	CurrentBalance  decimal.Decimal
	AllowOverdraft  bool
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanSpend checks if the account can cover an expense of amount.
func (a *Account) CanSpend(amount decimal.Decimal) error {
	if a.AllowOverdraft {
		return nil
	}
	if a.CurrentBalance.LessThan(amount) {
		return &InsufficientFundsError{
			CurrentBalance: a.CurrentBalance,
			RequiredAmount: amount,
			AccountName:    a.Name,
		}
	}
	return nil
}

// ApplyIssuance returns new balance after cash is added.
func (a *Account) ApplyIssuance(amount decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Add(amount)
}

// ApplyExpense returns new balance after cash is spent.
func (a *Account) ApplyExpense(amount decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Sub(amount)
}
