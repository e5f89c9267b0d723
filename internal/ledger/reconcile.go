package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
)

// Reconciliation compares the stored balance of an account with the balance
// recomputed from its entries.
type Reconciliation struct {
	AccountID       string
	AccountName     string
	OpeningBalance  decimal.Decimal
	StoredBalance   decimal.Decimal
	ComputedBalance decimal.Decimal
	Difference      decimal.Decimal
	EntryCount      int
	Balanced        bool
}

// Reconcile recomputes opening + Σ deltas and compares it with CurrentBalance.
func Reconcile(account *domain.Account, entries []domain.LedgerEntry) (Reconciliation, error) {
	computed, err := FinalBalance(account.OpeningBalance, entries)
	if err != nil {
		return Reconciliation{}, err
	}

	diff := account.CurrentBalance.Sub(computed)
	return Reconciliation{
		AccountID:       account.ID,
		AccountName:     account.Name,
		OpeningBalance:  account.OpeningBalance,
		StoredBalance:   account.CurrentBalance,
		ComputedBalance: computed,
		Difference:      diff,
		EntryCount:      len(entries),
		Balanced:        diff.IsZero(),
	}, nil
}
