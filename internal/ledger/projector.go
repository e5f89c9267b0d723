// Package ledger computes running balances, summaries and reports over
// petty-cash ledger entries. Everything here is pure: no I/O, no logging,
// no clocks.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
)

// SortEntries returns a copy of entries ordered by transaction date, then
// creation time, then input order.
func SortEntries(entries []domain.LedgerEntry) []domain.LedgerEntry {
	sorted := make([]domain.LedgerEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.Before(b.TransactionDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return sorted
}

// Project walks entries in the given order and returns the balance after each
// one. Entries must already be sorted. Any invalid entry fails the whole call.
func Project(opening decimal.Decimal, entries []domain.LedgerEntry) ([]domain.RunningBalanceRow, error) {
	if err := validateAll(entries); err != nil {
		return nil, err
	}

	rows := make([]domain.RunningBalanceRow, 0, len(entries))
	balance := opening
	for _, entry := range entries {
		balance = balance.Add(entry.Delta())
		rows = append(rows, domain.RunningBalanceRow{
			Entry:          entry,
			RunningBalance: balance,
		})
	}

	return rows, nil
}

// Summarize totals issuances and expenses. Order does not matter.
func Summarize(entries []domain.LedgerEntry) (domain.Summary, error) {
	if err := validateAll(entries); err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		TotalIssuances: decimal.Zero,
		TotalExpenses:  decimal.Zero,
		Count:          len(entries),
	}
	for _, entry := range entries {
		switch entry.Type {
		case domain.EntryTypeIssuance:
			summary.TotalIssuances = summary.TotalIssuances.Add(entry.Amount)
		case domain.EntryTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(entry.Amount)
		}
	}
	summary.NetChange = summary.TotalIssuances.Sub(summary.TotalExpenses)

	return summary, nil
}

// FinalBalance returns opening plus every delta.
func FinalBalance(opening decimal.Decimal, entries []domain.LedgerEntry) (decimal.Decimal, error) {
	summary, err := Summarize(entries)
	if err != nil {
		return decimal.Zero, err
	}
	return opening.Add(summary.NetChange), nil
}

func validateAll(entries []domain.LedgerEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
