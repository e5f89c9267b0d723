package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
)

// DateFilter narrows a report to an inclusive range of calendar days (UTC).
// A zero bound is open.
type DateFilter struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the filter has no bounds.
func (f DateFilter) IsZero() bool {
	return f.Start.IsZero() && f.End.IsZero()
}

// Validate rejects a filter whose start is after its end.
func (f DateFilter) Validate() error {
	if !f.Start.IsZero() && !f.End.IsZero() && day(f.Start).After(day(f.End)) {
		return &domain.ValidationError{Field: "start_date", Reason: "must not be after end_date"}
	}
	return nil
}

// Before reports whether t falls on a day before the window.
func (f DateFilter) Before(t time.Time) bool {
	return !f.Start.IsZero() && day(t).Before(day(f.Start))
}

// After reports whether t falls on a day after the window.
func (f DateFilter) After(t time.Time) bool {
	return !f.End.IsZero() && day(t).After(day(f.End))
}

// Contains reports whether t falls inside the window.
func (f DateFilter) Contains(t time.Time) bool {
	return !f.Before(t) && !f.After(t)
}

// Key renders the filter for cache keys and file names.
func (f DateFilter) Key() string {
	return formatBound(f.Start) + "_" + formatBound(f.End)
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return day(t).Format("2006-01-02")
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Report is a display-ready ledger for one account.
// GeneratedAt is stamped by the caller.
type Report struct {
	Account        domain.Account
	Filter         DateFilter
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Rows           []domain.RunningBalanceRow
	Summary        domain.Summary
	GeneratedAt    time.Time
}

// BuildReport sorts entries, folds everything before the window into the
// opening balance and projects the window. Entries after the window are
// dropped.
func BuildReport(account *domain.Account, entries []domain.LedgerEntry, filter DateFilter) (*Report, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := validateAll(entries); err != nil {
		return nil, err
	}

	sorted := SortEntries(entries)

	opening := account.OpeningBalance
	window := make([]domain.LedgerEntry, 0, len(sorted))
	for _, entry := range sorted {
		switch {
		case filter.Before(entry.TransactionDate):
			opening = opening.Add(entry.Delta())
		case filter.After(entry.TransactionDate):
		default:
			window = append(window, entry)
		}
	}

	rows, err := Project(opening, window)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(window)
	if err != nil {
		return nil, err
	}

	return &Report{
		Account:        *account,
		Filter:         filter,
		OpeningBalance: opening,
		ClosingBalance: opening.Add(summary.NetChange),
		Rows:           rows,
		Summary:        summary,
	}, nil
}
