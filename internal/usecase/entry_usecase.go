package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
)

// EntryUseCase handles entry queries.
type EntryUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	AccountID string
	Filter    ledger.DateFilter
}

// ListEntries returns the account's entries inside the filter window in
// chronological order.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]domain.LedgerEntry, error) {
	if err := input.Filter.Validate(); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, account); err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	sorted := ledger.SortEntries(entries)
	if input.Filter.IsZero() {
		return sorted, nil
	}

	window := make([]domain.LedgerEntry, 0, len(sorted))
	for _, entry := range sorted {
		if input.Filter.Contains(entry.TransactionDate) {
			window = append(window, entry)
		}
	}
	return window, nil
}

// GetHistoricalBalance returns the balance at a specific point in time.
func (uc *EntryUseCase) GetHistoricalBalance(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := checkScope(ctx, account); err != nil {
		return decimal.Zero, err
	}

	net, err := uc.entryRepo.NetChangeUntil(ctx, accountID, at)
	if err != nil {
		return decimal.Zero, err
	}
	return account.OpeningBalance.Add(net), nil
}
