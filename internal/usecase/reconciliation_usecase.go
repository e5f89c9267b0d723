package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/infrastructure/metrics"
	"github.com/iho/pettycash/internal/ledger"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
		metrics:     metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	ledger.Reconciliation
	CheckedAt time.Time
}

// ReconcileAccount recomputes an account's balance from its entries and
// compares it with the stored balance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, account); err != nil {
		return nil, err
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	entries, err := uc.entryRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	rec, err := ledger.Reconcile(account, entries)
	if err != nil {
		return nil, fmt.Errorf("account %s has invalid entries: %w", account.ID, err)
	}

	return &ReconciliationResult{
		Reconciliation: rec,
		CheckedAt:      time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles every account visible in ctx.
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	scope := domain.BoardingHouseFromContext(ctx)

	var results []*ReconciliationResult
	for offset := 0; ; offset += reconcileBatchSize {
		accounts, err := uc.accountRepo.List(ctx, scope, reconcileBatchSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < reconcileBatchSize {
			break
		}
	}

	return results, nil
}

// CheckLedgerConsistency verifies that stored balances add up to the opening
// balances plus every entry, over the accounts visible in ctx.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	stored, computed, err := uc.ledgerRepo.CheckConsistency(ctx, domain.BoardingHouseFromContext(ctx))
	if err != nil {
		return err
	}

	if !stored.Equal(computed) {
		return fmt.Errorf(
			"ledger inconsistency detected: stored=%s computed=%s difference=%s",
			stored.String(),
			computed.String(),
			stored.Sub(computed).String(),
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	TotalDifference    decimal.Decimal
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		TotalDifference:  decimal.Zero,
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.Balanced {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
			report.TotalDifference = report.TotalDifference.Add(result.Difference)
		}
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationDiscrepancies.Set(float64(len(report.Discrepancies)))
	}

	return report, nil
}
