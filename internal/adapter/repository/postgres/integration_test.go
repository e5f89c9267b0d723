package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/adapter/repository/postgres"
	"github.com/iho/pettycash/internal/domain"
	infrapg "github.com/iho/pettycash/internal/infrastructure/postgres"
	"github.com/iho/pettycash/internal/usecase"
)

// Runs against a live database when DATABASE_URL is set.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infrapg.RunMigrations(dbURL, "../../../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 20, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `
		TRUNCATE TABLE audit_logs, outbox_events, approval_requests, ledger_entries, petty_cash_accounts CASCADE
	`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return pool
}

type integrationDeps struct {
	accounts  *usecase.AccountUseCase
	cash      *usecase.CashUseCase
	approvals *usecase.ApprovalUseCase
	recon     *usecase.ReconciliationUseCase
}

func newIntegrationDeps(pool *pgxpool.Pool) integrationDeps {
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	approvalRepo := postgres.NewApprovalRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	return integrationDeps{
		accounts:  usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen, nil),
		cash:      usecase.NewCashUseCase(txManager, accountRepo, entryRepo, outboxRepo, auditRepo, idGen, retrier, nil),
		approvals: usecase.NewApprovalUseCase(txManager, approvalRepo, accountRepo, entryRepo, outboxRepo, auditRepo, idGen, retrier, nil),
		recon:     usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo, nil),
	}
}

func TestIntegration_ConcurrentExpensesNeverOverdraw(t *testing.T) {
	pool := newIntegrationPool(t)
	deps := newIntegrationDeps(pool)
	ctx := context.Background()

	account, err := deps.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Name:           "Kitchen",
		Currency:       "KES",
		OpeningBalance: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	const attempts = 20
	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
		shortCount   atomic.Int32
	)

	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()

			_, err := deps.cash.RecordExpense(ctx, usecase.RecordExpenseInput{
				AccountID:   account.ID,
				Amount:      decimal.NewFromInt(10),
				Description: "Gas",
			})
			var funds *domain.InsufficientFundsError
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.As(err, &funds):
				shortCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 10 || shortCount.Load() != 10 {
		t.Fatalf("expected 10 expenses and 10 shortfalls, got %d and %d", successCount.Load(), shortCount.Load())
	}

	result, err := deps.recon.ReconcileAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("ReconcileAccount: %v", err)
	}
	if !result.StoredBalance.IsZero() || !result.Balanced || result.EntryCount != 10 {
		t.Fatalf("unexpected reconciliation %+v", result.Reconciliation)
	}
	if err := deps.recon.CheckLedgerConsistency(ctx); err != nil {
		t.Fatalf("CheckLedgerConsistency: %v", err)
	}
}

func TestIntegration_ExpenditureLifecycle(t *testing.T) {
	pool := newIntegrationPool(t)
	deps := newIntegrationDeps(pool)
	ctx := domain.ContextWithUser(context.Background(), &domain.User{ID: "admin-1", Role: domain.RoleAdmin})

	account, err := deps.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Name:           "Petty Cash",
		Currency:       "KES",
		OpeningBalance: decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	req, err := deps.approvals.Submit(ctx, usecase.SubmitRequestInput{
		Kind:             domain.RequestKindExpenditure,
		Title:            "Gas refill",
		TotalAmount:      decimal.NewFromInt(75),
		FundingAccountID: account.ID,
		LineItems:        []domain.LineItem{{Name: "gas", Amount: decimal.NewFromInt(75)}},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := deps.approvals.Approve(ctx, req.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	_, err = deps.approvals.Confirm(ctx, req.ID, usecase.ConfirmInput{ReceiptNumber: "R-1"})
	var funds *domain.InsufficientFundsError
	if !errors.As(err, &funds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if funds.Shortfall().String() != "35" {
		t.Fatalf("expected shortfall 35, got %s", funds.Shortfall())
	}

	if _, err := deps.cash.IssueCash(ctx, usecase.IssueCashInput{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(50),
		Purpose:   "Top up",
	}); err != nil {
		t.Fatalf("IssueCash: %v", err)
	}

	result, err := deps.approvals.Confirm(ctx, req.ID, usecase.ConfirmInput{ReceiptNumber: "R-1"})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !result.Account.CurrentBalance.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected balance 15, got %s", result.Account.CurrentBalance)
	}
	if result.Request.ExpenseEntryID != result.Entry.ID {
		t.Fatalf("request not linked to entry: %+v", result.Request)
	}

	if _, err := deps.approvals.Confirm(ctx, req.ID, usecase.ConfirmInput{}); !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}
}
