package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/infrastructure/metrics"
)

// CashUseCase records issuances and expenses against petty-cash accounts.
type CashUseCase struct {
	txManager TransactionManager
	poster    *entryPoster
	auditRepo AuditRepository
	idGen     IDGenerator
	retrier   Retrier
	metrics   *metrics.Metrics
}

// NewCashUseCase creates a new CashUseCase.
func NewCashUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *CashUseCase {
	return &CashUseCase{
		txManager: txManager,
		poster: &entryPoster{
			accountRepo: accountRepo,
			entryRepo:   entryRepo,
			outboxRepo:  outboxRepo,
			auditRepo:   auditRepo,
			idGen:       idGen,
		},
		auditRepo: auditRepo,
		idGen:     idGen,
		retrier:   retrier,
		metrics:   metrics,
	}
}

// IssueCashInput represents input for adding cash to an account.
type IssueCashInput struct {
	AccountID       string
	Amount          decimal.Decimal
	Purpose         string
	ReferenceNumber string
	Notes           string
	TransactionDate time.Time
}

// RecordExpenseInput represents input for spending cash from an account.
type RecordExpenseInput struct {
	AccountID       string
	Amount          decimal.Decimal
	Description     string
	Category        string
	Vendor          string
	ReceiptNumber   string
	Notes           string
	TransactionDate time.Time
}

// CashResult is the authoritative outcome of a cash movement.
type CashResult struct {
	Account *domain.Account
	Entry   *domain.LedgerEntry
}

// IssueCash adds cash to an account.
func (uc *CashUseCase) IssueCash(ctx context.Context, input IssueCashInput) (*CashResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Purpose); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		AccountID:       input.AccountID,
		Type:            domain.EntryTypeIssuance,
		Amount:          input.Amount,
		TransactionDate: input.TransactionDate,
		Description:     strings.TrimSpace(input.Purpose),
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
		Status:          domain.EntryStatusIssued,
	}

	return uc.post(ctx, domain.AuditActionCashIssue, entry)
}

// RecordExpense spends cash from an account. It fails with
// *domain.InsufficientFundsError when the account cannot cover the amount.
func (uc *CashUseCase) RecordExpense(ctx context.Context, input RecordExpenseInput) (*CashResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, &domain.ValidationError{Field: "description", Reason: "is required"}
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		AccountID:       input.AccountID,
		Type:            domain.EntryTypeExpense,
		Amount:          input.Amount,
		TransactionDate: input.TransactionDate,
		Description:     strings.TrimSpace(input.Description),
		ReferenceNumber: input.ReceiptNumber,
		ReceiptNumber:   input.ReceiptNumber,
		Notes:           input.Notes,
		Status:          domain.EntryStatusApproved,
		Category:        input.Category,
		Vendor:          input.Vendor,
	}

	return uc.post(ctx, domain.AuditActionExpenseRecord, entry)
}

func (uc *CashUseCase) post(ctx context.Context, action domain.AuditAction, draft *domain.LedgerEntry) (*CashResult, error) {
	start := time.Now()

	var result *CashResult
	err := withRetry(ctx, uc.retrier, func() error {
		entry := *draft
		res, err := uc.postOnce(ctx, action, &entry)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		uc.recordFailure(ctx, action, draft, err)
		return nil, err
	}

	if uc.metrics != nil {
		if draft.Type == domain.EntryTypeIssuance {
			uc.metrics.CashIssued.Inc()
		} else {
			uc.metrics.ExpensesRecorded.Inc()
		}
		uc.metrics.CashAmount.WithLabelValues(string(draft.Type)).Observe(draft.Amount.InexactFloat64())
		uc.metrics.OperationDuration.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())
		uc.metrics.AccountBalance.WithLabelValues(result.Account.ID, result.Account.Currency).Set(result.Account.CurrentBalance.InexactFloat64())
	}

	return result, nil
}

func (uc *CashUseCase) postOnce(ctx context.Context, action domain.AuditAction, entry *domain.LedgerEntry) (*CashResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock account
	account, err := uc.poster.accountRepo.GetByIDForUpdate(txCtx, tx, entry.AccountID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, account); err != nil {
		return nil, err
	}

	if err := uc.poster.post(txCtx, tx, action, account, entry, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &CashResult{Account: account, Entry: entry}, nil
}

func (uc *CashUseCase) recordFailure(ctx context.Context, action domain.AuditAction, entry *domain.LedgerEntry, err error) {
	if uc.metrics != nil {
		uc.metrics.OperationErrors.WithLabelValues(string(action), errorType(err)).Inc()
		if errors.Is(err, domain.ErrInsufficientFunds) {
			uc.metrics.InsufficientFunds.Inc()
		}
	}
	if errors.Is(err, domain.ErrInsufficientFunds) {
		auditFailure(ctx, uc.auditRepo, uc.idGen, uc.metrics, action, domain.AggregateTypeAccount, entry.AccountID, err)
	}
}

// entryPoster applies one ledger entry to a locked account inside a transaction.
type entryPoster struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// post validates entry against account, stores it, moves the balance and
// queues the event and audit record. account is updated in place.
func (p *entryPoster) post(ctx context.Context, tx Transaction, action domain.AuditAction, account *domain.Account, entry *domain.LedgerEntry, now time.Time) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	var newBalance decimal.Decimal
	if entry.Type == domain.EntryTypeExpense {
		if err := account.CanSpend(entry.Amount); err != nil {
			return err
		}
		newBalance = account.ApplyExpense(entry.Amount)
	} else {
		newBalance = account.ApplyIssuance(entry.Amount)
	}

	before := *account

	entry.ID = p.idGen.Generate()
	entry.AccountID = account.ID
	entry.CreatedAt = now
	if entry.TransactionDate.IsZero() {
		entry.TransactionDate = now
	}
	if err := p.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	if err := p.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}
	account.CurrentBalance = newBalance
	account.Version++
	account.UpdatedAt = now

	eventType := domain.EventTypeCashIssued
	if entry.Type == domain.EntryTypeExpense {
		eventType = domain.EventTypeExpenseRecorded
	}
	event := newOutboxEvent(p.idGen, domain.AggregateTypeAccount, account.ID, eventType, domain.EntryEventPayload(account, entry), now)
	if err := p.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return auditTx(ctx, tx, p.auditRepo, p.idGen, action, domain.AggregateTypeAccount, account.ID, before, account)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrRequestNotFound):
		return "request_not_found"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidAmount):
		return "validation"
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrAlreadyConfirmed):
		return "invalid_state"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
