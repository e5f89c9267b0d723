package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	BoardingHouseID string
	Name            string
	Code            string
	OwnerRef        string
	OpeningBalance  decimal.Decimal
	Currency        string
	AllowOverdraft  bool
}

// CreateAccount creates a new petty-cash account. The current balance starts
// at the opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if input.OpeningBalance.IsNegative() {
		return nil, &domain.ValidationError{Field: "opening_balance", Reason: "must not be negative"}
	}
	if !domain.HasAmountScale(input.OpeningBalance) {
		return nil, &domain.ValidationError{Field: "opening_balance", Reason: "at most 2 decimal places"}
	}

	if input.BoardingHouseID == "" {
		input.BoardingHouseID = domain.BoardingHouseFromContext(ctx)
	}

	id := uc.idGen.Generate()
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		code = generatedCode(id)
	}
	if err := domain.ValidateAccountCode(code); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:              id,
		BoardingHouseID: input.BoardingHouseID,
		Name:            strings.TrimSpace(input.Name),
		Code:            code,
		OwnerRef:        input.OwnerRef,
		Currency:        currency,
		OpeningBalance:  input.OpeningBalance,
		CurrentBalance:  input.OpeningBalance,
		AllowOverdraft:  input.AllowOverdraft,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen, domain.AggregateTypeAccount, account.ID, domain.EventTypeAccountCreated, map[string]any{
		"account_id":      account.ID,
		"boarding_house":  account.BoardingHouseID,
		"code":            account.Code,
		"opening_balance": account.OpeningBalance.String(),
		"currency":        account.Currency,
	}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := auditTx(txCtx, tx, uc.auditRepo, uc.idGen, domain.AuditActionAccountCreate, domain.AggregateTypeAccount, account.ID, nil, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountBalance.WithLabelValues(account.ID, account.Currency).Set(account.CurrentBalance.InexactFloat64())
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	BoardingHouseID string
	Limit           int
	Offset          int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	if input.BoardingHouseID == "" {
		input.BoardingHouseID = domain.BoardingHouseFromContext(ctx)
	}
	return uc.accountRepo.List(ctx, input.BoardingHouseID, input.Limit, input.Offset)
}

func generatedCode(id string) string {
	suffix := strings.ToUpper(id)
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return "PC-" + suffix
}
