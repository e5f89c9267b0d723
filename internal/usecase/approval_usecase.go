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

// ApprovalUseCase drives budget and expenditure requests through
// pending -> approved | rejected, and realizes approved expenditures.
type ApprovalUseCase struct {
	txManager    TransactionManager
	approvalRepo ApprovalRepository
	accountRepo  AccountRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	poster       *entryPoster
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
}

// NewApprovalUseCase creates a new ApprovalUseCase.
func NewApprovalUseCase(
	txManager TransactionManager,
	approvalRepo ApprovalRepository,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *ApprovalUseCase {
	return &ApprovalUseCase{
		txManager:    txManager,
		approvalRepo: approvalRepo,
		accountRepo:  accountRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		poster: &entryPoster{
			accountRepo: accountRepo,
			entryRepo:   entryRepo,
			outboxRepo:  outboxRepo,
			auditRepo:   auditRepo,
			idGen:       idGen,
		},
		idGen:   idGen,
		retrier: retrier,
		metrics: metrics,
	}
}

// SubmitRequestInput represents input for submitting a request.
type SubmitRequestInput struct {
	Kind             domain.RequestKind
	Title            string
	Period           string
	TotalAmount      decimal.Decimal
	FundingAccountID string
	LineItems        []domain.LineItem
}

// Submit creates a pending request.
func (uc *ApprovalUseCase) Submit(ctx context.Context, input SubmitRequestInput) (*domain.ApprovalRequest, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "is required"}
	}

	now := time.Now().UTC()
	req := &domain.ApprovalRequest{
		ID:               uc.idGen.Generate(),
		BoardingHouseID:  domain.BoardingHouseFromContext(ctx),
		Kind:             input.Kind,
		Title:            strings.TrimSpace(input.Title),
		Period:           input.Period,
		TotalAmount:      input.TotalAmount,
		Status:           domain.RequestStatusPending,
		SubmittedBy:      domain.ActorID(ctx),
		SubmittedAt:      now,
		FundingAccountID: input.FundingAccountID,
		LineItems:        input.LineItems,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.FundingAccountID != "" {
		account, err := uc.accountRepo.GetByID(ctx, req.FundingAccountID)
		if err != nil {
			return nil, err
		}
		if err := checkScope(ctx, account); err != nil {
			return nil, err
		}
		if req.BoardingHouseID == "" {
			req.BoardingHouseID = account.BoardingHouseID
		}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.approvalRepo.Create(txCtx, tx, req); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen, domain.AggregateTypeRequest, req.ID, domain.EventTypeRequestSubmitted, domain.RequestEventPayload(req), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := auditTx(txCtx, tx, uc.auditRepo, uc.idGen, domain.AuditActionRequestSubmit, domain.AggregateTypeRequest, req.ID, nil, req); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsSubmitted.WithLabelValues(string(req.Kind)).Inc()
	}

	return req, nil
}

// Get retrieves a request by ID.
func (uc *ApprovalUseCase) Get(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	req, err := uc.approvalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRequestScope(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// List lists requests matching filter.
func (uc *ApprovalUseCase) List(ctx context.Context, filter ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	if filter.BoardingHouseID == "" {
		filter.BoardingHouseID = domain.BoardingHouseFromContext(ctx)
	}
	filter.Limit, filter.Offset, _ = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.approvalRepo.List(ctx, filter)
}

// Approve moves a pending request to approved.
func (uc *ApprovalUseCase) Approve(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return uc.transition(ctx, id, domain.AuditActionRequestApprove, domain.EventTypeRequestApproved, "approved",
		func(req *domain.ApprovalRequest, at time.Time) error {
			return req.Approve(domain.ActorID(ctx), at)
		})
}

// Reject moves a pending request to rejected. reason must not be blank.
func (uc *ApprovalUseCase) Reject(ctx context.Context, id, reason string) (*domain.ApprovalRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrRejectionReasonRequired
	}
	return uc.transition(ctx, id, domain.AuditActionRequestReject, domain.EventTypeRequestRejected, "rejected",
		func(req *domain.ApprovalRequest, at time.Time) error {
			return req.Reject(domain.ActorID(ctx), reason, at)
		})
}

func (uc *ApprovalUseCase) transition(
	ctx context.Context,
	id string,
	action domain.AuditAction,
	eventType string,
	decision string,
	apply func(req *domain.ApprovalRequest, at time.Time) error,
) (*domain.ApprovalRequest, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	req, err := uc.approvalRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRequestScope(ctx, req); err != nil {
		return nil, err
	}

	before := *req
	now := time.Now().UTC()
	if err := apply(req, now); err != nil {
		uc.countError(action, err)
		return nil, err
	}

	if err := uc.approvalRepo.Update(txCtx, tx, req); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen, domain.AggregateTypeRequest, req.ID, eventType, domain.RequestEventPayload(req), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := auditTx(txCtx, tx, uc.auditRepo, uc.idGen, action, domain.AggregateTypeRequest, req.ID, before, req); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestDecisions.WithLabelValues(string(req.Kind), decision).Inc()
	}

	return req, nil
}

// ConfirmInput carries the receipt details of a realized expenditure.
type ConfirmInput struct {
	ReceiptNumber   string
	Notes           string
	TransactionDate time.Time
}

// ConfirmResult is the outcome of realizing an expenditure.
type ConfirmResult struct {
	Request *domain.ApprovalRequest
	Account *domain.Account
	Entry   *domain.LedgerEntry
}

// Confirm turns an approved expenditure into an expense entry against its
// funding account. It fails with *domain.InsufficientFundsError when the
// account cannot cover the total.
func (uc *ApprovalUseCase) Confirm(ctx context.Context, id string, input ConfirmInput) (*ConfirmResult, error) {
	start := time.Now()

	var result *ConfirmResult
	err := withRetry(ctx, uc.retrier, func() error {
		res, err := uc.confirmOnce(ctx, id, input)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		uc.countError(domain.AuditActionRequestConfirm, err)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			if uc.metrics != nil {
				uc.metrics.InsufficientFunds.Inc()
			}
			auditFailure(ctx, uc.auditRepo, uc.idGen, uc.metrics, domain.AuditActionRequestConfirm, domain.AggregateTypeRequest, id, err)
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestDecisions.WithLabelValues(string(result.Request.Kind), "confirmed").Inc()
		uc.metrics.ExpensesRecorded.Inc()
		uc.metrics.CashAmount.WithLabelValues(string(domain.EntryTypeExpense)).Observe(result.Entry.Amount.InexactFloat64())
		uc.metrics.OperationDuration.WithLabelValues(string(domain.AuditActionRequestConfirm)).Observe(time.Since(start).Seconds())
		uc.metrics.AccountBalance.WithLabelValues(result.Account.ID, result.Account.Currency).Set(result.Account.CurrentBalance.InexactFloat64())
	}

	return result, nil
}

func (uc *ApprovalUseCase) confirmOnce(ctx context.Context, id string, input ConfirmInput) (*ConfirmResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	req, err := uc.approvalRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRequestScope(ctx, req); err != nil {
		return nil, err
	}
	if err := req.CanConfirm(); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, req.FundingAccountID)
	if err != nil {
		return nil, err
	}

	reference := input.ReceiptNumber
	if reference == "" {
		reference = req.ID
	}
	entry := &domain.LedgerEntry{
		Type:            domain.EntryTypeExpense,
		Amount:          req.TotalAmount,
		TransactionDate: input.TransactionDate,
		Description:     req.Title,
		ReferenceNumber: reference,
		ReceiptNumber:   input.ReceiptNumber,
		Notes:           input.Notes,
		Status:          domain.EntryStatusApproved,
		Category:        "expenditure",
	}

	now := time.Now().UTC()
	if err := uc.poster.post(txCtx, tx, domain.AuditActionExpenseRecord, account, entry, now); err != nil {
		return nil, err
	}

	before := *req
	if err := req.Confirm(entry.ID, now); err != nil {
		return nil, err
	}
	if err := uc.approvalRepo.Update(txCtx, tx, req); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen, domain.AggregateTypeRequest, req.ID, domain.EventTypeRequestConfirmed, domain.RequestEventPayload(req), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := auditTx(txCtx, tx, uc.auditRepo, uc.idGen, domain.AuditActionRequestConfirm, domain.AggregateTypeRequest, req.ID, before, req); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &ConfirmResult{Request: req, Account: account, Entry: entry}, nil
}

func (uc *ApprovalUseCase) countError(action domain.AuditAction, err error) {
	if uc.metrics != nil {
		uc.metrics.OperationErrors.WithLabelValues(string(action), errorType(err)).Inc()
	}
}

func checkRequestScope(ctx context.Context, req *domain.ApprovalRequest) error {
	scope := domain.BoardingHouseFromContext(ctx)
	if scope != "" && req.BoardingHouseID != scope {
		return domain.ErrRequestNotFound
	}
	return nil
}
