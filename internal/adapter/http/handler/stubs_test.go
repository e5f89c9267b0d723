package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
	"github.com/iho/pettycash/internal/usecase"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

// withURLParam attaches a chi route parameter to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:             "acc-1",
		Name:           "Petty Cash",
		Code:           "PC-01",
		Currency:       "KES",
		OpeningBalance: decimal.RequireFromString("100"),
		CurrentBalance: decimal.RequireFromString("100"),
	}
}

type accountServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, id string) (*domain.Account, error)
	listFn   func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

type entryServiceStub struct {
	listFn    func(ctx context.Context, input usecase.ListEntriesInput) ([]domain.LedgerEntry, error)
	balanceFn func(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]domain.LedgerEntry, error) {
	return s.listFn(ctx, input)
}

func (s *entryServiceStub) GetHistoricalBalance(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	return s.balanceFn(ctx, accountID, at)
}

type reportServiceStub struct {
	reportFn func(ctx context.Context, accountID string, filter ledger.DateFilter) (*ledger.Report, error)
}

func (s *reportServiceStub) GetLedgerReport(ctx context.Context, accountID string, filter ledger.DateFilter) (*ledger.Report, error) {
	return s.reportFn(ctx, accountID, filter)
}

type cashServiceStub struct {
	issueFn   func(ctx context.Context, input usecase.IssueCashInput) (*usecase.CashResult, error)
	expenseFn func(ctx context.Context, input usecase.RecordExpenseInput) (*usecase.CashResult, error)
}

func (s *cashServiceStub) IssueCash(ctx context.Context, input usecase.IssueCashInput) (*usecase.CashResult, error) {
	return s.issueFn(ctx, input)
}

func (s *cashServiceStub) RecordExpense(ctx context.Context, input usecase.RecordExpenseInput) (*usecase.CashResult, error) {
	return s.expenseFn(ctx, input)
}

type approvalServiceStub struct {
	submitFn  func(ctx context.Context, input usecase.SubmitRequestInput) (*domain.ApprovalRequest, error)
	getFn     func(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	listFn    func(ctx context.Context, filter usecase.ApprovalFilter) ([]*domain.ApprovalRequest, error)
	approveFn func(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	rejectFn  func(ctx context.Context, id, reason string) (*domain.ApprovalRequest, error)
	confirmFn func(ctx context.Context, id string, input usecase.ConfirmInput) (*usecase.ConfirmResult, error)
}

func (s *approvalServiceStub) Submit(ctx context.Context, input usecase.SubmitRequestInput) (*domain.ApprovalRequest, error) {
	return s.submitFn(ctx, input)
}

func (s *approvalServiceStub) Get(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return s.getFn(ctx, id)
}

func (s *approvalServiceStub) List(ctx context.Context, filter usecase.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	return s.listFn(ctx, filter)
}

func (s *approvalServiceStub) Approve(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return s.approveFn(ctx, id)
}

func (s *approvalServiceStub) Reject(ctx context.Context, id, reason string) (*domain.ApprovalRequest, error) {
	return s.rejectFn(ctx, id, reason)
}

func (s *approvalServiceStub) Confirm(ctx context.Context, id string, input usecase.ConfirmInput) (*usecase.ConfirmResult, error) {
	return s.confirmFn(ctx, id, input)
}
