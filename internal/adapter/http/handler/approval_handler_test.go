package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

func pendingExpenditure() *domain.ApprovalRequest {
	return &domain.ApprovalRequest{
		ID:               "req-1",
		Kind:             domain.RequestKindExpenditure,
		Title:            "Gas refill",
		TotalAmount:      decimal.RequireFromString("75"),
		Status:           domain.RequestStatusPending,
		FundingAccountID: "acc-1",
	}
}

func TestApprovalHandler_Submit(t *testing.T) {
	var captured usecase.SubmitRequestInput
	handler := NewApprovalHandler(&approvalServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitRequestInput) (*domain.ApprovalRequest, error) {
			captured = input
			return pendingExpenditure(), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/requests", stringsReader(
		`{"kind":"expenditure","title":"Gas refill","total_amount":"75","funding_account_id":"acc-1","line_items":[{"name":"gas","amount":"75"}]}`))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Kind != domain.RequestKindExpenditure || len(captured.LineItems) != 1 {
		t.Fatalf("unexpected input: %+v", captured)
	}
}

func TestApprovalHandler_Submit_LineItemMismatch(t *testing.T) {
	handler := NewApprovalHandler(&approvalServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitRequestInput) (*domain.ApprovalRequest, error) {
			return nil, domain.ErrLineItemsMismatch
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/requests", stringsReader(
		`{"kind":"budget","title":"March","total_amount":"300","line_items":[{"name":"food","amount":"200"}]}`))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestApprovalHandler_List_PassesFilters(t *testing.T) {
	var captured usecase.ApprovalFilter
	handler := NewApprovalHandler(&approvalServiceStub{
		listFn: func(ctx context.Context, filter usecase.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
			captured = filter
			return []*domain.ApprovalRequest{pendingExpenditure()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/requests?status=pending&kind=expenditure", nil)
	req = req.WithContext(domain.ContextWithBoardingHouse(req.Context(), "bh-1"))
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Status != domain.RequestStatusPending || captured.Kind != domain.RequestKindExpenditure || captured.BoardingHouseID != "bh-1" {
		t.Fatalf("unexpected filter: %+v", captured)
	}
}

func TestApprovalHandler_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		call       func(h *ApprovalHandler, w http.ResponseWriter, r *http.Request)
		body       string
		stub       *approvalServiceStub
		wantStatus int
	}{
		{
			name: "approve pending",
			call: (*ApprovalHandler).Approve,
			stub: &approvalServiceStub{approveFn: func(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
				req := pendingExpenditure()
				req.Status = domain.RequestStatusApproved
				return req, nil
			}},
			wantStatus: http.StatusOK,
		},
		{
			name: "approve rejected request",
			call: (*ApprovalHandler).Approve,
			stub: &approvalServiceStub{approveFn: func(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
				return nil, domain.ErrInvalidTransition
			}},
			wantStatus: http.StatusConflict,
		},
		{
			name: "reject with reason",
			call: (*ApprovalHandler).Reject,
			body: `{"reason":"over budget"}`,
			stub: &approvalServiceStub{rejectFn: func(ctx context.Context, id, reason string) (*domain.ApprovalRequest, error) {
				if reason != "over budget" {
					t.Fatalf("unexpected reason %q", reason)
				}
				req := pendingExpenditure()
				req.Status = domain.RequestStatusRejected
				req.RejectionReason = reason
				return req, nil
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "reject without reason",
			call:       (*ApprovalHandler).Reject,
			body:       `{}`,
			stub:       &approvalServiceStub{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown request",
			call: (*ApprovalHandler).Approve,
			stub: &approvalServiceStub{approveFn: func(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
				return nil, domain.ErrRequestNotFound
			}},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewApprovalHandler(tt.stub)
			req := withURLParam(httptest.NewRequest(http.MethodPost, "/requests/req-1", stringsReader(tt.body)), "id", "req-1")
			rec := httptest.NewRecorder()

			tt.call(handler, rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestApprovalHandler_Confirm(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	var captured usecase.ConfirmInput
	handler := NewApprovalHandler(&approvalServiceStub{
		confirmFn: func(ctx context.Context, id string, input usecase.ConfirmInput) (*usecase.ConfirmResult, error) {
			captured = input
			req := pendingExpenditure()
			req.Status = domain.RequestStatusApproved
			req.ConfirmedAt = &now
			req.ExpenseEntryID = "e-9"
			account := testAccount()
			account.CurrentBalance = decimal.RequireFromString("25")
			return &usecase.ConfirmResult{
				Request: req,
				Account: account,
				Entry: &domain.LedgerEntry{
					ID:     "e-9",
					Type:   domain.EntryTypeExpense,
					Amount: decimal.RequireFromString("75"),
				},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/requests/req-1/confirm",
		stringsReader(`{"receipt_number":"R-77","transaction_date":"2024-03-02"}`)), "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ReceiptNumber != "R-77" || !captured.TransactionDate.Equal(now) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.ConfirmResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Request.ExpenseEntryID != "e-9" || resp.Entry.ExpenseAmount == nil || resp.Account.CurrentBalance.String() != "25" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApprovalHandler_Confirm_EmptyBody(t *testing.T) {
	called := false
	handler := NewApprovalHandler(&approvalServiceStub{
		confirmFn: func(ctx context.Context, id string, input usecase.ConfirmInput) (*usecase.ConfirmResult, error) {
			called = true
			return nil, domain.ErrAlreadyConfirmed
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/requests/req-1/confirm", nil), "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	if !called {
		t.Fatalf("expected confirm without a body to reach the use case")
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestApprovalHandler_Confirm_InsufficientFunds(t *testing.T) {
	handler := NewApprovalHandler(&approvalServiceStub{
		confirmFn: func(ctx context.Context, id string, input usecase.ConfirmInput) (*usecase.ConfirmResult, error) {
			return nil, &domain.InsufficientFundsError{
				CurrentBalance: decimal.RequireFromString("40"),
				RequiredAmount: decimal.RequireFromString("75"),
				AccountName:    "Petty Cash",
			}
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/requests/req-1/confirm", stringsReader(`{}`)), "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["accountName"] != "Petty Cash" || raw["currentBalance"] != "40" || raw["requiredAmount"] != "75" {
		t.Fatalf("unexpected payload: %v", raw)
	}
}
