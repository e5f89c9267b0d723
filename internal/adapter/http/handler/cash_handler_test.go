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

func TestCashHandler_Issue(t *testing.T) {
	var captured usecase.IssueCashInput
	handler := NewCashHandler(&cashServiceStub{
		issueFn: func(ctx context.Context, input usecase.IssueCashInput) (*usecase.CashResult, error) {
			captured = input
			account := testAccount()
			account.CurrentBalance = account.CurrentBalance.Add(input.Amount)
			return &usecase.CashResult{
				Account: account,
				Entry: &domain.LedgerEntry{
					ID:              "e-1",
					AccountID:       input.AccountID,
					Type:            domain.EntryTypeIssuance,
					Amount:          input.Amount,
					TransactionDate: input.TransactionDate,
					Description:     input.Purpose,
					Status:          domain.EntryStatusIssued,
				},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/issuances",
		stringsReader(`{"amount":"50.00","purpose":"Weekly float","transaction_date":"2024-01-08"}`))
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Issue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || !captured.Amount.Equal(decimal.RequireFromString("50")) ||
		!captured.TransactionDate.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.CashResultResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Account.CurrentBalance.String() != "150" || resp.Entry.Amount == nil || resp.Entry.Purpose != "Weekly float" {
		t.Fatalf("unexpected response: %+v / %+v", resp.Account, resp.Entry)
	}
}

func TestCashHandler_Expense_InsufficientFunds(t *testing.T) {
	handler := NewCashHandler(&cashServiceStub{
		expenseFn: func(ctx context.Context, input usecase.RecordExpenseInput) (*usecase.CashResult, error) {
			return nil, &domain.InsufficientFundsError{
				CurrentBalance: decimal.RequireFromString("40"),
				RequiredAmount: input.Amount,
				AccountName:    "Petty Cash",
			}
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/expenses",
		stringsReader(`{"expense_amount":75,"description":"Gas refill"}`))
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Expense(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload dto.InsufficientFundsResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := payload.ToDomain().Shortfall(); !got.Equal(decimal.RequireFromString("35")) {
		t.Fatalf("shortfall = %s, want 35", got)
	}
}

func TestCashHandler_Expense_RequiresDescription(t *testing.T) {
	handler := NewCashHandler(&cashServiceStub{
		expenseFn: func(ctx context.Context, input usecase.RecordExpenseInput) (*usecase.CashResult, error) {
			t.Fatalf("use case must not be called")
			return nil, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/expenses",
		stringsReader(`{"expense_amount":"10"}`)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Expense(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCashHandler_Expense_RejectsBadDate(t *testing.T) {
	handler := NewCashHandler(&cashServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/expenses",
		stringsReader(`{"expense_amount":"10","description":"Soap","transaction_date":"31/01/2024"}`)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Expense(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCashHandler_Issue_AmountRulesAreClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "below minimum", amount: "0.001"},
		{name: "above maximum", amount: "5000000000"},
		{name: "sub-cent precision", amount: "10.005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCashHandler(&cashServiceStub{
				issueFn: func(ctx context.Context, input usecase.IssueCashInput) (*usecase.CashResult, error) {
					return nil, domain.ValidateAmount(input.Amount)
				},
			})

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/issuances",
				stringsReader(`{"amount":"`+tt.amount+`","purpose":"float"}`)), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.Issue(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Message == "" || resp.Message == "internal error" {
				t.Fatalf("expected the validation reason, got %+v", resp)
			}
		})
	}
}
