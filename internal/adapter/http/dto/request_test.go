package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		BoardingHouseID: "bh-1",
		Name:            "Petty Cash",
		Code:            "PC-01",
		Currency:        "KES",
		OpeningBalance:  decimal.RequireFromString("500"),
		AllowOverdraft:  true,
	}

	got := req.ToUseCaseInput()
	want := usecase.CreateAccountInput{
		BoardingHouseID: "bh-1",
		Name:            "Petty Cash",
		Code:            "PC-01",
		Currency:        "KES",
		OpeningBalance:  decimal.RequireFromString("500"),
		AllowOverdraft:  true,
	}

	if got.Name != want.Name || got.Code != want.Code || got.Currency != want.Currency ||
		got.BoardingHouseID != want.BoardingHouseID || !got.OpeningBalance.Equal(want.OpeningBalance) ||
		got.AllowOverdraft != want.AllowOverdraft {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestIssueCashRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name        string
		request     *IssueCashRequest
		wantDate    time.Time
		expectError bool
	}{
		{
			name:     "plain date",
			request:  &IssueCashRequest{Amount: decimal.RequireFromString("100"), Purpose: "float", TransactionDate: "2024-01-05"},
			wantDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339 timestamp",
			request:  &IssueCashRequest{Amount: decimal.RequireFromString("100"), Purpose: "float", TransactionDate: "2024-01-05T10:30:00+03:00"},
			wantDate: time.Date(2024, 1, 5, 7, 30, 0, 0, time.UTC),
		},
		{
			name:    "empty date is left for the use case",
			request: &IssueCashRequest{Amount: decimal.RequireFromString("100"), Purpose: "float"},
		},
		{
			name:        "unparseable date",
			request:     &IssueCashRequest{Amount: decimal.RequireFromString("100"), Purpose: "float", TransactionDate: "05/01/2024"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput("acc-1")

			if tt.expectError {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.AccountID != "acc-1" || got.Purpose != "float" || !got.Amount.Equal(decimal.RequireFromString("100")) {
				t.Fatalf("unexpected input: %+v", got)
			}
			if !got.TransactionDate.Equal(tt.wantDate) {
				t.Fatalf("TransactionDate = %v, want %v", got.TransactionDate, tt.wantDate)
			}
		})
	}
}

func TestRecordExpenseRequest_ToUseCaseInput(t *testing.T) {
	req := &RecordExpenseRequest{
		ExpenseAmount:   decimal.RequireFromString("25.50"),
		Description:     "Cleaning supplies",
		Category:        "supplies",
		Vendor:          "Duka",
		ReceiptNumber:   "R-9",
		TransactionDate: "2024-02-01",
	}

	got, err := req.ToUseCaseInput("acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.AccountID != "acc-1" || !got.Amount.Equal(decimal.RequireFromString("25.50")) ||
		got.Description != "Cleaning supplies" || got.ReceiptNumber != "R-9" || got.Vendor != "Duka" {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestSubmitRequestRequest_ToUseCaseInput(t *testing.T) {
	req := &SubmitRequestRequest{
		Kind:             "expenditure",
		Title:            "Gas refill",
		Period:           "2024-03",
		TotalAmount:      decimal.RequireFromString("75"),
		FundingAccountID: "acc-1",
		LineItems: []LineItemRequest{
			{Name: "gas", Amount: decimal.RequireFromString("75")},
		},
	}

	got := req.ToUseCaseInput()

	if got.Kind != domain.RequestKindExpenditure || got.FundingAccountID != "acc-1" || got.Period != "2024-03" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if len(got.LineItems) != 1 || got.LineItems[0].Name != "gas" || !got.LineItems[0].Amount.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("unexpected line items: %+v", got.LineItems)
	}
}

func TestConfirmRequest_ToUseCaseInput(t *testing.T) {
	got, err := (&ConfirmRequest{ReceiptNumber: "R-1", TransactionDate: "2024-03-02"}).ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ReceiptNumber != "R-1" || !got.TransactionDate.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected input: %+v", got)
	}

	if _, err := (&ConfirmRequest{TransactionDate: "yesterday"}).ToUseCaseInput(); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}
