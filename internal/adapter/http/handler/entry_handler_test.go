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

func TestEntryHandler_ListByAccount(t *testing.T) {
	var captured usecase.ListEntriesInput
	handler := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]domain.LedgerEntry, error) {
			captured = input
			return []domain.LedgerEntry{
				{ID: "e-1", Type: domain.EntryTypeIssuance, Amount: decimal.RequireFromString("50")},
				{ID: "e-2", Type: domain.EntryTypeExpense, Amount: decimal.RequireFromString("20")},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/entries?end_date=2024-01-31", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.AccountID != "acc-1" || !captured.Filter.End.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var raw struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw.Entries[0]["amount"]; !ok {
		t.Fatalf("issuance should expose amount: %v", raw.Entries[0])
	}
	if _, ok := raw.Entries[1]["expense_amount"]; !ok {
		t.Fatalf("expense should expose expense_amount: %v", raw.Entries[1])
	}
}

func TestEntryHandler_GetHistoricalBalance(t *testing.T) {
	var capturedAt time.Time
	handler := NewEntryHandler(&entryServiceStub{
		balanceFn: func(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
			capturedAt = at
			return decimal.RequireFromString("75.50"), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance/history?at=2024-01-15T12:00:00Z", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.GetHistoricalBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !capturedAt.Equal(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected at: %v", capturedAt)
	}

	var resp dto.BalanceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance.String() != "75.5" {
		t.Fatalf("balance = %s, want 75.5", resp.Balance)
	}
}

func TestEntryHandler_GetHistoricalBalance_BadTime(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balance/history?at=noon", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.GetHistoricalBalance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
