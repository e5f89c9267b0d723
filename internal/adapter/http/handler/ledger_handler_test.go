package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
	"github.com/iho/pettycash/internal/usecase"
)

type reconciliationServiceStub struct {
	account    func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	report     func(ctx context.Context) (*usecase.ReconciliationReport, error)
	consistent error
}

func (s *reconciliationServiceStub) ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
	return s.account(ctx, accountID)
}

func (s *reconciliationServiceStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.report(ctx)
}

func (s *reconciliationServiceStub) CheckLedgerConsistency(ctx context.Context) error {
	return s.consistent
}

func TestLedgerHandler_ReconcileAccount(t *testing.T) {
	handler := NewLedgerHandler(&reconciliationServiceStub{
		account: func(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error) {
			if accountID != "acc-1" {
				return nil, domain.ErrAccountNotFound
			}
			return &usecase.ReconciliationResult{
				Reconciliation: ledger.Reconciliation{
					AccountID:       "acc-1",
					StoredBalance:   decimal.RequireFromString("100"),
					ComputedBalance: decimal.RequireFromString("90"),
					Difference:      decimal.RequireFromString("10"),
					EntryCount:      3,
				},
				CheckedAt: time.Now(),
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.ReconcileAccount(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/reconciliation", nil), "id", "acc-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ReconciliationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balanced || resp.Difference.String() != "10" || resp.EntryCount != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.ReconcileAccount(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/x/reconciliation", nil), "id", "x"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_Reconciliation(t *testing.T) {
	handler := NewLedgerHandler(&reconciliationServiceStub{
		report: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{
				TotalAccounts:      2,
				ReconciledAccounts: 2,
				TotalDifference:    decimal.Zero,
				LedgerConsistent:   true,
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Reconciliation(rec, httptest.NewRequest(http.MethodGet, "/ledger/reconciliation", nil))

	var resp dto.ReconciliationReportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || resp.TotalAccounts != 2 || !resp.LedgerConsistent {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	rec := httptest.NewRecorder()
	NewLedgerHandler(&reconciliationServiceStub{}).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewLedgerHandler(&reconciliationServiceStub{consistent: errors.New("stored=10 computed=9")}).
		CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
