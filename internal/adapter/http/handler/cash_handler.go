package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/usecase"
)

// CashService defines the behavior needed by CashHandler.
type CashService interface {
	IssueCash(ctx context.Context, input usecase.IssueCashInput) (*usecase.CashResult, error)
	RecordExpense(ctx context.Context, input usecase.RecordExpenseInput) (*usecase.CashResult, error)
}

// CashHandler handles cash movements against an account.
type CashHandler struct {
	cashUC CashService
}

// NewCashHandler creates a new CashHandler.
func NewCashHandler(cashUC CashService) *CashHandler {
	return &CashHandler{cashUC: cashUC}
}

// Issue adds cash to an account.
func (h *CashHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueCashRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "invalid issuance", err)
		return
	}

	result, err := h.cashUC.IssueCash(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to issue cash", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CashResultFromUseCase(result))
}

// Expense records cash spent from an account. A shortfall answers 422 with
// the insufficient-funds payload.
func (h *CashHandler) Expense(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordExpenseRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "invalid expense", err)
		return
	}

	result, err := h.cashUC.RecordExpense(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to record expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CashResultFromUseCase(result))
}
