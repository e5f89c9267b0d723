package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

// ApprovalService defines the behavior needed by ApprovalHandler.
type ApprovalService interface {
	Submit(ctx context.Context, input usecase.SubmitRequestInput) (*domain.ApprovalRequest, error)
	Get(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	List(ctx context.Context, filter usecase.ApprovalFilter) ([]*domain.ApprovalRequest, error)
	Approve(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	Reject(ctx context.Context, id, reason string) (*domain.ApprovalRequest, error)
	Confirm(ctx context.Context, id string, input usecase.ConfirmInput) (*usecase.ConfirmResult, error)
}

// ApprovalHandler handles budget and expenditure requests.
type ApprovalHandler struct {
	approvalUC ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalUC ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalUC: approvalUC}
}

// Submit creates a pending request.
func (h *ApprovalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequestRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	created, err := h.approvalUC.Submit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to submit request", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RequestFromDomain(created))
}

// Get retrieves a request by ID.
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.approvalUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get request", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(req))
}

// List lists requests, optionally narrowed by status and kind.
func (h *ApprovalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := usecase.ApprovalFilter{
		BoardingHouseID: domain.BoardingHouseFromContext(r.Context()),
		Status:          domain.RequestStatus(q.Get("status")),
		Kind:            domain.RequestKind(q.Get("kind")),
		Limit:           parseIntQuery(r, "limit", 50),
		Offset:          parseIntQuery(r, "offset", 0),
	}

	requests, err := h.approvalUC.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "failed to list requests", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRequestsResponse{
		Requests: dto.RequestsFromDomain(requests),
		Total:    int64(len(requests)),
	})
}

// Approve moves a pending request to approved.
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	req, err := h.approvalUC.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to approve request", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(req))
}

// Reject moves a pending request to rejected.
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body dto.RejectRequest
	if !decodeRequest(w, r, &body) {
		return
	}

	req, err := h.approvalUC.Reject(r.Context(), chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		writeDomainError(w, r, "failed to reject request", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(req))
}

// Confirm realizes an approved expenditure as an expense entry. A shortfall
// answers 422 with the insufficient-funds payload.
func (h *ApprovalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var body dto.ConfirmRequest
	if r.ContentLength != 0 {
		if !decodeRequest(w, r, &body) {
			return
		}
	}

	input, err := body.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, "invalid confirmation", err)
		return
	}

	result, err := h.approvalUC.Confirm(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, r, "failed to confirm expenditure", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConfirmFromUseCase(result))
}
