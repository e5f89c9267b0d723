package handler

import (
	"context"
	"net/http"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
)

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List lists audit logs, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	}

	start, err := parseDateQuery(r, "start_date")
	if err != nil {
		writeDomainError(w, r, "invalid date filter", err)
		return
	}
	if !start.IsZero() {
		filter.StartDate = &start
	}
	end, err := parseDateQuery(r, "end_date")
	if err != nil {
		writeDomainError(w, r, "invalid date filter", err)
		return
	}
	if !end.IsZero() {
		filter.EndDate = &end
	}

	logs, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"audit_logs": dto.AuditLogsFromDomain(logs),
		"total":      len(logs),
	})
}
