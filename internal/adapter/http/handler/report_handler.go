package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/ledger"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	GetLedgerReport(ctx context.Context, accountID string, filter ledger.DateFilter) (*ledger.Report, error)
}

// ReportHandler renders account ledgers as JSON, CSV or PDF.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// Ledger returns the running-balance ledger of an account.
func (h *ReportHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.ReportFromLedger(report))
}

// LedgerCSV exports the ledger as CSV.
func (h *ReportHandler) LedgerCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	h.export(w, r, report, "text/csv; charset=utf-8", "csv", ledger.WriteCSV)
}

// LedgerPDF exports the ledger as a printable statement.
func (h *ReportHandler) LedgerPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	h.export(w, r, report, "application/pdf", "pdf", ledger.WritePDF)
}

func (h *ReportHandler) load(w http.ResponseWriter, r *http.Request) (*ledger.Report, bool) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return nil, false
	}

	filter, err := parseDateFilter(r)
	if err != nil {
		writeDomainError(w, r, "invalid date filter", err)
		return nil, false
	}

	report, err := h.reportUC.GetLedgerReport(r.Context(), accountID, filter)
	if err != nil {
		writeDomainError(w, r, "failed to build ledger", err)
		return nil, false
	}
	return report, true
}

// export renders into a buffer first so a formatting failure still yields a
// clean error response.
func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, report *ledger.Report,
	contentType, ext string, render func(io.Writer, *ledger.Report) error,
) {
	var buf bytes.Buffer
	if err := render(&buf, report); err != nil {
		writeDomainError(w, r, "failed to export ledger", err)
		return
	}

	filename := fmt.Sprintf("ledger-%s-%s.%s", exportName(report), report.Filter.Key(), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func exportName(report *ledger.Report) string {
	if report.Account.Code != "" {
		return report.Account.Code
	}
	return report.Account.ID
}
