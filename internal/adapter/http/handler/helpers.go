package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/infrastructure/logger"
	"github.com/iho/pettycash/internal/ledger"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status it maps to. Insufficient
// funds get their own payload so the shortfall reaches the caller intact.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		writeJSON(w, http.StatusUnprocessableEntity, dto.InsufficientFundsFromDomain(funds))
		return
	}

	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error().Err(err).Msg(message)
		writeError(w, status, message, "internal error")
		return
	}

	resp := dto.ErrorResponse{Error: message, Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Details = map[string]string{verr.Field: verr.Reason}
	}
	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAlreadyConfirmed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotExpenditure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountCode),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrUnknownType),
		errors.Is(err, domain.ErrMalformedRecord),
		errors.Is(err, domain.ErrRejectionReasonRequired),
		errors.Is(err, domain.ErrFundingAccountRequired),
		errors.Is(err, domain.ErrLineItemsMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateFilter reads start_date and end_date. Either may be omitted.
func parseDateFilter(r *http.Request) (ledger.DateFilter, error) {
	var filter ledger.DateFilter

	start, err := parseDateQuery(r, "start_date")
	if err != nil {
		return filter, err
	}
	end, err := parseDateQuery(r, "end_date")
	if err != nil {
		return filter, err
	}

	filter = ledger.DateFilter{Start: start, End: end}
	return filter, filter.Validate()
}

func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, nil
	}
	t, err := ledger.ParseDate(val)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: key, Reason: err.Error()}
	}
	return t, nil
}
