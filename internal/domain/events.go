package domain

import "time"

// Event types
const (
	EventTypeAccountCreated   = "account.created"
	EventTypeCashIssued       = "cash.issued"
	EventTypeExpenseRecorded  = "expense.recorded"
	EventTypeRequestSubmitted = "request.submitted"
	EventTypeRequestApproved  = "request.approved"
	EventTypeRequestRejected  = "request.rejected"
	EventTypeRequestConfirmed = "request.confirmed"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypeEntry   = "entry"
	AggregateTypeRequest = "request"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryEventPayload builds the payload shared by cash.issued and expense.recorded.
func EntryEventPayload(account *Account, entry *LedgerEntry) map[string]any {
	return map[string]any{
		"entry_id":         entry.ID,
		"account_id":       account.ID,
		"boarding_house":   account.BoardingHouseID,
		"type":             string(entry.Type),
		"amount":           entry.Amount.String(),
		"currency":         account.Currency,
		"balance_after":    account.CurrentBalance.String(),
		"transaction_date": entry.TransactionDate.Format("2006-01-02"),
	}
}

// RequestEventPayload builds the payload of request.* events.
func RequestEventPayload(req *ApprovalRequest) map[string]any {
	payload := map[string]any{
		"request_id":   req.ID,
		"kind":         string(req.Kind),
		"status":       string(req.Status),
		"total_amount": req.TotalAmount.String(),
		"submitted_by": req.SubmittedBy,
	}
	if req.RejectionReason != "" {
		payload["rejection_reason"] = req.RejectionReason
	}
	if req.ExpenseEntryID != "" {
		payload["expense_entry_id"] = req.ExpenseEntryID
	}
	return payload
}
