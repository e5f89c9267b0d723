package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestKind distinguishes budget requests from expenditure requests.
type RequestKind string

const (
	RequestKindBudget      RequestKind = "budget"
	RequestKindExpenditure RequestKind = "expenditure"
)

// IsValid reports whether k is a known request kind.
func (k RequestKind) IsValid() bool {
	return k == RequestKindBudget || k == RequestKindExpenditure
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// LineItem is one category line of an approval request.
type LineItem struct {
	Name        string
	Amount      decimal.Decimal
	Description string
}

// ApprovalRequest is a budget or expenditure request moving from pending
// to exactly one of approved or rejected.
type ApprovalRequest struct {
	ID               string
	BoardingHouseID  string
	Kind             RequestKind
	Title            string
	Period           string
	TotalAmount      decimal.Decimal
	Status           RequestStatus
	SubmittedBy      string
	SubmittedAt      time.Time
	ApprovedBy       string
	ApprovedAt       *time.Time
	RejectedBy       string
	RejectedAt       *time.Time
	RejectionReason  string
	FundingAccountID string
	ConfirmedAt      *time.Time
	ExpenseEntryID   string
	LineItems        []LineItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LineItemTotal sums the line item amounts.
func (r *ApprovalRequest) LineItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.LineItems {
		total = total.Add(item.Amount)
	}
	return total
}

// Validate checks a request before it is submitted.
func (r *ApprovalRequest) Validate() error {
	if !r.Kind.IsValid() {
		return &ValidationError{Field: "kind", Reason: "must be budget or expenditure"}
	}
	if !r.TotalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if !HasAmountScale(r.TotalAmount) {
		return &ValidationError{Field: "total_amount", Reason: "at most 2 decimal places"}
	}
	for _, item := range r.LineItems {
		if !item.Amount.IsPositive() {
			return &ValidationError{Field: "line_items.amount", Reason: "must be strictly positive"}
		}
		if !HasAmountScale(item.Amount) {
			return &ValidationError{Field: "line_items.amount", Reason: "at most 2 decimal places"}
		}
	}
	if len(r.LineItems) > 0 && !r.LineItemTotal().Equal(r.TotalAmount) {
		return ErrLineItemsMismatch
	}
	if r.Kind == RequestKindExpenditure && r.FundingAccountID == "" {
		return ErrFundingAccountRequired
	}
	return nil
}

// IsTerminal reports whether the request has left pending.
func (r *ApprovalRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// Approve moves a pending request to approved.
func (r *ApprovalRequest) Approve(approver string, at time.Time) error {
	if r.Status != RequestStatusPending {
		return ErrInvalidTransition
	}
	r.Status = RequestStatusApproved
	r.ApprovedBy = approver
	r.ApprovedAt = &at
	r.UpdatedAt = at
	return nil
}

// Reject moves a pending request to rejected. The reason must not be blank.
func (r *ApprovalRequest) Reject(approver, reason string, at time.Time) error {
	if r.Status != RequestStatusPending {
		return ErrInvalidTransition
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrRejectionReasonRequired
	}
	r.Status = RequestStatusRejected
	r.RejectedBy = approver
	r.RejectedAt = &at
	r.RejectionReason = reason
	r.UpdatedAt = at
	return nil
}

// CanConfirm checks that an approved expenditure has not been realized yet.
func (r *ApprovalRequest) CanConfirm() error {
	if r.Kind != RequestKindExpenditure {
		return ErrNotExpenditure
	}
	if r.Status != RequestStatusApproved {
		return ErrInvalidTransition
	}
	if r.ConfirmedAt != nil {
		return ErrAlreadyConfirmed
	}
	return nil
}

// Confirm records the expense entry that realized the expenditure.
func (r *ApprovalRequest) Confirm(entryID string, at time.Time) error {
	if err := r.CanConfirm(); err != nil {
		return err
	}
	r.ExpenseEntryID = entryID
	r.ConfirmedAt = &at
	r.UpdatedAt = at
	return nil
}
