package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateCode     = errors.New("account code already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Entry errors
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrUnknownType     = errors.New("unknown entry type")
	ErrValidation      = errors.New("validation failed")
	ErrMalformedRecord = errors.New("malformed ledger record")

	// Approval errors
	ErrRequestNotFound         = errors.New("approval request not found")
	ErrInvalidTransition       = errors.New("request is not in a state that allows this action")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrNotExpenditure          = errors.New("only expenditure requests can be confirmed")
	ErrAlreadyConfirmed        = errors.New("expenditure has already been confirmed")
	ErrFundingAccountRequired  = errors.New("expenditure request requires a funding account")
	ErrLineItemsMismatch       = errors.New("line items do not add up to the total amount")
)

// ValidationError reports malformed numeric input to the projector.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MalformedRecordError reports a raw backend record that does not match any known shape.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed ledger record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed ledger record: %s: %s", e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// InsufficientFundsError carries the numbers needed to show a shortfall.
// The fields must reach the caller unchanged.
type InsufficientFundsError struct {
	CurrentBalance decimal.Decimal
	RequiredAmount decimal.Decimal
	AccountName    string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %q: balance %s, required %s",
		e.AccountName, e.CurrentBalance.StringFixed(2), e.RequiredAmount.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall returns how much is missing to cover the required amount.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.RequiredAmount.Sub(e.CurrentBalance)
}
