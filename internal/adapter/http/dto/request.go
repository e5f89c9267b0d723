package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
	"github.com/iho/pettycash/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	BoardingHouseID string          `json:"boarding_house_id,omitempty" validate:"omitempty,max=64"`
	Name            string          `json:"name" validate:"required,max=100"`
	Code            string          `json:"code,omitempty" validate:"omitempty,max=20"`
	OwnerRef        string          `json:"owner_ref,omitempty" validate:"omitempty,max=64"`
	Currency        string          `json:"currency" validate:"required,len=3,alpha"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	AllowOverdraft  bool            `json:"allow_overdraft"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		BoardingHouseID: r.BoardingHouseID,
		Name:            r.Name,
		Code:            r.Code,
		OwnerRef:        r.OwnerRef,
		OpeningBalance:  r.OpeningBalance,
		Currency:        r.Currency,
		AllowOverdraft:  r.AllowOverdraft,
	}
}

// IssueCashRequest adds cash to an account.
type IssueCashRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Purpose         string          `json:"purpose" validate:"required,max=500"`
	ReferenceNumber string          `json:"reference_number,omitempty" validate:"omitempty,max=64"`
	Notes           string          `json:"notes,omitempty"`
	TransactionDate string          `json:"transaction_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IssueCashRequest) ToUseCaseInput(accountID string) (usecase.IssueCashInput, error) {
	date, err := parseTransactionDate(r.TransactionDate)
	if err != nil {
		return usecase.IssueCashInput{}, err
	}
	return usecase.IssueCashInput{
		AccountID:       accountID,
		Amount:          r.Amount,
		Purpose:         r.Purpose,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		TransactionDate: date,
	}, nil
}

// RecordExpenseRequest spends cash from an account. The amount travels as
// expense_amount, matching how expenses are rendered.
type RecordExpenseRequest struct {
	ExpenseAmount   decimal.Decimal `json:"expense_amount"`
	Description     string          `json:"description" validate:"required,max=500"`
	Category        string          `json:"category,omitempty" validate:"omitempty,max=64"`
	Vendor          string          `json:"vendor,omitempty" validate:"omitempty,max=128"`
	ReceiptNumber   string          `json:"receipt_number,omitempty" validate:"omitempty,max=64"`
	Notes           string          `json:"notes,omitempty"`
	TransactionDate string          `json:"transaction_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordExpenseRequest) ToUseCaseInput(accountID string) (usecase.RecordExpenseInput, error) {
	date, err := parseTransactionDate(r.TransactionDate)
	if err != nil {
		return usecase.RecordExpenseInput{}, err
	}
	return usecase.RecordExpenseInput{
		AccountID:       accountID,
		Amount:          r.ExpenseAmount,
		Description:     r.Description,
		Category:        r.Category,
		Vendor:          r.Vendor,
		ReceiptNumber:   r.ReceiptNumber,
		Notes:           r.Notes,
		TransactionDate: date,
	}, nil
}

// LineItemRequest is one category line of a submitted request.
type LineItemRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// SubmitRequestRequest submits a budget or expenditure request.
type SubmitRequestRequest struct {
	Kind             string            `json:"kind" validate:"required,oneof=budget expenditure"`
	Title            string            `json:"title" validate:"required,max=200"`
	Period           string            `json:"period,omitempty" validate:"omitempty,max=32"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	FundingAccountID string            `json:"funding_account_id,omitempty" validate:"required_if=Kind expenditure"`
	LineItems        []LineItemRequest `json:"line_items,omitempty" validate:"dive"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitRequestRequest) ToUseCaseInput() usecase.SubmitRequestInput {
	items := make([]domain.LineItem, len(r.LineItems))
	for i, item := range r.LineItems {
		items[i] = domain.LineItem{
			Name:        item.Name,
			Amount:      item.Amount,
			Description: item.Description,
		}
	}
	return usecase.SubmitRequestInput{
		Kind:             domain.RequestKind(r.Kind),
		Title:            r.Title,
		Period:           r.Period,
		TotalAmount:      r.TotalAmount,
		FundingAccountID: r.FundingAccountID,
		LineItems:        items,
	}
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ConfirmRequest carries the receipt details of a realized expenditure.
type ConfirmRequest struct {
	ReceiptNumber   string `json:"receipt_number,omitempty" validate:"omitempty,max=64"`
	Notes           string `json:"notes,omitempty"`
	TransactionDate string `json:"transaction_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ConfirmRequest) ToUseCaseInput() (usecase.ConfirmInput, error) {
	date, err := parseTransactionDate(r.TransactionDate)
	if err != nil {
		return usecase.ConfirmInput{}, err
	}
	return usecase.ConfirmInput{
		ReceiptNumber:   r.ReceiptNumber,
		Notes:           r.Notes,
		TransactionDate: date,
	}, nil
}

// parseTransactionDate accepts the layouts the ledger reads back. Empty
// means "now" and is resolved by the use case.
func parseTransactionDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := ledger.ParseDate(value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "transaction_date", Reason: err.Error()}
	}
	return t, nil
}
