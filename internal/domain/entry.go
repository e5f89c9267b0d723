package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tags a ledger entry as cash in or cash out.
type EntryType string

const (
	EntryTypeIssuance EntryType = "issuance"
	EntryTypeExpense  EntryType = "expense"
)

// IsValid reports whether t is a known entry type.
func (t EntryType) IsValid() bool {
	return t == EntryTypeIssuance || t == EntryTypeExpense
}

type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusApproved EntryStatus = "approved"
	EntryStatusIssued   EntryStatus = "issued"
	EntryStatusRejected EntryStatus = "rejected"
)

// LedgerEntry is a single issuance or expense against a petty-cash account.
// Amount is always positive; Type decides the sign.
type LedgerEntry struct {
	ID              string
	AccountID       string
	Type            EntryType
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	ReferenceNumber string
	Notes           string
	Status          EntryStatus
	Category        string
	Vendor          string
	ReceiptNumber   string
	CreatedAt       time.Time
}

// Delta returns the signed balance change of the entry.
func (e *LedgerEntry) Delta() decimal.Decimal {
	if e.Type == EntryTypeExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Validate checks the amount and type invariants.
func (e *LedgerEntry) Validate() error {
	if !e.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "must be issuance or expense"}
	}
	if !e.Amount.IsPositive() {
		field := "amount"
		if e.Type == EntryTypeExpense {
			field = "expense_amount"
		}
		return &ValidationError{Field: field, Reason: "must be strictly positive, got " + e.Amount.String()}
	}
	return nil
}

// RunningBalanceRow pairs an entry with the balance right after it.
type RunningBalanceRow struct {
	Entry          LedgerEntry
	RunningBalance decimal.Decimal
}

// Summary aggregates a set of entries.
type Summary struct {
	TotalIssuances decimal.Decimal
	TotalExpenses  decimal.Decimal
	NetChange      decimal.Decimal
	Count          int
}
