package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerEntry_Delta(t *testing.T) {
	issuance := &LedgerEntry{Type: EntryTypeIssuance, Amount: decimal.NewFromInt(25)}
	expense := &LedgerEntry{Type: EntryTypeExpense, Amount: decimal.NewFromInt(10)}

	if !issuance.Delta().Equal(decimal.NewFromInt(25)) {
		t.Errorf("issuance delta = %s, want 25", issuance.Delta())
	}
	if !expense.Delta().Equal(decimal.NewFromInt(-10)) {
		t.Errorf("expense delta = %s, want -10", expense.Delta())
	}
}

func TestLedgerEntry_Validate(t *testing.T) {
	tests := []struct {
		name      string
		entry     LedgerEntry
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid issuance",
			entry: LedgerEntry{Type: EntryTypeIssuance, Amount: decimal.NewFromInt(1)},
		},
		{
			name:      "zero issuance",
			entry:     LedgerEntry{Type: EntryTypeIssuance, Amount: decimal.Zero},
			wantErr:   true,
			wantField: "amount",
		},
		{
			name:      "negative expense",
			entry:     LedgerEntry{Type: EntryTypeExpense, Amount: decimal.NewFromInt(-5)},
			wantErr:   true,
			wantField: "expense_amount",
		},
		{
			name:      "unknown type",
			entry:     LedgerEntry{Type: "refund", Amount: decimal.NewFromInt(5)},
			wantErr:   true,
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", verr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}
