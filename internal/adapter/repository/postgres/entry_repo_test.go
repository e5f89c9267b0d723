package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
)

func TestEntryRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)
	now := time.Now().UTC()

	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_entries")).
		WithArgs("ent-1", "acc-1", "expense", pgxmock.AnyArg(), now, "Gas", "R-9", "", "approved", "fuel", "Total", "R-9", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := newEntryRepository(mockPool)
	err := repo.Create(context.Background(), tx, &domain.LedgerEntry{
		ID:              "ent-1",
		AccountID:       "acc-1",
		Type:            domain.EntryTypeExpense,
		Amount:          decimal.RequireFromString("30.50"),
		TransactionDate: now,
		Description:     "Gas",
		ReferenceNumber: "R-9",
		Status:          domain.EntryStatusApproved,
		Category:        "fuel",
		Vendor:          "Total",
		ReceiptNumber:   "R-9",
		CreatedAt:       now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryListByAccount(t *testing.T) {
	mockPool := newMockPool(t)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	jan3 := jan2.AddDate(0, 0, 1)

	rows := pgxmock.NewRows([]string{
		"id", "account_id", "type", "amount", "transaction_date", "description",
		"reference_number", "notes", "status", "category", "vendor", "receipt_number", "created_at",
	}).
		AddRow("ent-1", "acc-1", "issuance", numeric("50"), jan2, "Float", "", "", "issued", "", "", "", jan2).
		AddRow("ent-2", "acc-1", "expense", numeric("30.50"), jan3, "Gas", "R-9", "", "approved", "fuel", "", "R-9", jan3)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM ledger_entries")).
		WithArgs("acc-1").
		WillReturnRows(rows)

	repo := newEntryRepository(mockPool)
	entries, err := repo.ListByAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != domain.EntryTypeIssuance || entries[0].Status != domain.EntryStatusIssued {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if !entries[1].Delta().Equal(decimal.RequireFromString("-30.5")) {
		t.Fatalf("expected delta -30.50, got %s", entries[1].Delta())
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepositoryNetChangeUntil(t *testing.T) {
	mockPool := newMockPool(t)
	at := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta("transaction_date <= $2")).
		WithArgs("acc-1", at).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(numeric("19.50")))

	repo := newEntryRepository(mockPool)
	total, err := repo.NetChangeUntil(context.Background(), "acc-1", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("19.5")) {
		t.Fatalf("expected 19.50, got %s", total)
	}

	assertExpectations(t, mockPool)
}
