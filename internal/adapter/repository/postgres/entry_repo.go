package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

const entryColumns = `id, account_id, type, amount, transaction_date, description,
	reference_number, notes, status, category, vendor, receipt_number, created_at`

const (
	createEntry = `INSERT INTO ledger_entries (` + entryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	listEntriesByAccount = `SELECT ` + entryColumns + ` FROM ledger_entries
	WHERE account_id = $1
	ORDER BY transaction_date, created_at, id`

	netChangeUntil = `SELECT COALESCE(SUM(CASE WHEN type = 'expense' THEN -amount ELSE amount END), 0)
	FROM ledger_entries
	WHERE account_id = $1 AND transaction_date <= $2`
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db querier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db querier) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts an entry within tx.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	_, err := txQuerier(tx).Exec(ctx, createEntry,
		entry.ID,
		entry.AccountID,
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		entry.TransactionDate,
		entry.Description,
		entry.ReferenceNumber,
		entry.Notes,
		string(entry.Status),
		entry.Category,
		entry.Vendor,
		entry.ReceiptNumber,
		entry.CreatedAt,
	)

	return err
}

// ListByAccount returns every entry of an account in ledger order.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, listEntriesByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			entry     domain.LedgerEntry
			entryType string
			status    string
			amount    pgtype.Numeric
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entryType,
			&amount,
			&entry.TransactionDate,
			&entry.Description,
			&entry.ReferenceNumber,
			&entry.Notes,
			&status,
			&entry.Category,
			&entry.Vendor,
			&entry.ReceiptNumber,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Type = domain.EntryType(entryType)
		entry.Status = domain.EntryStatus(status)
		entry.Amount = numericToDecimal(amount)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// NetChangeUntil sums signed deltas of entries dated at or before at.
func (r *EntryRepository) NetChangeUntil(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	if err := r.db.QueryRow(ctx, netChangeUntil, accountID, at).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
