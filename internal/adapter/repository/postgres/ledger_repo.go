package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const checkLedgerConsistency = `WITH scoped AS (
	SELECT id, opening_balance, current_balance FROM petty_cash_accounts
	WHERE $1::text = '' OR boarding_house_id = $1
)
SELECT
	COALESCE((SELECT SUM(current_balance) FROM scoped), 0) AS stored,
	COALESCE((SELECT SUM(opening_balance) FROM scoped), 0)
	+ COALESCE((SELECT SUM(CASE WHEN e.type = 'expense' THEN -e.amount ELSE e.amount END)
		FROM ledger_entries e JOIN scoped a ON a.id = e.account_id), 0) AS computed`

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db querier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: pool}
}

// CheckConsistency returns the sum of stored balances and the sum of
// balances recomputed from opening balances and entries. An empty
// boardingHouseID covers every account.
func (r *LedgerRepository) CheckConsistency(ctx context.Context, boardingHouseID string) (stored decimal.Decimal, computed decimal.Decimal, err error) {
	var storedNum, computedNum pgtype.Numeric
	if err := r.db.QueryRow(ctx, checkLedgerConsistency, boardingHouseID).Scan(&storedNum, &computedNum); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(storedNum), numericToDecimal(computedNum), nil
}
