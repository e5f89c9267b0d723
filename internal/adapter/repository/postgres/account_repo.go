package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

const accountColumns = `id, boarding_house_id, name, code, owner_ref, currency,
	opening_balance, current_balance, allow_overdraft, version, created_at, updated_at`

const (
	createAccount = `INSERT INTO petty_cash_accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	getAccountByID = `SELECT ` + accountColumns + ` FROM petty_cash_accounts WHERE id = $1`

	getAccountByIDForUpdate = getAccountByID + ` FOR UPDATE`

	updateAccountBalance = `UPDATE petty_cash_accounts
	SET current_balance = $2, version = version + 1, updated_at = $3
	WHERE id = $1`

	listAccounts = `SELECT ` + accountColumns + ` FROM petty_cash_accounts
	WHERE ($1::text = '' OR boarding_house_id = $1)
	ORDER BY created_at, id
	LIMIT $2 OFFSET $3`
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account within tx.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	_, err := txQuerier(tx).Exec(ctx, createAccount,
		account.ID,
		account.BoardingHouseID,
		account.Name,
		account.Code,
		account.OwnerRef,
		account.Currency,
		decimalToNumeric(account.OpeningBalance),
		decimalToNumeric(account.CurrentBalance),
		account.AllowOverdraft,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateCode
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, getAccountByID, id))
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return scanAccount(txQuerier(tx).QueryRow(ctx, getAccountByIDForUpdate, id))
}

// UpdateBalance stores the new balance and bumps the version.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, updateAccountBalance, id, decimalToNumeric(balance), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts of a boarding house with pagination. An empty
// boardingHouseID lists every account.
func (r *AccountRepository) List(ctx context.Context, boardingHouseID string, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, listAccounts, boardingHouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account         domain.Account
		opening, amount pgtype.Numeric
	)

	err := row.Scan(
		&account.ID,
		&account.BoardingHouseID,
		&account.Name,
		&account.Code,
		&account.OwnerRef,
		&account.Currency,
		&opening,
		&amount,
		&account.AllowOverdraft,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.OpeningBalance = numericToDecimal(opening)
	account.CurrentBalance = numericToDecimal(amount)

	return &account, nil
}
