package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/usecase"
)

const approvalColumns = `id, boarding_house_id, kind, title, period, total_amount, status,
	submitted_by, submitted_at, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	funding_account_id, confirmed_at, expense_entry_id, line_items, created_at, updated_at`

const (
	createApproval = `INSERT INTO approval_requests (` + approvalColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	getApprovalByID = `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id = $1`

	getApprovalByIDForUpdate = getApprovalByID + ` FOR UPDATE`

	updateApproval = `UPDATE approval_requests SET
		status = $2, approved_by = $3, approved_at = $4, rejected_by = $5, rejected_at = $6,
		rejection_reason = $7, confirmed_at = $8, expense_entry_id = $9, updated_at = $10
	WHERE id = $1`
)

// lineItemRecord is the jsonb shape of a line item.
type lineItemRecord struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ApprovalRepository implements usecase.ApprovalRepository.
type ApprovalRepository struct {
	db querier
}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(pool *pgxpool.Pool) *ApprovalRepository {
	return newApprovalRepository(pool)
}

func newApprovalRepository(db querier) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Create inserts a request within tx.
func (r *ApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.ApprovalRequest) error {
	items, err := marshalLineItems(req.LineItems)
	if err != nil {
		return err
	}

	_, err = txQuerier(tx).Exec(ctx, createApproval,
		req.ID,
		req.BoardingHouseID,
		string(req.Kind),
		req.Title,
		req.Period,
		decimalToNumeric(req.TotalAmount),
		string(req.Status),
		req.SubmittedBy,
		req.SubmittedAt,
		req.ApprovedBy,
		ptrToTimestamptz(req.ApprovedAt),
		req.RejectedBy,
		ptrToTimestamptz(req.RejectedAt),
		req.RejectionReason,
		req.FundingAccountID,
		ptrToTimestamptz(req.ConfirmedAt),
		req.ExpenseEntryID,
		items,
		req.CreatedAt,
		req.UpdatedAt,
	)

	return err
}

// GetByID retrieves a request by ID.
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return scanApproval(r.db.QueryRow(ctx, getApprovalByID, id))
}

// GetByIDForUpdate retrieves a request by ID with a FOR UPDATE lock.
func (r *ApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ApprovalRequest, error) {
	return scanApproval(txQuerier(tx).QueryRow(ctx, getApprovalByIDForUpdate, id))
}

// Update stores the decision and confirmation fields of a request.
func (r *ApprovalRepository) Update(ctx context.Context, tx usecase.Transaction, req *domain.ApprovalRequest) error {
	tag, err := txQuerier(tx).Exec(ctx, updateApproval,
		req.ID,
		string(req.Status),
		req.ApprovedBy,
		ptrToTimestamptz(req.ApprovedAt),
		req.RejectedBy,
		ptrToTimestamptz(req.RejectedAt),
		req.RejectionReason,
		ptrToTimestamptz(req.ConfirmedAt),
		req.ExpenseEntryID,
		req.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}

	return nil
}

// List retrieves requests matching filter, newest first.
func (r *ApprovalRepository) List(ctx context.Context, filter usecase.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE 1=1`
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += clause + strconv.Itoa(len(args))
	}

	if filter.BoardingHouseID != "" {
		addArg(` AND boarding_house_id = $`, filter.BoardingHouseID)
	}
	if filter.Status != "" {
		addArg(` AND status = $`, string(filter.Status))
	}
	if filter.Kind != "" {
		addArg(` AND kind = $`, string(filter.Kind))
	}

	query += ` ORDER BY submitted_at DESC, id`

	if filter.Limit > 0 {
		addArg(` LIMIT $`, filter.Limit)
	}
	if filter.Offset > 0 {
		addArg(` OFFSET $`, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.ApprovalRequest
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func scanApproval(row pgx.Row) (*domain.ApprovalRequest, error) {
	var (
		req                               domain.ApprovalRequest
		kind, status                      string
		total                             pgtype.Numeric
		approvedAt, rejectedAt, confirmed pgtype.Timestamptz
		items                             []byte
	)

	err := row.Scan(
		&req.ID,
		&req.BoardingHouseID,
		&kind,
		&req.Title,
		&req.Period,
		&total,
		&status,
		&req.SubmittedBy,
		&req.SubmittedAt,
		&req.ApprovedBy,
		&approvedAt,
		&req.RejectedBy,
		&rejectedAt,
		&req.RejectionReason,
		&req.FundingAccountID,
		&confirmed,
		&req.ExpenseEntryID,
		&items,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}

		return nil, err
	}

	req.Kind = domain.RequestKind(kind)
	req.Status = domain.RequestStatus(status)
	req.TotalAmount = numericToDecimal(total)
	req.ApprovedAt = timestamptzToPtr(approvedAt)
	req.RejectedAt = timestamptzToPtr(rejectedAt)
	req.ConfirmedAt = timestamptzToPtr(confirmed)

	req.LineItems, err = unmarshalLineItems(items)
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func marshalLineItems(items []domain.LineItem) ([]byte, error) {
	records := make([]lineItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, lineItemRecord{
			Name:        item.Name,
			Amount:      item.Amount.String(),
			Description: item.Description,
		})
	}

	return json.Marshal(records)
}

func unmarshalLineItems(data []byte) ([]domain.LineItem, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var records []lineItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(records))
	for _, rec := range records {
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.LineItem{Name: rec.Name, Amount: amount, Description: rec.Description})
	}

	return items, nil
}
