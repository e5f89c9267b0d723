package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
	"github.com/iho/pettycash/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID              string          `json:"id"`
	BoardingHouseID string          `json:"boarding_house_id,omitempty"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	OwnerRef        string          `json:"owner_ref,omitempty"`
	Currency        string          `json:"currency"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	AllowOverdraft  bool            `json:"allow_overdraft"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		BoardingHouseID: a.BoardingHouseID,
		Name:            a.Name,
		Code:            a.Code,
		OwnerRef:        a.OwnerRef,
		Currency:        a.Currency,
		OpeningBalance:  a.OpeningBalance,
		CurrentBalance:  a.CurrentBalance,
		AllowOverdraft:  a.AllowOverdraft,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ToDomain converts the response back into a domain account.
func (a *AccountResponse) ToDomain() *domain.Account {
	return &domain.Account{
		ID:              a.ID,
		BoardingHouseID: a.BoardingHouseID,
		Name:            a.Name,
		Code:            a.Code,
		OwnerRef:        a.OwnerRef,
		Currency:        a.Currency,
		OpeningBalance:  a.OpeningBalance,
		CurrentBalance:  a.CurrentBalance,
		AllowOverdraft:  a.AllowOverdraft,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse renders a ledger entry the way the backend always has:
// issuances carry amount and purpose, expenses carry expense_amount and
// description plus their receipt fields.
type EntryResponse struct {
	ID              string           `json:"id"`
	AccountID       string           `json:"account_id"`
	Type            string           `json:"type"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	ExpenseAmount   *decimal.Decimal `json:"expense_amount,omitempty"`
	TransactionDate time.Time        `json:"transaction_date"`
	Purpose         string           `json:"purpose,omitempty"`
	Description     string           `json:"description,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	ReceiptNumber   string           `json:"receipt_number,omitempty"`
	Category        string           `json:"category,omitempty"`
	Vendor          string           `json:"vendor,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	amount := e.Amount
	resp := &EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		Type:            string(e.Type),
		TransactionDate: e.TransactionDate,
		Notes:           e.Notes,
		Status:          string(e.Status),
		CreatedAt:       e.CreatedAt,
	}

	if e.Type == domain.EntryTypeExpense {
		resp.ExpenseAmount = &amount
		resp.Description = e.Description
		resp.ReceiptNumber = e.ReceiptNumber
		resp.Category = e.Category
		resp.Vendor = e.Vendor
		if e.ReferenceNumber != e.ReceiptNumber {
			resp.ReferenceNumber = e.ReferenceNumber
		}
		return resp
	}

	resp.Amount = &amount
	resp.Purpose = e.Description
	resp.ReferenceNumber = e.ReferenceNumber
	return resp
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i := range entries {
		result[i] = EntryFromDomain(&entries[i])
	}
	return result
}

// ListEntriesResponse represents a list of entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// BalanceResponse represents an account balance at a point in time.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	At        time.Time       `json:"at"`
}

// CashResultResponse is the authoritative outcome of a cash movement.
type CashResultResponse struct {
	Account *AccountResponse `json:"account"`
	Entry   *EntryResponse   `json:"entry"`
}

// CashResultFromUseCase converts a use case result to response.
func CashResultFromUseCase(r *usecase.CashResult) *CashResultResponse {
	return &CashResultResponse{
		Account: AccountFromDomain(r.Account),
		Entry:   EntryFromDomain(r.Entry),
	}
}

// RowResponse is one ledger row with the balance right after it.
type RowResponse struct {
	Entry          *EntryResponse  `json:"entry"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// SummaryResponse aggregates the rows of a report.
type SummaryResponse struct {
	TotalIssuances decimal.Decimal `json:"total_issuances"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetChange      decimal.Decimal `json:"net_change"`
	Count          int             `json:"count"`
}

// ReportResponse is a display-ready ledger.
type ReportResponse struct {
	Account        *AccountResponse `json:"account"`
	StartDate      string           `json:"start_date,omitempty"`
	EndDate        string           `json:"end_date,omitempty"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	Rows           []*RowResponse   `json:"rows"`
	Summary        SummaryResponse  `json:"summary"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// ReportFromLedger converts a ledger report to response.
func ReportFromLedger(r *ledger.Report) *ReportResponse {
	rows := make([]*RowResponse, len(r.Rows))
	for i := range r.Rows {
		rows[i] = &RowResponse{
			Entry:          EntryFromDomain(&r.Rows[i].Entry),
			RunningBalance: r.Rows[i].RunningBalance,
		}
	}

	return &ReportResponse{
		Account:        AccountFromDomain(&r.Account),
		StartDate:      formatDay(r.Filter.Start),
		EndDate:        formatDay(r.Filter.End),
		OpeningBalance: r.OpeningBalance,
		ClosingBalance: r.ClosingBalance,
		Rows:           rows,
		Summary: SummaryResponse{
			TotalIssuances: r.Summary.TotalIssuances,
			TotalExpenses:  r.Summary.TotalExpenses,
			NetChange:      r.Summary.NetChange,
			Count:          r.Summary.Count,
		},
		GeneratedAt: r.GeneratedAt,
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// LineItemResponse is one category line of a request.
type LineItemResponse struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ApprovalRequestResponse represents a request in API responses.
type ApprovalRequestResponse struct {
	ID               string             `json:"id"`
	BoardingHouseID  string             `json:"boarding_house_id,omitempty"`
	Kind             string             `json:"kind"`
	Title            string             `json:"title"`
	Period           string             `json:"period,omitempty"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	Status           string             `json:"status"`
	SubmittedBy      string             `json:"submitted_by"`
	SubmittedAt      time.Time          `json:"submitted_at"`
	ApprovedBy       string             `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time         `json:"approved_at,omitempty"`
	RejectedBy       string             `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time         `json:"rejected_at,omitempty"`
	RejectionReason  string             `json:"rejection_reason,omitempty"`
	FundingAccountID string             `json:"funding_account_id,omitempty"`
	ConfirmedAt      *time.Time         `json:"confirmed_at,omitempty"`
	ExpenseEntryID   string             `json:"expense_entry_id,omitempty"`
	LineItems        []LineItemResponse `json:"line_items"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// RequestFromDomain converts domain request to response.
func RequestFromDomain(r *domain.ApprovalRequest) *ApprovalRequestResponse {
	items := make([]LineItemResponse, len(r.LineItems))
	for i, item := range r.LineItems {
		items[i] = LineItemResponse{Name: item.Name, Amount: item.Amount, Description: item.Description}
	}

	return &ApprovalRequestResponse{
		ID:               r.ID,
		BoardingHouseID:  r.BoardingHouseID,
		Kind:             string(r.Kind),
		Title:            r.Title,
		Period:           r.Period,
		TotalAmount:      r.TotalAmount,
		Status:           string(r.Status),
		SubmittedBy:      r.SubmittedBy,
		SubmittedAt:      r.SubmittedAt,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		RejectedBy:       r.RejectedBy,
		RejectedAt:       r.RejectedAt,
		RejectionReason:  r.RejectionReason,
		FundingAccountID: r.FundingAccountID,
		ConfirmedAt:      r.ConfirmedAt,
		ExpenseEntryID:   r.ExpenseEntryID,
		LineItems:        items,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToDomain converts the response back into a domain request.
func (r *ApprovalRequestResponse) ToDomain() *domain.ApprovalRequest {
	items := make([]domain.LineItem, len(r.LineItems))
	for i, item := range r.LineItems {
		items[i] = domain.LineItem{Name: item.Name, Amount: item.Amount, Description: item.Description}
	}

	return &domain.ApprovalRequest{
		ID:               r.ID,
		BoardingHouseID:  r.BoardingHouseID,
		Kind:             domain.RequestKind(r.Kind),
		Title:            r.Title,
		Period:           r.Period,
		TotalAmount:      r.TotalAmount,
		Status:           domain.RequestStatus(r.Status),
		SubmittedBy:      r.SubmittedBy,
		SubmittedAt:      r.SubmittedAt,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		RejectedBy:       r.RejectedBy,
		RejectedAt:       r.RejectedAt,
		RejectionReason:  r.RejectionReason,
		FundingAccountID: r.FundingAccountID,
		ConfirmedAt:      r.ConfirmedAt,
		ExpenseEntryID:   r.ExpenseEntryID,
		LineItems:        items,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// RequestsFromDomain converts domain requests to responses.
func RequestsFromDomain(requests []*domain.ApprovalRequest) []*ApprovalRequestResponse {
	result := make([]*ApprovalRequestResponse, len(requests))
	for i, r := range requests {
		result[i] = RequestFromDomain(r)
	}
	return result
}

// ListRequestsResponse represents a list of requests.
type ListRequestsResponse struct {
	Requests []*ApprovalRequestResponse `json:"requests"`
	Total    int64                      `json:"total"`
}

// ConfirmResponse is the outcome of realizing an expenditure.
type ConfirmResponse struct {
	Request *ApprovalRequestResponse `json:"request"`
	Account *AccountResponse         `json:"account"`
	Entry   *EntryResponse           `json:"entry"`
}

// ConfirmFromUseCase converts a use case result to response.
func ConfirmFromUseCase(r *usecase.ConfirmResult) *ConfirmResponse {
	return &ConfirmResponse{
		Request: RequestFromDomain(r.Request),
		Account: AccountFromDomain(r.Account),
		Entry:   EntryFromDomain(r.Entry),
	}
}

// ReconciliationResponse compares stored and recomputed balances.
type ReconciliationResponse struct {
	AccountID       string          `json:"account_id"`
	AccountName     string          `json:"account_name"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Difference      decimal.Decimal `json:"difference"`
	EntryCount      int             `json:"entry_count"`
	Balanced        bool            `json:"balanced"`
	CheckedAt       time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a use case result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:       r.AccountID,
		AccountName:     r.AccountName,
		OpeningBalance:  r.OpeningBalance,
		StoredBalance:   r.StoredBalance,
		ComputedBalance: r.ComputedBalance,
		Difference:      r.Difference,
		EntryCount:      r.EntryCount,
		Balanced:        r.Balanced,
		CheckedAt:       r.CheckedAt,
	}
}

// ReconciliationReportResponse summarizes a ledger-wide reconciliation.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	TotalDifference    decimal.Decimal           `json:"total_difference"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a use case report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		TotalDifference:    r.TotalDifference,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// AuditLogResponse represents an audit log in API responses.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	RequestID    string      `json:"request_id,omitempty"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// InsufficientFundsResponse is the shortfall payload of a refused expense.
// The keys are camelCase because clients read them verbatim.
type InsufficientFundsResponse struct {
	Error          string          `json:"error"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	RequiredAmount decimal.Decimal `json:"requiredAmount"`
	AccountName    string          `json:"accountName"`
}

// InsufficientFundsFromDomain converts the domain error to its payload.
func InsufficientFundsFromDomain(err *domain.InsufficientFundsError) *InsufficientFundsResponse {
	return &InsufficientFundsResponse{
		Error:          "insufficient",
		CurrentBalance: err.CurrentBalance,
		RequiredAmount: err.RequiredAmount,
		AccountName:    err.AccountName,
	}
}

// ToDomain converts the payload back into the domain error.
func (r *InsufficientFundsResponse) ToDomain() *domain.InsufficientFundsError {
	return &domain.InsufficientFundsError{
		CurrentBalance: r.CurrentBalance,
		RequiredAmount: r.RequiredAmount,
		AccountName:    r.AccountName,
	}
}
