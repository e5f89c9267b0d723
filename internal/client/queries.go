package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
)

// GetAccount fetches one account.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	var resp dto.AccountResponse
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, ""), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// ListAccounts lists accounts in the configured boarding house.
func (c *Client) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	var resp dto.ListAccountsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts", pageQuery(limit, offset), nil, &resp); err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, len(resp.Accounts))
	for i, a := range resp.Accounts {
		accounts[i] = a.ToDomain()
	}
	return accounts, nil
}

// ListEntries fetches the raw entry records of an account and normalizes
// them. One malformed record fails the whole batch.
func (c *Client) ListEntries(ctx context.Context, accountID string, filter ledger.DateFilter) ([]domain.LedgerEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var resp struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, accountPath(accountID, "/entries"), filterQuery(filter), nil, &resp); err != nil {
		return nil, err
	}

	entries, err := ledger.NormalizeAll(resp.Entries)
	if err != nil {
		return nil, fmt.Errorf("entries of account %s: %w", accountID, err)
	}
	return entries, nil
}

// LedgerView builds the report for an account locally. Every entry is
// fetched so that the window opening balance includes what came before it.
func (c *Client) LedgerView(ctx context.Context, accountID string, filter ledger.DateFilter) (*ledger.Report, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	account, err := c.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := c.ListEntries(ctx, accountID, ledger.DateFilter{})
	if err != nil {
		return nil, err
	}

	report, err := ledger.BuildReport(account, entries, filter)
	if err != nil {
		return nil, err
	}
	report.GeneratedAt = time.Now().UTC()
	return report, nil
}

// DownloadLedger streams the server-rendered ledger export into w.
// format is "csv" or "pdf".
func (c *Client) DownloadLedger(ctx context.Context, accountID string, filter ledger.DateFilter, format string, w io.Writer) error {
	switch format {
	case "csv", "pdf":
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return c.do(ctx, http.MethodGet, accountPath(accountID, "/ledger."+format), filterQuery(filter), nil, w)
}

// BalanceResult is the outcome of one account read in FetchBalances.
type BalanceResult struct {
	AccountID string
	Account   *domain.Account
	Err       error
}

// FetchBalances reads several accounts concurrently. Results keep the
// order of ids, and a failed read only affects its own result.
func (c *Client) FetchBalances(ctx context.Context, ids []string) []BalanceResult {
	results := make([]BalanceResult, len(ids))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			account, err := c.GetAccount(ctx, id)
			results[i] = BalanceResult{AccountID: id, Account: account, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// RequestQuery filters ListRequests.
type RequestQuery struct {
	Status domain.RequestStatus
	Kind   domain.RequestKind
	Limit  int
	Offset int
}

// GetRequest fetches one approval request.
func (c *Client) GetRequest(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	var resp dto.ApprovalRequestResponse
	if err := c.do(ctx, http.MethodGet, requestPath(requestID, ""), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// ListRequests lists approval requests.
func (c *Client) ListRequests(ctx context.Context, q RequestQuery) ([]*domain.ApprovalRequest, error) {
	query := pageQuery(q.Limit, q.Offset)
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	if q.Kind != "" {
		query.Set("kind", string(q.Kind))
	}

	var resp dto.ListRequestsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/requests", query, nil, &resp); err != nil {
		return nil, err
	}

	requests := make([]*domain.ApprovalRequest, len(resp.Requests))
	for i, r := range resp.Requests {
		requests[i] = r.ToDomain()
	}
	return requests, nil
}

// Reconciliation asks the backend to reconcile every account.
func (c *Client) Reconciliation(ctx context.Context) (*dto.ReconciliationReportResponse, error) {
	var resp dto.ReconciliationReportResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/ledger/reconciliation", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckConsistency reports whether the backend ledger is consistent.
// An inconsistent ledger comes back as an *APIError with status 409.
func (c *Client) CheckConsistency(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/ledger/consistency", nil, nil, nil)
}

func accountPath(accountID, suffix string) string {
	return "/api/v1/accounts/" + url.PathEscape(accountID) + suffix
}

func requestPath(requestID, suffix string) string {
	return "/api/v1/requests/" + url.PathEscape(requestID) + suffix
}

func pageQuery(limit, offset int) url.Values {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	return query
}

func filterQuery(filter ledger.DateFilter) url.Values {
	query := url.Values{}
	if !filter.Start.IsZero() {
		query.Set("start_date", filter.Start.Format(time.DateOnly))
	}
	if !filter.End.IsZero() {
		query.Set("end_date", filter.End.Format(time.DateOnly))
	}
	return query
}
