package client

import (
	"context"
	"net/http"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/domain"
)

// Mutations return the backend's answer unchanged. Callers refetch through
// the query methods instead of patching local state.

// CreateAccount opens a petty-cash account.
func (c *Client) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	var resp dto.AccountResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/accounts", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// IssueCash adds cash to an account.
func (c *Client) IssueCash(ctx context.Context, accountID string, req dto.IssueCashRequest) (*dto.CashResultResponse, error) {
	var resp dto.CashResultResponse
	if err := c.do(ctx, http.MethodPost, accountPath(accountID, "/issuances"), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordExpense spends cash from an account. A shortfall comes back as
// *domain.InsufficientFundsError.
func (c *Client) RecordExpense(ctx context.Context, accountID string, req dto.RecordExpenseRequest) (*dto.CashResultResponse, error) {
	var resp dto.CashResultResponse
	if err := c.do(ctx, http.MethodPost, accountPath(accountID, "/expenses"), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitRequest submits a budget or expenditure request.
func (c *Client) SubmitRequest(ctx context.Context, req dto.SubmitRequestRequest) (*domain.ApprovalRequest, error) {
	var resp dto.ApprovalRequestResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/requests", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// ApproveRequest approves a pending request.
func (c *Client) ApproveRequest(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	var resp dto.ApprovalRequestResponse
	if err := c.do(ctx, http.MethodPost, requestPath(requestID, "/approve"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// RejectRequest rejects a pending request.
func (c *Client) RejectRequest(ctx context.Context, requestID, reason string) (*domain.ApprovalRequest, error) {
	var resp dto.ApprovalRequestResponse
	body := dto.RejectRequest{Reason: reason}
	if err := c.do(ctx, http.MethodPost, requestPath(requestID, "/reject"), nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// ConfirmExpenditure turns an approved expenditure into an expense entry.
func (c *Client) ConfirmExpenditure(ctx context.Context, requestID string, req dto.ConfirmRequest) (*dto.ConfirmResponse, error) {
	var resp dto.ConfirmResponse
	if err := c.do(ctx, http.MethodPost, requestPath(requestID, "/confirm"), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
