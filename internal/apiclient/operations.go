package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"financial-app/internal/models"
)

// SignIn exchanges email and password for an AuthResult. The returned token is
// not stored; callers persist it explicitly.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var res models.AuthResult
	req := models.SignInRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signin", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SignUp registers a new user. Like SignIn, it does not store the token.
func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TestConnection probes the liveness endpoint. Both a JSON string and a plain
// text body are accepted.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/test", nil, nil)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	return strings.TrimSpace(string(data)), nil
}

// GetAccounts lists the accounts of the authenticated user.
func (c *Client) GetAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.doJSON(ctx, http.MethodGet, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetTransactions lists the ledger entries of the authenticated user.
func (c *Client) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := c.doJSON(ctx, http.MethodGet, "/transactions", nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// TransferMoney forwards req as is. Self-transfers and balance checks are the
// caller's concern, as is re-fetching accounts afterwards.
func (c *Client) TransferMoney(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error) {
	var res models.TransferResult
	if err := c.doJSON(ctx, http.MethodPost, "/transfers", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
