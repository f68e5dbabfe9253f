// Package balanceclient calls the balance authority over HTTP.
package balanceclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/restpkg"
)

// Client is a typed client of the balance authority API.
type Client struct {
	rest *restpkg.Client
}

// New returns a balance authority client on top of rest.
func New(rest *restpkg.Client) *Client {
	return &Client{rest: rest}
}

func userPath(id string) string {
	return "/api/users/" + url.PathEscape(id)
}

type createRequest struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// Create creates the balance record of the given user.
func (c *Client) Create(ctx context.Context, arg domain.CreateBalanceParams) (domain.Balance, error) {
	var b domain.Balance
	_, err := c.rest.Do(ctx, http.MethodPost, "/api/users", createRequest{ID: arg.ID, Balance: arg.Balance}, &b)

	return b, err
}

// Get returns the balance record of the given user.
func (c *Client) Get(ctx context.Context, id string) (domain.Balance, error) {
	var b domain.Balance
	_, err := c.rest.Do(ctx, http.MethodGet, userPath(id), nil, &b)

	return b, err
}

type updateRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// Update replaces the balance of the given user.
func (c *Client) Update(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error) {
	var b domain.Balance
	_, err := c.rest.Do(ctx, http.MethodPut, userPath(id), updateRequest{Balance: balance}, &b)

	return b, err
}

type entryRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

// ApplyEntry adds a signed amount to the user balance once per reference.
func (c *Client) ApplyEntry(ctx context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error) {
	var res domain.ApplyEntryResult
	_, err := c.rest.Do(ctx, http.MethodPost, userPath(arg.UserID)+"/entries",
		entryRequest{Reference: arg.Reference, Amount: arg.Amount}, &res)

	return res, err
}
