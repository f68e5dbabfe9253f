// Package gatewayclient calls the gateway router over HTTP.
package gatewayclient

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/restpkg"
)

// Client is a typed client of the gateway API.
type Client struct {
	rest *restpkg.Client
}

// New returns a gateway client on top of rest.
func New(rest *restpkg.Client) *Client {
	return &Client{rest: rest}
}

type createUserRequest struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// CreateUser asks the gateway to create the balance record of a registered identity.
func (c *Client) CreateUser(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error) {
	var b domain.Balance
	_, err := c.rest.Do(ctx, http.MethodPost, "/gateway/users/create", createUserRequest{ID: id, Balance: balance}, &b)

	return b, err
}
