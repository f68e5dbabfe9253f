// Package domain provides defenitions of all entities.
package domain

import (
	"time"

	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/shopspring/decimal"
)

var (
	// ErrUserNotFound indicates that the balance record of the user is not found.
	ErrUserNotFound = errorspkg.New(errorspkg.KindNotFound, "User not found")
	// ErrUserAlreadyExists indicates that the balance record with the given id already exists.
	ErrUserAlreadyExists = errorspkg.New(errorspkg.KindConflict, "User already exists")
	// ErrNegativeBalance indicates an attempt to store a balance below zero.
	ErrNegativeBalance = errorspkg.New(errorspkg.KindValidation, "Balance must not be negative")
	// ErrInsufficientBalance indicates that applying an entry would take the balance below zero.
	ErrInsufficientBalance = errorspkg.New(errorspkg.KindValidation, "insufficient balance")
	// ErrMissingID indicates that a required identifier is absent.
	ErrMissingID = errorspkg.New(errorspkg.KindValidation, "Missing required field: id")
)

// Balance is the identity to balance record owned by the balance authority.
//
// Balance is kept in major currency units.
type Balance struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateBalanceParams is the input data to create a balance record.
type CreateBalanceParams struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}
