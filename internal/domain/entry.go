package domain

import (
	"time"

	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/shopspring/decimal"
)

var (
	// ErrReferenceMismatch indicates that the entry reference was already used for another change.
	ErrReferenceMismatch = errorspkg.New(errorspkg.KindConflict, "reference already used for a different entry")
	// ErrMissingReference indicates that the entry has no reference.
	ErrMissingReference = errorspkg.New(errorspkg.KindValidation, "Missing required field: reference")
	// ErrZeroAmount indicates an entry that does not change the balance.
	ErrZeroAmount = errorspkg.New(errorspkg.KindValidation, "Amount must not be zero")
)

// Entry holds one applied balance change.
//
// Reference is unique, so a change with the same reference is applied at most once.
type Entry struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"` // can be negative or positive
	CreatedAt time.Time       `json:"created_at"`
}

// ApplyEntryParams is the input data to apply a balance change.
type ApplyEntryParams struct {
	UserID    string          `json:"user_id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

// ApplyEntryResult is the result of applying a balance change.
type ApplyEntryResult struct {
	Balance Balance `json:"balance"`
	Entry   Entry   `json:"entry"`
	// Applied is false when the reference had already been applied before.
	Applied bool `json:"applied"`
}
