package domain

import (
	"time"

	"github.com/go-petr/pet-roulette/pkg/errorspkg"
	"github.com/shopspring/decimal"
)

var (
	// ErrDepositNotFound indicates that the payment intent is unknown to the processor.
	ErrDepositNotFound = errorspkg.New(errorspkg.KindNotFound, "Deposit not found")
	// ErrMissingUserID indicates a deposit request without user.
	ErrMissingUserID = errorspkg.New(errorspkg.KindValidation, "User ID is required")
	// ErrInvalidAmount indicates a non positive deposit amount.
	ErrInvalidAmount = errorspkg.New(errorspkg.KindValidation, "Amount must be greater than 0")
	// ErrUnsupportedCurrency indicates a currency the orchestrator does not accept.
	ErrUnsupportedCurrency = errorspkg.New(errorspkg.KindValidation, "Currency is not supported")
)

// Deposit statuses reported to clients.
const (
	DepositPending   = "pending"
	DepositSucceeded = "succeeded"
	DepositFailed    = "failed"
)

// Deposit record states kept in the local deposit ledger.
const (
	StateConfirmed          = "confirmed"
	StateAwaitingSettlement = "awaiting_settlement"
	StateCredited           = "credited"
	StateFailed             = "failed"
	StateNeedsReview        = "needs_review"
)

// Intent statuses reported by the payment processor that the orchestrator cares about.
const (
	IntentSucceeded  = "succeeded"
	IntentProcessing = "processing"
	IntentCanceled   = "canceled"
)

// Intent is a payment intent as seen by the payment adapter.
type Intent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateIntentParams is the input data to create a payment intent.
type CreateIntentParams struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// DepositRequest is the input of a deposit.
type DepositRequest struct {
	UserID         string `json:"userId"`
	Amount         int64  `json:"amount"` // minor units
	Currency       string `json:"currency"`
	IdempotencyKey string `json:"-"`
}

// DepositResult is the funded outcome of a deposit.
type DepositResult struct {
	DepositID       string           `json:"depositId"`
	UserID          string           `json:"userId"`
	Amount          int64            `json:"amount"`
	Currency        string           `json:"currency"`
	Status          string           `json:"status"`
	PaymentIntentID string           `json:"paymentIntentId"`
	UpdatedBalance  *decimal.Decimal `json:"updatedBalance,omitempty"`
}

// DepositStatus is the status of a deposit looked up by payment intent id.
type DepositStatus struct {
	DepositID       string `json:"depositId"`
	UserID          string `json:"userId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// Deposit is a row of the local deposit ledger.
//
// It is written before the balance is credited, so a deposit confirmed by the
// processor but never credited stays visible for reconciliation.
type Deposit struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	UserID          string    `json:"user_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	IntentStatus    string    `json:"intent_status"`
	State           string    `json:"state"`
	Attempts        int32     `json:"attempts"`
	LastError       string    `json:"last_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateDepositStateParams describes a state transition of a deposit.
type UpdateDepositStateParams struct {
	PaymentIntentID string
	State           string
	IntentStatus    string
	LastError       string
	// Attempt counts the transition as a credit attempt.
	Attempt bool
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Credited  int `json:"credited"`
	Failed    int `json:"failed"`
	Review    int `json:"needs_review"`
	StillOpen int `json:"still_open"`
}
