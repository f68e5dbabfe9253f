package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProvisionTask is a balance record that still has to be created for a registered identity.
type ProvisionTask struct {
	ID         string          `json:"id"`
	Balance    decimal.Decimal `json:"balance"`
	Attempts   int             `json:"attempts"`
	LastError  string          `json:"last_error,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// OutboxReport describes the provisioning outbox for audits.
type OutboxReport struct {
	Pending    int64           `json:"pending"`
	InFlight   int64           `json:"in_flight"`
	DeadLetter int64           `json:"dead_letter"`
	Items      []ProvisionTask `json:"items"`
	Dead       []ProvisionTask `json:"dead"`
}

// ProvisionReconcileReport summarizes one pass over the provisioning outbox.
type ProvisionReconcileReport struct {
	Processed   int `json:"processed"`
	Provisioned int `json:"provisioned"`
	Requeued    int `json:"requeued"`
	DeadLetter  int `json:"dead_letter"`
}
