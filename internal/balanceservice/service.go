// Package balanceservice manages business logic layer of balance records.
package balanceservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
)

// BalanceRepo provides data access layer interface for balance records.
//
//go:generate mockgen -source service.go -destination service_mock.go -package balanceservice
type BalanceRepo interface {
	Create(ctx context.Context, arg domain.CreateBalanceParams) (domain.Balance, error)
	Get(ctx context.Context, id string) (domain.Balance, error)
	Update(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int32) ([]domain.Balance, error)
}

// EntryRepo provides data access layer interface for balance entries.
type EntryRepo interface {
	ApplyEntry(ctx context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error)
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Entry, error)
}

// Service facilitates balance service layer logic.
//
// It holds no rules beyond existence checks and non negative balances.
type Service struct {
	balances BalanceRepo
	entries  EntryRepo
}

// New returns balance service struct to manage balance bussines logic.
func New(br BalanceRepo, er EntryRepo) *Service {
	return &Service{balances: br, entries: er}
}

// Create creates a balance record. An empty id is replaced by a generated one.
func (s *Service) Create(ctx context.Context, arg domain.CreateBalanceParams) (domain.Balance, error) {
	if arg.Balance.IsNegative() {
		return domain.Balance{}, domain.ErrNegativeBalance
	}

	if arg.ID == "" {
		arg.ID = uuid.NewString()
	}

	return s.balances.Create(ctx, arg)
}

// Get returns the balance record of the given user.
func (s *Service) Get(ctx context.Context, id string) (domain.Balance, error) {
	return s.balances.Get(ctx, id)
}

// Update replaces the balance of the given user.
func (s *Service) Update(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error) {
	if balance.IsNegative() {
		return domain.Balance{}, domain.ErrNegativeBalance
	}

	return s.balances.Update(ctx, id, balance)
}

// Delete removes the balance record of the given user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.balances.Delete(ctx, id)
}

// List returns a page of balance records.
func (s *Service) List(ctx context.Context, pageSize, pageID int32) ([]domain.Balance, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.balances.List(ctx, limit, offset)
}

// ApplyEntry adds a signed amount to the user balance once per reference.
func (s *Service) ApplyEntry(ctx context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error) {
	if arg.Reference == "" {
		return domain.ApplyEntryResult{}, domain.ErrMissingReference
	}

	if arg.Amount.IsZero() {
		return domain.ApplyEntryResult{}, domain.ErrZeroAmount
	}

	return s.entries.ApplyEntry(ctx, arg)
}

// ListEntries returns a page of the entries applied to the user balance.
func (s *Service) ListEntries(ctx context.Context, userID string, pageSize, pageID int32) ([]domain.Entry, error) {
	if _, err := s.balances.Get(ctx, userID); err != nil {
		return nil, err
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.entries.List(ctx, userID, limit, offset)
}
