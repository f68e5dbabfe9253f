// Package balancerepo manages repository layer of balance records.
package balancerepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/dbpkg"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

const (
	pkeyConstraint    = "balances_pkey"
	balanceConstraint = "balances_balance_check"
)

// RepoPGS facilitates balance repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns balance RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

func scan(row interface{ Scan(dest ...any) error }) (domain.Balance, error) {
	var b domain.Balance

	err := row.Scan(
		&b.ID,
		&b.Balance,
		&b.CreatedAt,
		&b.UpdatedAt,
	)

	return b, err
}

func constraintOf(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

const createQuery = `
INSERT INTO 
    balances (id, balance)
VALUES
    ($1, $2)
RETURNING id, balance, created_at, updated_at
`

// Create creates the balance record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateBalanceParams) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	b, err := scan(r.db.QueryRowContext(ctx, createQuery, arg.ID, arg.Balance))
	if err != nil {
		l.Error().Err(err).Str("id", arg.ID).Send()

		switch constraintOf(err) {
		case pkeyConstraint:
			return domain.Balance{}, domain.ErrUserAlreadyExists
		case balanceConstraint:
			return domain.Balance{}, domain.ErrNegativeBalance
		}

		return domain.Balance{}, errorspkg.ErrInternal
	}

	return b, nil
}

const getQuery = `
SELECT 
	id, balance, created_at, updated_at
FROM balances
WHERE id = $1
`

// Get returns the balance record with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	b, err := scan(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Balance{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Str("id", id).Send()

		return domain.Balance{}, errorspkg.ErrInternal
	}

	return b, nil
}

const updateQuery = `
UPDATE balances
SET balance = $2, updated_at = now()
WHERE id = $1
RETURNING id, balance, created_at, updated_at
`

// Update replaces the balance of the record with the given id.
func (r *RepoPGS) Update(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	b, err := scan(r.db.QueryRowContext(ctx, updateQuery, id, balance))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Balance{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Str("id", id).Send()

		if constraintOf(err) == balanceConstraint {
			return domain.Balance{}, domain.ErrNegativeBalance
		}

		return domain.Balance{}, errorspkg.ErrInternal
	}

	return b, nil
}

const addBalanceQuery = `
UPDATE balances
SET balance = balance + $2, updated_at = now()
WHERE id = $1
RETURNING id, balance, created_at, updated_at
`

// AddBalance changes the balance by amount and returns the changed record.
func (r *RepoPGS) AddBalance(ctx context.Context, id string, amount decimal.Decimal) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	b, err := scan(r.db.QueryRowContext(ctx, addBalanceQuery, id, amount))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Balance{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Str("id", id).Send()

		if constraintOf(err) == balanceConstraint {
			return domain.Balance{}, domain.ErrInsufficientBalance
		}

		return domain.Balance{}, errorspkg.ErrInternal
	}

	return b, nil
}

const deleteQuery = `
DELETE FROM balances
WHERE id = $1
`

// Delete removes the balance record with the given id.
func (r *RepoPGS) Delete(ctx context.Context, id string) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Str("id", id).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Str("id", id).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

const listQuery = `
SELECT 
	id, balance, created_at, updated_at
FROM balances
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`

// List returns the specified page of balance records.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Balance{}

	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, b)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
