// Package depositrepo manages the local ledger of deposits.
package depositrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/dbpkg"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

// RepoPGS facilitates deposit repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns deposit RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const columns = `payment_intent_id, user_id, amount, currency, intent_status, state, attempts, last_error, created_at, updated_at`

func scan(row interface{ Scan(dest ...any) error }) (domain.Deposit, error) {
	var d domain.Deposit

	err := row.Scan(
		&d.PaymentIntentID,
		&d.UserID,
		&d.Amount,
		&d.Currency,
		&d.IntentStatus,
		&d.State,
		&d.Attempts,
		&d.LastError,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	return d, err
}

const createQuery = `
INSERT INTO
    deposits (payment_intent_id, user_id, amount, currency, intent_status, state)
VALUES
    ($1, $2, $3, $4, $5, $6)
ON CONFLICT (payment_intent_id) DO UPDATE SET intent_status = EXCLUDED.intent_status
RETURNING ` + columns

// Create records the deposit. A known payment intent keeps its state and is returned as is.
func (r *RepoPGS) Create(ctx context.Context, arg domain.Deposit) (domain.Deposit, error) {
	d, err := scan(r.db.QueryRowContext(ctx, createQuery,
		arg.PaymentIntentID,
		arg.UserID,
		arg.Amount,
		arg.Currency,
		arg.IntentStatus,
		arg.State,
	))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("payment_intent_id", arg.PaymentIntentID).Send()
		return domain.Deposit{}, errorspkg.ErrInternal
	}

	return d, nil
}

const getQuery = `SELECT ` + columns + ` FROM deposits WHERE payment_intent_id = $1`

// Get returns the deposit recorded for the payment intent.
func (r *RepoPGS) Get(ctx context.Context, paymentIntentID string) (domain.Deposit, error) {
	d, err := scan(r.db.QueryRowContext(ctx, getQuery, paymentIntentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Deposit{}, domain.ErrDepositNotFound
		}

		zerolog.Ctx(ctx).Error().Err(err).Str("payment_intent_id", paymentIntentID).Send()

		return domain.Deposit{}, errorspkg.ErrInternal
	}

	return d, nil
}

const updateStateQuery = `
UPDATE deposits
SET state = $2,
    intent_status = COALESCE(NULLIF($3, ''), intent_status),
    last_error = $4,
    attempts = attempts + CASE WHEN $5 THEN 1 ELSE 0 END,
    updated_at = now()
WHERE payment_intent_id = $1
RETURNING ` + columns

// UpdateState moves the deposit to a new state.
func (r *RepoPGS) UpdateState(ctx context.Context, arg domain.UpdateDepositStateParams) (domain.Deposit, error) {
	d, err := scan(r.db.QueryRowContext(ctx, updateStateQuery,
		arg.PaymentIntentID,
		arg.State,
		arg.IntentStatus,
		arg.LastError,
		arg.Attempt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Deposit{}, domain.ErrDepositNotFound
		}

		zerolog.Ctx(ctx).Error().Err(err).Str("payment_intent_id", arg.PaymentIntentID).Send()

		return domain.Deposit{}, errorspkg.ErrInternal
	}

	return d, nil
}

const listOpenQuery = `
SELECT ` + columns + ` FROM deposits
WHERE state = ANY($1) AND updated_at < $2
ORDER BY updated_at
LIMIT $3
`

// ListOpen returns deposits in the given states untouched since before.
func (r *RepoPGS) ListOpen(ctx context.Context, states []string, before time.Time, limit int32) ([]domain.Deposit, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listOpenQuery, pq.Array(states), before, limit)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Deposit{}

	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, d)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
