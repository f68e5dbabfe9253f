// Package entryrepo manages repository layer of balance entries.
package entryrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-roulette/internal/balancerepo"
	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/dbpkg"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

const userConstraint = "entries_user_id_fkey"

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns entry RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

// NewRepoPGS returns entry RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

func scan(row interface{ Scan(dest ...any) error }) (domain.Entry, error) {
	var e domain.Entry

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Reference,
		&e.Amount,
		&e.CreatedAt,
	)

	return e, err
}

const insertQuery = `
INSERT INTO
    entries (user_id, reference, amount)
VALUES
    ($1, $2, $3)
ON CONFLICT (reference) DO NOTHING
RETURNING id, user_id, reference, amount, created_at
`

// insert stores the entry. It reports false when the reference is already taken.
func (r *RepoPGS) insert(ctx context.Context, arg domain.ApplyEntryParams) (domain.Entry, bool, error) {
	e, err := scan(r.db.QueryRowContext(ctx, insertQuery, arg.UserID, arg.Reference, arg.Amount))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entry{}, false, nil
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == userConstraint {
			return domain.Entry{}, false, domain.ErrUserNotFound
		}

		zerolog.Ctx(ctx).Error().Err(err).Str("reference", arg.Reference).Send()

		return domain.Entry{}, false, errorspkg.ErrInternal
	}

	return e, true, nil
}

const getByReferenceQuery = `
SELECT id, user_id, reference, amount, created_at FROM entries
WHERE reference = $1
`

// GetByReference returns the entry applied under the given reference.
func (r *RepoPGS) GetByReference(ctx context.Context, reference string) (domain.Entry, error) {
	e, err := scan(r.db.QueryRowContext(ctx, getByReferenceQuery, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entry{}, errorspkg.New(errorspkg.KindNotFound, "entry not found")
		}

		zerolog.Ctx(ctx).Error().Err(err).Str("reference", reference).Send()

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

// ApplyEntry changes the user balance by the entry amount at most once per reference.
//
// The entry insert and the balance change run in one transaction. When the
// reference was applied before, nothing changes and the current balance is
// returned with Applied set to false.
func (r *RepoPGS) ApplyEntry(ctx context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error) {
	var result domain.ApplyEntryResult

	err := dbpkg.RunInTx(ctx, r.conn, func(tx *sql.Tx) error {
		entryRepo := NewTxRepoPGS(tx)
		balanceRepo := balancerepo.NewRepoPGS(tx)

		entry, inserted, err := entryRepo.insert(ctx, arg)
		if err != nil {
			return err
		}

		if !inserted {
			existing, err := entryRepo.GetByReference(ctx, arg.Reference)
			if err != nil {
				return err
			}

			if existing.UserID != arg.UserID || !existing.Amount.Equal(arg.Amount) {
				return domain.ErrReferenceMismatch
			}

			result.Entry = existing
			result.Balance, err = balanceRepo.Get(ctx, arg.UserID)

			return err
		}

		result.Entry = entry
		result.Applied = true
		result.Balance, err = balanceRepo.AddBalance(ctx, arg.UserID, arg.Amount)

		return err
	})
	if err != nil {
		if errorspkg.KindOf(err) == errorspkg.KindInternal {
			zerolog.Ctx(ctx).Error().Err(err).Str("reference", arg.Reference).Send()
			return domain.ApplyEntryResult{}, errorspkg.ErrInternal
		}

		return domain.ApplyEntryResult{}, err
	}

	return result, nil
}

const listQuery = `
SELECT id, user_id, reference, amount, created_at FROM entries
WHERE user_id = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the specified number of entries for the given user.
func (r *RepoPGS) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, userID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
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
