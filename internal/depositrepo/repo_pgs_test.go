package depositrepo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

var columnNames = []string{
	"payment_intent_id", "user_id", "amount", "currency", "intent_status",
	"state", "attempts", "last_error", "created_at", "updated_at",
}

func setup(t *testing.T) (*RepoPGS, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		db.Close()
	})

	return NewRepoPGS(db), mock
}

func row(d domain.Deposit) *sqlmock.Rows {
	return sqlmock.NewRows(columnNames).AddRow(
		d.PaymentIntentID, d.UserID, d.Amount, d.Currency, d.IntentStatus,
		d.State, d.Attempts, d.LastError, d.CreatedAt, d.UpdatedAt,
	)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	deposit := domain.Deposit{
		PaymentIntentID: "pi_1",
		UserID:          "u2",
		Amount:          500,
		Currency:        "usd",
		IntentStatus:    domain.IntentSucceeded,
		State:           domain.StateConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	repo, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(createQuery)).
		WithArgs("pi_1", "u2", int64(500), "usd", domain.IntentSucceeded, domain.StateConfirmed).
		WillReturnRows(row(deposit))

	got, err := repo.Create(context.Background(), deposit)
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	if diff := cmp.Diff(deposit, got); diff != "" {
		t.Errorf("Create() mismatch (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name       string
		buildStubs func(mock sqlmock.Sqlmock)
		wantError  error
	}{
		{
			name: "NotFound",
			buildStubs: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("pi_1").WillReturnError(sql.ErrNoRows)
			},
			wantError: domain.ErrDepositNotFound,
		},
		{
			name: "InternalError",
			buildStubs: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(getQuery)).WithArgs("pi_1").WillReturnError(sql.ErrConnDone)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := setup(t)
			tc.buildStubs(mock)

			if _, err := repo.Get(context.Background(), "pi_1"); !errors.Is(err, tc.wantError) {
				t.Errorf("Get() error = %v, want %v", err, tc.wantError)
			}
		})
	}
}

func TestUpdateState(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)

	repo, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(updateStateQuery)).
		WithArgs("pi_1", domain.StateConfirmed, "", "balance-service timed out", true).
		WillReturnRows(row(domain.Deposit{
			PaymentIntentID: "pi_1",
			State:           domain.StateConfirmed,
			Attempts:        1,
			LastError:       "balance-service timed out",
			CreatedAt:       now,
			UpdatedAt:       now,
		}))

	got, err := repo.UpdateState(context.Background(), domain.UpdateDepositStateParams{
		PaymentIntentID: "pi_1",
		State:           domain.StateConfirmed,
		LastError:       "balance-service timed out",
		Attempt:         true,
	})
	if err != nil {
		t.Fatalf("UpdateState() returned error: %v", err)
	}

	if got.Attempts != 1 {
		t.Errorf("UpdateState() attempts = %d, want 1", got.Attempts)
	}
}

func TestListOpen(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)

	repo, mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(listOpenQuery)).
		WithArgs(sqlmock.AnyArg(), now, int32(10)).
		WillReturnRows(row(domain.Deposit{PaymentIntentID: "pi_1", State: domain.StateConfirmed}))

	got, err := repo.ListOpen(context.Background(), []string{domain.StateConfirmed}, now, 10)
	if err != nil {
		t.Fatalf("ListOpen() returned error: %v", err)
	}

	if len(got) != 1 || got[0].PaymentIntentID != "pi_1" {
		t.Errorf("ListOpen() = %+v", got)
	}
}
