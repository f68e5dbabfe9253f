package balanceservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/internal/test"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

func TestCreate(t *testing.T) {
	record := test.RandomBalance()

	testCases := []struct {
		name       string
		arg        domain.CreateBalanceParams
		buildStubs func(repo *MockBalanceRepo)
		wantError  error
	}{
		{
			name: "CallerSuppliedID",
			arg:  domain.CreateBalanceParams{ID: record.ID, Balance: record.Balance},
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(domain.CreateBalanceParams{ID: record.ID, Balance: record.Balance})).
					Times(1).
					Return(record, nil)
			},
		},
		{
			name: "GeneratedID",
			arg:  domain.CreateBalanceParams{},
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.CreateBalanceParams) (domain.Balance, error) {
						if _, err := uuid.Parse(arg.ID); err != nil {
							return domain.Balance{}, err
						}

						return domain.Balance{ID: arg.ID, Balance: arg.Balance}, nil
					})
			},
		},
		{
			name: "NegativeBalance",
			arg:  domain.CreateBalanceParams{ID: record.ID, Balance: decimal.NewFromInt(-1)},
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrNegativeBalance,
		},
		{
			name: "Conflict",
			arg:  domain.CreateBalanceParams{ID: record.ID},
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Balance{}, domain.ErrUserAlreadyExists)
			},
			wantError: domain.ErrUserAlreadyExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			balances := NewMockBalanceRepo(ctrl)
			entries := NewMockEntryRepo(ctrl)
			tc.buildStubs(balances)

			service := New(balances, entries)

			got, err := service.Create(context.Background(), tc.arg)
			require.ErrorIs(t, err, tc.wantError)

			if tc.wantError == nil {
				require.NotEmpty(t, got.ID)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	record := test.RandomBalance()

	testCases := []struct {
		name       string
		balance    decimal.Decimal
		buildStubs func(repo *MockBalanceRepo)
		wantError  error
	}{
		{
			name:    "OK",
			balance: record.Balance,
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().
					Update(gomock.Any(), gomock.Eq(record.ID), gomock.Eq(record.Balance)).
					Times(1).
					Return(record, nil)
			},
		},
		{
			name:    "Negative",
			balance: decimal.RequireFromString("-0.01"),
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrNegativeBalance,
		},
		{
			name:    "NotFound",
			balance: record.Balance,
			buildStubs: func(repo *MockBalanceRepo) {
				repo.EXPECT().
					Update(gomock.Any(), gomock.Eq(record.ID), gomock.Any()).
					Times(1).
					Return(domain.Balance{}, domain.ErrUserNotFound)
			},
			wantError: domain.ErrUserNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			balances := NewMockBalanceRepo(ctrl)
			tc.buildStubs(balances)

			service := New(balances, NewMockEntryRepo(ctrl))

			_, err := service.Update(context.Background(), record.ID, tc.balance)
			require.ErrorIs(t, err, tc.wantError)
		})
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	balances := NewMockBalanceRepo(ctrl)
	balances.EXPECT().
		List(gomock.Any(), gomock.Eq(int32(5)), gomock.Eq(int32(10))).
		Times(1).
		Return([]domain.Balance{}, nil)

	service := New(balances, NewMockEntryRepo(ctrl))

	_, err := service.List(context.Background(), 5, 3)
	require.NoError(t, err)
}

func TestApplyEntry(t *testing.T) {
	record := test.RandomBalance()
	amount := decimal.RequireFromString("5.00")

	testCases := []struct {
		name       string
		arg        domain.ApplyEntryParams
		buildStubs func(repo *MockEntryRepo)
		wantError  error
		wantKind   errorspkg.Kind
	}{
		{
			name: "OK",
			arg:  domain.ApplyEntryParams{UserID: record.ID, Reference: "pi_1", Amount: amount},
			buildStubs: func(repo *MockEntryRepo) {
				repo.EXPECT().
					ApplyEntry(gomock.Any(), gomock.Eq(domain.ApplyEntryParams{UserID: record.ID, Reference: "pi_1", Amount: amount})).
					Times(1).
					Return(domain.ApplyEntryResult{Balance: record, Applied: true}, nil)
			},
		},
		{
			name: "MissingReference",
			arg:  domain.ApplyEntryParams{UserID: record.ID, Amount: amount},
			buildStubs: func(repo *MockEntryRepo) {
				repo.EXPECT().ApplyEntry(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrMissingReference,
			wantKind:  errorspkg.KindValidation,
		},
		{
			name: "ZeroAmount",
			arg:  domain.ApplyEntryParams{UserID: record.ID, Reference: "pi_1"},
			buildStubs: func(repo *MockEntryRepo) {
				repo.EXPECT().ApplyEntry(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrZeroAmount,
			wantKind:  errorspkg.KindValidation,
		},
		{
			name: "ReferenceMismatch",
			arg:  domain.ApplyEntryParams{UserID: record.ID, Reference: "pi_1", Amount: amount},
			buildStubs: func(repo *MockEntryRepo) {
				repo.EXPECT().
					ApplyEntry(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.ApplyEntryResult{}, domain.ErrReferenceMismatch)
			},
			wantError: domain.ErrReferenceMismatch,
			wantKind:  errorspkg.KindConflict,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			entries := NewMockEntryRepo(ctrl)
			tc.buildStubs(entries)

			service := New(NewMockBalanceRepo(ctrl), entries)

			_, err := service.ApplyEntry(context.Background(), tc.arg)
			require.ErrorIs(t, err, tc.wantError)

			if tc.wantError != nil {
				require.Equal(t, tc.wantKind, errorspkg.KindOf(err))
			}
		})
	}
}

func TestListEntriesUnknownUser(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	balances := NewMockBalanceRepo(ctrl)
	balances.EXPECT().Get(gomock.Any(), gomock.Eq("ghost")).Times(1).Return(domain.Balance{}, domain.ErrUserNotFound)

	entries := NewMockEntryRepo(ctrl)
	entries.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := New(balances, entries).ListEntries(context.Background(), "ghost", 10, 1)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
