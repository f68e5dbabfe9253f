// Package test provides shared test helpers.
package test

import (
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/randompkg"
)

// EquateDecimals makes cmp compare decimals by value.
var EquateDecimals = cmp.Comparer(func(x, y decimal.Decimal) bool {
	return x.Equal(y)
})

// RandomBalance returns a random balance record.
func RandomBalance() domain.Balance {
	now := time.Now().Truncate(time.Second).UTC()

	return domain.Balance{
		ID:        randompkg.UserID(),
		Balance:   randompkg.Balance(0, 1000),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RandomIntent returns a random succeeded payment intent for the given user.
func RandomIntent(userID string) domain.Intent {
	return domain.Intent{
		ID:       randompkg.IntentID(),
		Amount:   randompkg.MinorAmount(50, 100_000),
		Currency: "usd",
		Status:   domain.IntentSucceeded,
		Metadata: map[string]string{"userId": userID},
	}
}

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	got, ok := x.(decimal.Decimal)
	return ok && got.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is decimal equal to " + m.want.String()
}

// EqDecimal returns a gomock matcher that compares decimals by value.
func EqDecimal(want decimal.Decimal) gomock.Matcher {
	return decimalMatcher{want: want}
}
