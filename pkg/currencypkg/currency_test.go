package currencypkg

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorToMajor(t *testing.T) {
	t.Parallel()

	current := decimal.RequireFromString("10.00")

	got := current.Add(MinorToMajor(2550))
	want := decimal.RequireFromString("35.50")

	if !got.Equal(want) {
		t.Errorf("10.00 + MinorToMajor(2550) = %v, want %v", got, want)
	}

	if got.String() != "35.5" {
		t.Errorf("got.String() = %q, want %q", got.String(), "35.5")
	}
}

func TestRepeatedDepositsDoNotDrift(t *testing.T) {
	t.Parallel()

	balance := decimal.Zero
	for i := 0; i < 1000; i++ {
		balance = balance.Add(MinorToMajor(10))
	}

	if want := decimal.NewFromInt(100); !balance.Equal(want) {
		t.Errorf("1000 deposits of 10 cents = %v, want %v", balance, want)
	}
}

func TestMajorToMinor(t *testing.T) {
	t.Parallel()

	if got := MajorToMinor(decimal.RequireFromString("35.50")); got != 3550 {
		t.Errorf("MajorToMinor(35.50) = %v, want 3550", got)
	}
}

func TestIsSupportedCurrency(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"usd", "USD", " eur "} {
		if !IsSupportedCurrency(c) {
			t.Errorf("IsSupportedCurrency(%q) = false, want true", c)
		}
	}

	for _, c := range []string{"", "rub", "jpy"} {
		if IsSupportedCurrency(c) {
			t.Errorf("IsSupportedCurrency(%q) = true, want false", c)
		}
	}
}
