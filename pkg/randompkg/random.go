// Package randompkg provides functionality for generating random test data.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max inclusive.
func IntBetween(min, max int64) int64 {
	return min + Intn(int(max-min+1))
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// UserID generates a random identity id.
func UserID() string {
	return uuid.NewString()
}

// MinorAmount generates a random amount in minor units between min and max inclusive.
func MinorAmount(min, max int64) int64 {
	return IntBetween(min, max)
}

// Balance generates a random balance in major units with two decimals between min and max.
func Balance(min, max int64) decimal.Decimal {
	return decimal.New(IntBetween(min*100, max*100), -2)
}

// IntentID generates a random payment intent like id.
func IntentID() string {
	return "pi_" + String(24)
}
