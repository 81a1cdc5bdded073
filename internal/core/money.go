// Package core holds the domain types shared by the ledger, the query engine
// and the credential store.
//
// Monetary values are fixed-point minor units (cents) so that repeated
// additions never accumulate binary floating-point error.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in minor units.
type Money struct {
	Cents int64 `json:"cents"`
}

// ParseAmount converts a user-entered magnitude to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted. Signed input and zero are rejected; the caller derives the sign
// from the transaction type.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents (rounds up)
//	ParseAmount("0")      -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Magnitude only; sign comes from the transaction type
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents.IntPart()}
	if m.IsZero() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// Signed applies the sign implied by the transaction type to a magnitude.
func (m Money) Signed(t TxType) Money {
	c := m.Cents
	if c < 0 {
		c = -c
	}
	if t == Expense {
		c = -c
	}
	return Money{Cents: c}
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String renders the amount as a plain decimal, e.g. "-64.14".
func (m Money) String() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
