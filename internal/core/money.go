// Package core holds the domain types and the pure computations that turn
// the transaction/goal log into the aggregates the interface displays.
//
// This file contains the money representation and amount parsing. Amounts
// are carried as integer cents so totals stay exact; parsing is tolerant
// of pt-BR styled input and never fails.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a monetary amount in cents.
type Money struct {
	Cents int64
}

// FromFloat converts a decimal amount to Money with half-up rounding on
// the third decimal place.
func FromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Float returns the decimal value. Use cents for arithmetic; this is for
// display and serialization only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// MarshalJSON encodes the amount as a plain JSON number ("12.5", "1234.56").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts any JSON number and rounds it to cents.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		m.Cents = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("parse amount %q: not a finite number", s)
	}
	m.Cents = int64(math.Round(f * 100))
	return nil
}

// ParseAmount converts free-form, pt-BR styled numeric text into Money.
// Dots are treated as thousands separators and stripped before commas are
// promoted to decimal points, so dot-decimal input like "12.34" reads as
// 1234. That ordering matches the input convention of the forms feeding
// this function and is kept on purpose.
//
// ParseAmount never fails: anything unparseable degrades to zero, and the
// producing form treats a non-positive amount as incomplete input.
//
// Examples:
//
//	ParseAmount("12,50")    -> 12.50
//	ParseAmount("1.234,56") -> 1234.56
//	ParseAmount("abc")      -> 0
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}
	}
	return Money{Cents: int64(math.Round(f * 100))}
}
