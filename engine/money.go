/*
Package engine provides the shared primitives for the payroll engine.

PURPOSE:
  This package contains the types every calculator in the system speaks:
  fixed-point money, day-granularity dates, pay periods, incidences, and
  the error taxonomy. The tax, contribution, vacation, benefits, severance
  and period-processing packages all build on these.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A fixed-point monetary amount (MXN in practice, but the type
    carries no currency - the engine never mixes currencies)
  - Rate: decimal.Decimal used directly for marginal rates and premiums

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere; float64 never touches a
     monetary path. Statutory tables carry 2-4 fraction digits and
     rounding errors compound across a payroll run.
  2. Immutability: Money values are passed by value and never mutated.
  3. Determinism: the same inputs always produce the same decimal digits,
     which is what makes payroll reruns bit-identical.

USAGE:
  salary := engine.NewMoney(500)           // 500.00 daily salary
  gross := salary.MulInt(15)               // 7500.00
  rate := engine.MustParseDecimal("0.25")  // vacation premium rate
  premium := gross.Mul(rate)

SEE ALSO:
  - date.go: Date and DateSpan
  - errors.go: the engine error taxonomy
*/
package engine

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point monetary amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

// MustParseMoney parses a decimal string ("746.04") and panics on invalid
// input. For compile-time constants only; runtime input goes through
// decimal.NewFromString and an error return.
func MustParseMoney(s string) Money {
	return Money{Value: MustParseDecimal(s)}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("engine: invalid decimal literal " + strconv.Quote(s))
	}
	return d
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

// Arithmetic
func (m Money) Add(o Money) Money              { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money              { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) MulInt(n int) Money             { return Money{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) Div(s decimal.Decimal) Money    { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }

// Comparison
func (m Money) IsNegative() bool          { return m.Value.IsNegative() }
func (m Money) IsZero() bool              { return m.Value.IsZero() }
func (m Money) IsPositive() bool          { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool  { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool     { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool        { return m.Value.Equal(o.Value) }
func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// Round2 rounds to centavos, half away from zero. Applied once at the edge
// of each published figure, never on intermediate terms.
func (m Money) Round2() Money { return Money{Value: m.Value.Round(2)} }

// Round4 is used for intermediate statutory factors (integration factor,
// prorated day counts) which the tables publish with 4 fraction digits.
func (m Money) Round4() Money { return Money{Value: m.Value.Round(4)} }

func (m Money) String() string { return m.Value.StringFixed(2) }

// MarshalJSON renders the exact decimal as a JSON string, so persisted
// figures survive a round trip without float drift.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Value.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Value = d
	return nil
}
