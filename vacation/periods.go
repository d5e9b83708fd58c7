/*
periods.go - Anniversary-year period generation, proration, expiry

PERIOD LIFECYCLE:
  Each seniority year n spans [hire + (n-1) years, hire + n years - 1 day].
  Entitlement for a CLOSED period is fixed once computed; only DaysTaken
  may grow, and it is written back by the external leave-approval flow,
  never by this engine.

EXPIRY:
  Unused days remain claimable for six months after the period ends
  (the Art. 81 grace window). A period past that window with days still
  unused is flagged ExpiredUnused - reported, not auto-forfeited;
  forfeiture is a legal decision outside this engine.
*/
package vacation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
)

// graceMonths is the statutory claim window after a period closes.
const graceMonths = 6

// =============================================================================
// PERIOD - One seniority year
// =============================================================================

type Period struct {
	SeniorityYear   int
	Start           engine.Date
	End             engine.Date
	EntitlementDays int
	DaysTaken       decimal.Decimal
	ExpiresAt       engine.Date
}

// Closed reports whether the anniversary year has fully elapsed.
func (p Period) Closed(asOf engine.Date) bool {
	return asOf.After(p.End)
}

// Remaining returns entitlement minus days taken, floored at zero.
func (p Period) Remaining() decimal.Decimal {
	r := decimal.NewFromInt(int64(p.EntitlementDays)).Sub(p.DaysTaken)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ExpiredUnused reports whether the claim window has passed with days
// still unused.
func (p Period) ExpiredUnused(asOf engine.Date) bool {
	return asOf.After(p.ExpiresAt) && p.Remaining().IsPositive()
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	Table EntitlementTable
}

func NewEngine(table EntitlementTable) *Engine {
	return &Engine{Table: table}
}

// EntitlementForYear returns the statutory days for seniority year n.
func (e *Engine) EntitlementForYear(n int) int {
	return e.Table.DaysForYear(n)
}

// GeneratePeriods lazily builds every completed or in-progress seniority
// year between hire and asOf. Entitlement is the table days plus the
// plan's extra days; DaysTaken starts at zero (the caller merges stored
// values with WithTaken). GeneratePeriods(hire, hire) yields the single
// just-started first year.
func (e *Engine) GeneratePeriods(hire, asOf engine.Date, planExtraDays int) ([]Period, error) {
	if hire.IsZero() {
		return nil, &engine.ValidationError{Code: "missing_hire_date", Message: "cannot generate periods without a hire date"}
	}
	if asOf.Before(hire) {
		return nil, &engine.ValidationError{
			Code:    "as_of_before_hire",
			Message: fmt.Sprintf("as-of %s precedes hire %s", asOf, hire),
			Err:     engine.ErrInvalidSpan,
		}
	}
	if planExtraDays < 0 {
		return nil, &engine.ValidationError{Code: "negative_extra_days", Message: fmt.Sprintf("%d extra days", planExtraDays)}
	}

	var periods []Period
	for n := 1; ; n++ {
		start := hire.AddYears(n - 1)
		if start.After(asOf) {
			break
		}
		end := hire.AddYears(n).AddDays(-1)
		periods = append(periods, Period{
			SeniorityYear:   n,
			Start:           start,
			End:             end,
			EntitlementDays: e.Table.DaysForYear(n) + planExtraDays,
			DaysTaken:       decimal.Zero,
			ExpiresAt:       end.AddMonths(graceMonths),
		})
	}
	return periods, nil
}

// Prorate returns the fractional entitlement of a still-open period,
// proportional to elapsed days within the year, rounded to four digits.
// A closed period prorates to its full entitlement.
func (e *Engine) Prorate(p Period, asOf engine.Date) decimal.Decimal {
	full := decimal.NewFromInt(int64(p.EntitlementDays))
	if asOf.After(p.End) {
		return full
	}
	if asOf.Before(p.Start) {
		return decimal.Zero
	}
	elapsed := decimal.NewFromInt(int64(engine.DaysBetween(p.Start, asOf)))
	total := decimal.NewFromInt(int64(engine.DaysBetween(p.Start, p.End) + 1))
	return full.Mul(elapsed).Div(total).Round(4)
}

// WithTaken merges externally stored days-taken values (keyed by seniority
// year) onto generated periods.
func WithTaken(periods []Period, taken map[int]decimal.Decimal) []Period {
	if len(taken) == 0 {
		return periods
	}
	out := make([]Period, len(periods))
	copy(out, periods)
	for i := range out {
		if d, ok := taken[out[i].SeniorityYear]; ok {
			out[i].DaysTaken = d
		}
	}
	return out
}
