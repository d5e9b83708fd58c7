/*
Package benefits implements the annual bonus and vacation premium.

PURPOSE:
  Computes the aguinaldo (annual bonus) - full or prorated - and the
  vacation premium, under a benefit plan that may exceed the statutory
  floor but is rejected below it.

LEGAL FLOORS:
  Aguinaldo: 15 days of salary. Vacation premium: 25% of vacation pay.
  A plan under either floor is a configuration someone typed wrong, not a
  policy choice; NewPlan refuses it before any amount is computed.

PRORATION:
  days_counted = plan_days * worked_days / 365, capped at plan_days.
  Worked days count from the later of the hire date and January 1st of the
  as-of year. At a December 31st run for an employee hired in a prior year
  the count reaches 365 and the bonus is full; any shorter stretch - a new
  hire or a mid-year settlement - prorates.
*/
package benefits

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
)

// =============================================================================
// PLAN - Employer benefit plan, validated against the legal floor
// =============================================================================

const LegalMinAguinaldoDays = 15

var (
	LegalMinVacationPremium = engine.MustParseDecimal("0.25")
	daysPerYear             = decimal.NewFromInt(365)
)

type Plan struct {
	AguinaldoDays       int
	VacationPremiumRate decimal.Decimal
	ExtraVacationDays   int
}

// NewPlan validates a plan against the statutory minimums.
func NewPlan(aguinaldoDays int, premiumRate decimal.Decimal, extraVacationDays int) (Plan, error) {
	if aguinaldoDays < LegalMinAguinaldoDays {
		return Plan{}, &engine.ValidationError{
			Code:    "aguinaldo_below_floor",
			Message: fmt.Sprintf("%d days, legal minimum is %d", aguinaldoDays, LegalMinAguinaldoDays),
			Err:     engine.ErrBelowLegalFloor,
		}
	}
	if premiumRate.LessThan(LegalMinVacationPremium) {
		return Plan{}, &engine.ValidationError{
			Code:    "premium_below_floor",
			Message: fmt.Sprintf("rate %s, legal minimum is %s", premiumRate, LegalMinVacationPremium),
			Err:     engine.ErrBelowLegalFloor,
		}
	}
	if extraVacationDays < 0 {
		return Plan{}, &engine.ValidationError{
			Code:    "negative_extra_days",
			Message: fmt.Sprintf("%d extra vacation days", extraVacationDays),
		}
	}
	return Plan{
		AguinaldoDays:       aguinaldoDays,
		VacationPremiumRate: premiumRate,
		ExtraVacationDays:   extraVacationDays,
	}, nil
}

// DefaultPlan is the legal floor: 15 aguinaldo days, 25% premium.
func DefaultPlan() Plan {
	return Plan{
		AguinaldoDays:       LegalMinAguinaldoDays,
		VacationPremiumRate: LegalMinVacationPremium,
	}
}

func (p Plan) Validate() error {
	_, err := NewPlan(p.AguinaldoDays, p.VacationPremiumRate, p.ExtraVacationDays)
	return err
}

// =============================================================================
// ANNUAL BONUS (aguinaldo)
// =============================================================================

type BonusResult struct {
	DaysCounted decimal.Decimal
	Amount      engine.Money
	Prorated    bool
}

// AnnualBonus computes the aguinaldo as of a date: worked days in the
// as-of calendar year scale the plan days, full only when the employee
// covered the entire year.
func AnnualBonus(dailySalary engine.Money, plan Plan, hire, asOf engine.Date) (BonusResult, error) {
	if err := plan.Validate(); err != nil {
		return BonusResult{}, err
	}
	if dailySalary.IsNegative() {
		return BonusResult{}, &engine.ValidationError{
			Code:    "negative_salary",
			Message: fmt.Sprintf("daily salary %s", dailySalary),
			Err:     engine.ErrNegativeSalary,
		}
	}
	if asOf.Before(hire) {
		return BonusResult{}, &engine.ValidationError{
			Code:    "as_of_before_hire",
			Message: fmt.Sprintf("as-of %s precedes hire %s", asOf, hire),
			Err:     engine.ErrInvalidSpan,
		}
	}

	countFrom := engine.StartOfYear(asOf.Year())
	if hire.After(countFrom) {
		countFrom = hire
	}
	worked := decimal.NewFromInt(int64(engine.DaysBetween(countFrom, asOf) + 1))

	planDays := decimal.NewFromInt(int64(plan.AguinaldoDays))
	if worked.GreaterThanOrEqual(daysPerYear) {
		return BonusResult{
			DaysCounted: planDays,
			Amount:      dailySalary.Mul(planDays).Round2(),
			Prorated:    false,
		}, nil
	}

	daysCounted := planDays.Mul(worked).Div(daysPerYear).Round(4)
	return BonusResult{
		DaysCounted: daysCounted,
		Amount:      dailySalary.Mul(daysCounted).Round2(),
		Prorated:    true,
	}, nil
}

// =============================================================================
// VACATION PREMIUM
// =============================================================================

// VacationPremium is daily_salary * vacation_days * premium_rate.
func VacationPremium(dailySalary engine.Money, vacationDays decimal.Decimal, premiumRate decimal.Decimal) engine.Money {
	return dailySalary.Mul(vacationDays).Mul(premiumRate).Round2()
}
