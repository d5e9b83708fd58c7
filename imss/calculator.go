/*
calculator.go - Base-salary integration, cap, and per-category contributions

INTEGRATION:
  The contribution base is not the raw daily salary but the salary scaled
  by an integration factor that folds in statutory benefits:

    factor = (365 + aguinaldo_days + vacation_days * premium_rate) / 365

  The factor is pluggable (IntegrationFactorFunc) because benefit plans
  above the legal floor change it; a snapshot may also carry an explicit
  factor that takes precedence.

SICKNESS/MATERNITY, TWO PARTS:
  fixed  = fixed_rate  * minimum_wage                 * days
  excess = excess_rate * max(base - 3*min_wage, 0)    * days

  Both are computed and summed for each side. The fixed quota is
  denominated on the minimum wage, not the capped base.

EVERY OTHER CATEGORY:
  amount = rate * capped_base * days
*/
package imss

import (
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
)

var (
	daysPerYear = decimal.NewFromInt(365)
	three       = decimal.NewFromInt(3)
)

// =============================================================================
// INTEGRATION
// =============================================================================

// IntegrationFactorFunc derives the factor from a benefit plan's numbers.
type IntegrationFactorFunc func(aguinaldoDays int, vacationDays int, premiumRate decimal.Decimal) decimal.Decimal

// DefaultIntegrationFactor is (365 + bonus + vacation*premium) / 365,
// rounded to four digits the way the statutory factor is published.
func DefaultIntegrationFactor(aguinaldoDays int, vacationDays int, premiumRate decimal.Decimal) decimal.Decimal {
	vacationPart := decimal.NewFromInt(int64(vacationDays)).Mul(premiumRate)
	numerator := daysPerYear.
		Add(decimal.NewFromInt(int64(aguinaldoDays))).
		Add(vacationPart)
	return numerator.Div(daysPerYear).Round(4)
}

// Integrate scales the daily salary into the integrated daily base (SDI).
func Integrate(dailySalary engine.Money, factor decimal.Decimal) engine.Money {
	return dailySalary.Mul(factor)
}

// =============================================================================
// CONTRIBUTIONS - Per-category amounts for one side
// =============================================================================

// Contributions holds one side's amounts with a typed field per category.
type Contributions struct {
	SicknessMaternity engine.Money
	DisabilityLife    engine.Money
	Retirement        engine.Money
	Nursery           engine.Money
	Housing           engine.Money
	OccupationalRisk  engine.Money
}

// Amount returns the contribution for a category.
func (c Contributions) Amount(cat Category) engine.Money {
	switch cat {
	case CategorySicknessMaternity:
		return c.SicknessMaternity
	case CategoryDisabilityLife:
		return c.DisabilityLife
	case CategoryRetirement:
		return c.Retirement
	case CategoryNursery:
		return c.Nursery
	case CategoryHousing:
		return c.Housing
	case CategoryOccupationalRisk:
		return c.OccupationalRisk
	}
	return engine.ZeroMoney()
}

func (c Contributions) Total() engine.Money {
	return c.SicknessMaternity.
		Add(c.DisabilityLife).
		Add(c.Retirement).
		Add(c.Nursery).
		Add(c.Housing).
		Add(c.OccupationalRisk)
}

func (c Contributions) Add(o Contributions) Contributions {
	return Contributions{
		SicknessMaternity: c.SicknessMaternity.Add(o.SicknessMaternity),
		DisabilityLife:    c.DisabilityLife.Add(o.DisabilityLife),
		Retirement:        c.Retirement.Add(o.Retirement),
		Nursery:           c.Nursery.Add(o.Nursery),
		Housing:           c.Housing.Add(o.Housing),
		OccupationalRisk:  c.OccupationalRisk.Add(o.OccupationalRisk),
	}
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes both sides' contributions for one parameter set.
// It is pure: the same base, days and parameters always produce the same
// decimal digits.
type Calculator struct {
	Params Parameters
}

func NewCalculator(params Parameters) *Calculator {
	return &Calculator{Params: params}
}

// Worker computes the amounts withheld from the employee for the covered
// days. The base must already be capped (see Parameters.CapBase).
func (c *Calculator) Worker(cappedBase engine.Money, days decimal.Decimal) Contributions {
	return c.contributions(c.Params.Worker, cappedBase, days)
}

// Employer computes the employer-cost amounts for the covered days. Kept
// separate from worker contributions for costing and reporting; never
// netted against pay.
func (c *Calculator) Employer(cappedBase engine.Money, days decimal.Decimal) Contributions {
	return c.contributions(c.Params.Employer, cappedBase, days)
}

func (c *Calculator) contributions(rates RateSchedule, cappedBase engine.Money, days decimal.Decimal) Contributions {
	perDay := func(amount engine.Money) engine.Money {
		return amount.Mul(days)
	}

	// Sickness/maternity: fixed quota on the minimum wage plus the
	// marginal part over three minimum wages. Always both.
	fixed := c.Params.MinimumWage.Mul(rates.SicknessMaternityFixed)
	excessBase := cappedBase.Sub(c.Params.MinimumWage.Mul(three))
	if excessBase.IsNegative() {
		excessBase = engine.ZeroMoney()
	}
	excess := excessBase.Mul(rates.SicknessMaternityExcess)

	return Contributions{
		SicknessMaternity: perDay(fixed.Add(excess)),
		DisabilityLife:    perDay(cappedBase.Mul(rates.DisabilityLife)),
		Retirement:        perDay(cappedBase.Mul(rates.Retirement)),
		Nursery:           perDay(cappedBase.Mul(rates.Nursery)),
		Housing:           perDay(cappedBase.Mul(rates.Housing)),
		OccupationalRisk:  perDay(cappedBase.Mul(rates.OccupationalRisk)),
	}
}
