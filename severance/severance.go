/*
Package severance implements end-of-employment settlements.

PURPOSE:
  Produces the ordinary settlement (finiquito) for any termination, and
  layers the three wrongful-dismissal indemnities (liquidación) on top
  when the cause calls for them.

ONE DECISION:
  The termination cause is a closed set. Resignation, justified dismissal
  and contract expiry pay the finiquito only; wrongful dismissal adds:

    (a) 90 calendar days of integrated daily salary (constitutional)
    (b) 20 days of integrated daily salary per completed year
    (c) seniority premium: 12 days per completed year, on the daily
        salary capped at twice the minimum wage

  Completed years are floor(elapsed_days / 365); the partial final year
  reaches the payout only through the finiquito proration, never through
  the per-year indemnities.

FINIQUITO:
  Prorated aguinaldo for the termination year, pay for vacation days still
  owed (unexpired closed years plus the prorated open year), and the
  vacation premium on that vacation pay.

SEE ALSO:
  - vacation/: period generation and proration
  - benefits/: aguinaldo and premium math
  - imss/: integration of the daily salary into the indemnity base
*/
package severance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/benefits"
	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/imss"
	"github.com/nomina/payroll-engine/vacation"
)

// =============================================================================
// CAUSE - Closed set
// =============================================================================

type Cause string

const (
	CauseResignation        Cause = "resignation"
	CauseJustifiedDismissal Cause = "justified_dismissal"
	CauseContractExpiry     Cause = "contract_expiry"
	CauseWrongfulDismissal  Cause = "wrongful_dismissal"
)

func (c Cause) Valid() bool {
	switch c {
	case CauseResignation, CauseJustifiedDismissal, CauseContractExpiry, CauseWrongfulDismissal:
		return true
	}
	return false
}

// Wrongful reports whether the cause triggers the liquidación indemnities.
func (c Cause) Wrongful() bool { return c == CauseWrongfulDismissal }

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

type Input struct {
	Snapshot        engine.EmployeeSnapshot
	Plan            benefits.Plan
	TerminationDate engine.Date
	Cause           Cause
	Params          imss.Parameters

	// VacationDaysTaken carries the externally tracked consumption per
	// seniority year, merged onto the generated periods.
	VacationDaysTaken map[int]decimal.Decimal
}

// Finiquito is the ordinary settlement, due regardless of cause.
type Finiquito struct {
	BonusDays           decimal.Decimal
	ProratedBonus       engine.Money
	OwedVacationDays    decimal.Decimal // unexpired closed-year remainder + open-year proration
	ExpiredUnusedDays   decimal.Decimal // reported, not paid; forfeiture is a legal decision
	ProratedVacationPay engine.Money
	VacationPremium     engine.Money
}

func (f Finiquito) Subtotal() engine.Money {
	return f.ProratedBonus.Add(f.ProratedVacationPay).Add(f.VacationPremium)
}

// Liquidacion is the wrongful-dismissal layer.
type Liquidacion struct {
	CompletedYears          int
	IntegratedDailySalary   engine.Money
	ConstitutionalIndemnity engine.Money // 90 days of SDI
	YearsIndemnity          engine.Money // 20 days of SDI per completed year
	SeniorityPremium        engine.Money // 12 days per year, wage capped at 2x minimum
}

func (l Liquidacion) Subtotal() engine.Money {
	return l.ConstitutionalIndemnity.Add(l.YearsIndemnity).Add(l.SeniorityPremium)
}

type Settlement struct {
	Cause       Cause
	Finiquito   Finiquito
	Liquidacion *Liquidacion // nil unless the cause is wrongful
	Total       engine.Money
}

// =============================================================================
// CALCULATOR
// =============================================================================

var (
	ninetyDays    = decimal.NewFromInt(90)
	twentyDays    = decimal.NewFromInt(20)
	seniorityDays = decimal.NewFromInt(12)
	two           = decimal.NewFromInt(2)
)

type Calculator struct {
	Vacations *vacation.Engine
	// FactorFn derives the integration factor when the snapshot does not
	// carry one. Defaults to imss.DefaultIntegrationFactor.
	FactorFn imss.IntegrationFactorFunc
}

func NewCalculator(vacations *vacation.Engine) *Calculator {
	return &Calculator{Vacations: vacations, FactorFn: imss.DefaultIntegrationFactor}
}

// Settle computes the full settlement for one termination.
func (c *Calculator) Settle(in Input) (*Settlement, error) {
	if !in.Cause.Valid() {
		return nil, &engine.ValidationError{Code: "unknown_cause", Message: string(in.Cause)}
	}
	if err := in.Snapshot.Validate(); err != nil {
		return nil, err
	}
	if err := in.Plan.Validate(); err != nil {
		return nil, err
	}
	if in.TerminationDate.Before(in.Snapshot.HireDate) {
		return nil, &engine.ValidationError{
			Code:    "termination_before_hire",
			Message: fmt.Sprintf("termination %s precedes hire %s", in.TerminationDate, in.Snapshot.HireDate),
			Err:     engine.ErrTerminationBeforeHire,
		}
	}

	fin, err := c.finiquito(in)
	if err != nil {
		return nil, err
	}

	settlement := &Settlement{
		Cause:     in.Cause,
		Finiquito: fin,
		Total:     fin.Subtotal(),
	}

	if in.Cause.Wrongful() {
		liq := c.liquidacion(in)
		settlement.Liquidacion = &liq
		settlement.Total = settlement.Total.Add(liq.Subtotal())
	}
	return settlement, nil
}

func (c *Calculator) finiquito(in Input) (Finiquito, error) {
	daily := in.Snapshot.DailySalary

	bonus, err := benefits.AnnualBonus(daily, in.Plan, in.Snapshot.HireDate, in.TerminationDate)
	if err != nil {
		return Finiquito{}, err
	}

	periods, err := c.Vacations.GeneratePeriods(in.Snapshot.HireDate, in.TerminationDate, in.Plan.ExtraVacationDays)
	if err != nil {
		return Finiquito{}, err
	}
	periods = vacation.WithTaken(periods, in.VacationDaysTaken)

	owedDays := decimal.Zero
	expiredDays := decimal.Zero
	for _, p := range periods {
		if !p.Closed(in.TerminationDate) {
			// open year: entitlement earned so far, minus what was taken
			prorated := c.Vacations.Prorate(p, in.TerminationDate).Sub(p.DaysTaken)
			if prorated.IsPositive() {
				owedDays = owedDays.Add(prorated)
			}
			continue
		}
		if p.ExpiredUnused(in.TerminationDate) {
			expiredDays = expiredDays.Add(p.Remaining())
			continue
		}
		owedDays = owedDays.Add(p.Remaining())
	}

	vacationPay := daily.Mul(owedDays).Round2()
	premium := vacationPay.Mul(in.Plan.VacationPremiumRate).Round2()

	return Finiquito{
		BonusDays:           bonus.DaysCounted,
		ProratedBonus:       bonus.Amount,
		OwedVacationDays:    owedDays,
		ExpiredUnusedDays:   expiredDays,
		ProratedVacationPay: vacationPay,
		VacationPremium:     premium,
	}, nil
}

func (c *Calculator) liquidacion(in Input) Liquidacion {
	daily := in.Snapshot.DailySalary

	factor := imss.DefaultIntegrationFactor(in.Plan.AguinaldoDays, c.currentEntitlement(in), in.Plan.VacationPremiumRate)
	if c.FactorFn != nil {
		factor = c.FactorFn(in.Plan.AguinaldoDays, c.currentEntitlement(in), in.Plan.VacationPremiumRate)
	}
	if in.Snapshot.IntegrationFactor != nil {
		factor = *in.Snapshot.IntegrationFactor
	}
	sdi := imss.Integrate(daily, factor)

	years := engine.CompletedYears(in.Snapshot.HireDate, in.TerminationDate)
	yearsDec := decimal.NewFromInt(int64(years))

	// Seniority premium wage: daily salary capped at twice the minimum.
	cappedWage := daily.Min(in.Params.MinimumWage.Mul(two))

	return Liquidacion{
		CompletedYears:          years,
		IntegratedDailySalary:   sdi.Round2(),
		ConstitutionalIndemnity: sdi.Mul(ninetyDays).Round2(),
		YearsIndemnity:          sdi.Mul(twentyDays).Mul(yearsDec).Round2(),
		SeniorityPremium:        cappedWage.Mul(seniorityDays).Mul(yearsDec).Round2(),
	}
}

// currentEntitlement is the vacation-day count feeding the default
// integration factor: the entitlement of the seniority year in progress.
func (c *Calculator) currentEntitlement(in Input) int {
	year := engine.CompletedYears(in.Snapshot.HireDate, in.TerminationDate) + 1
	return c.Vacations.EntitlementForYear(year) + in.Plan.ExtraVacationDays
}
