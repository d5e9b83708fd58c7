/*
calculator.go - Net withholding: bracket tax minus employment subsidy

PURPOSE:
  Combines a bracket resolution with the employment-subsidy lookup for the
  same (year, frequency) and produces the amount actually withheld.

THE CLAMP:
  net_tax = max(base_tax - subsidy, 0)

  The subsidy can fully offset the tax but never drive withholding below
  zero. A subsidy exceeding the base tax is a legitimate low-income case,
  resolved internally by the clamp; Withholding.Clamped records that it
  happened so audits can see it without treating it as an error.
*/
package isr

import (
	"github.com/nomina/payroll-engine/engine"
)

// =============================================================================
// WITHHOLDING
// =============================================================================

// Withholding is the full ISR outcome for one gross taxable amount.
type Withholding struct {
	Resolution Resolution
	Subsidy    engine.Money
	NetTax     engine.Money
	// Clamped is true when the subsidy exceeded the base tax and net
	// withholding was floored at zero.
	Clamped bool
}

// Calculator resolves withholding against published tables. It holds no
// mutable state beyond the registry and is safe for concurrent use.
type Calculator struct {
	Tables *TableSet
}

func NewCalculator(tables *TableSet) *Calculator {
	return &Calculator{Tables: tables}
}

// Withhold computes net ISR withholding for gross taxable pay in the given
// fiscal year and frequency. Missing tables surface as ConfigurationError;
// the calculator never guesses a substitute year.
func (c *Calculator) Withhold(year int, freq engine.PayFrequency, gross engine.Money) (*Withholding, error) {
	table, err := c.Tables.Lookup(year, freq)
	if err != nil {
		return nil, err
	}
	subsidyTable, err := c.Tables.LookupSubsidy(year, freq)
	if err != nil {
		return nil, err
	}
	return Withhold(table, subsidyTable, gross)
}

// Withhold computes net withholding against explicit tables. The subsidy
// table shares the bracket representation: its BaseAmount column carries
// the allowance and its marginal rates are zero.
func Withhold(table, subsidyTable *Table, gross engine.Money) (*Withholding, error) {
	res, err := table.Resolve(gross)
	if err != nil {
		return nil, err
	}

	subsidy := engine.ZeroMoney()
	if subsidyTable != nil {
		subRes, err := subsidyTable.Resolve(gross)
		if err != nil {
			return nil, err
		}
		// allowance rows are flat: base amount only
		subsidy = subRes.BaseTax
	}

	w := &Withholding{
		Resolution: res,
		Subsidy:    subsidy,
		NetTax:     res.BaseTax.Sub(subsidy),
	}
	if w.NetTax.IsNegative() {
		w.NetTax = engine.ZeroMoney()
		w.Clamped = true
	}
	return w, nil
}
