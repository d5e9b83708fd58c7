/*
Package payroll implements the per-period orchestrator.

PURPOSE:
  For each active employee in a pay period, resolves incidences into
  worked/paid days, invokes the tax and contribution calculators, and
  aggregates period totals. This package is thin glue over isr, imss
  and the shared engine types - the money math lives in those packages.

KEY CONCEPTS IN THIS FILE (result.go):
  - LineResult: one employee's immutable outcome for one period.
    Recomputation supersedes a result, it never mutates one.
  - Failure: a per-employee error recorded against that employee;
    siblings keep processing.
  - PeriodTotals: the deterministic fold over all successful lines.
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/imss"
)

// =============================================================================
// LINE RESULT - One employee, one period
// =============================================================================

type LineResult struct {
	EmployeeID engine.EmployeeID
	PaidDays   decimal.Decimal

	GrossTaxable   engine.Money
	GrossExempt    engine.Money
	TaxWithheld    engine.Money
	SubsidyApplied engine.Money

	IntegratedBase engine.Money // capped SDI the contributions were computed on
	Worker         imss.Contributions
	Employer       imss.Contributions

	NetPay engine.Money
}

// Failure records one employee's error without touching siblings.
type Failure struct {
	EmployeeID engine.EmployeeID
	Err        error
}

// =============================================================================
// PERIOD TOTALS
// =============================================================================

type PeriodTotals struct {
	EmployeeCount int
	FailureCount  int

	GrossTaxable          engine.Money
	GrossExempt           engine.Money
	TaxWithheld           engine.Money
	SubsidyApplied        engine.Money
	WorkerContributions   engine.Money
	EmployerContributions engine.Money
	NetPay                engine.Money
}

func (t *PeriodTotals) add(line LineResult) {
	t.EmployeeCount++
	t.GrossTaxable = t.GrossTaxable.Add(line.GrossTaxable)
	t.GrossExempt = t.GrossExempt.Add(line.GrossExempt)
	t.TaxWithheld = t.TaxWithheld.Add(line.TaxWithheld)
	t.SubsidyApplied = t.SubsidyApplied.Add(line.SubsidyApplied)
	t.WorkerContributions = t.WorkerContributions.Add(line.Worker.Total())
	t.EmployerContributions = t.EmployerContributions.Add(line.Employer.Total())
	t.NetPay = t.NetPay.Add(line.NetPay)
}

// RunResult is the full outcome of processing one period.
type RunResult struct {
	Period   engine.PayPeriod
	Lines    []LineResult
	Failures []Failure
	Totals   PeriodTotals
}
