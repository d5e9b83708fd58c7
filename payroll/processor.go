/*
processor.go - Period processing: days resolution, calculators, totals

CONTROL FLOW:
  Run -> per employee -> incidence resolution -> ISR + IMSS -> totals.

CONCURRENCY:
  Every employee's calculation is independent, so the processor fans out
  over a bounded worker pool. Each worker reads the shared tables and
  parameters (read-only) and writes only its own slot, indexed by the
  employee's input position - output order equals input order and a rerun
  of identical inputs is bit-identical.

ERRORS:
  Configuration errors (missing table or parameters for the period's year)
  abort the run before any employee is touched. Per-employee validation
  errors are recorded as Failures and the remaining employees continue;
  nothing rolls back an already-computed sibling. A cancelled context
  abandons undispatched employees, recording the context error for each.
*/
package payroll

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/imss"
	"github.com/nomina/payroll-engine/isr"
	"github.com/nomina/payroll-engine/vacation"
)

const defaultWorkers = 4

var (
	hoursPerDay  = decimal.NewFromInt(8)
	overtimeRate = decimal.NewFromInt(2)
	// Half of double-time overtime pay is exempt from withholding, the
	// Art. 93 treatment. Jurisdiction data like everything else; override
	// via Processor.OvertimeExemptShare.
	defaultOvertimeExemptShare = engine.MustParseDecimal("0.5")
)

// =============================================================================
// INPUT
// =============================================================================

// EmployeeInput bundles everything the processor needs for one employee.
type EmployeeInput struct {
	Snapshot   engine.EmployeeSnapshot
	Plan       Plan
	Incidences []engine.Incidence
}

// Plan is the slice of the benefit plan the processor needs to derive the
// integration factor.
type Plan struct {
	AguinaldoDays       int
	VacationPremiumRate decimal.Decimal
	ExtraVacationDays   int
}

// =============================================================================
// PROCESSOR
// =============================================================================

type Processor struct {
	Tables     *isr.TableSet
	Parameters *imss.ParameterSet
	Vacations  *vacation.Engine

	// Workers bounds the pool; <= 0 selects the default.
	Workers int

	// OvertimeExemptShare overrides the exempt fraction of overtime pay.
	OvertimeExemptShare *decimal.Decimal

	// FactorFn overrides the default integration factor derivation.
	FactorFn imss.IntegrationFactorFunc
}

func NewProcessor(tables *isr.TableSet, params *imss.ParameterSet, vacations *vacation.Engine) *Processor {
	return &Processor{
		Tables:     tables,
		Parameters: params,
		Vacations:  vacations,
	}
}

// Run processes one period for the given employees. The statutory records
// are resolved once, up front: a missing table or parameter set fails the
// whole run with a ConfigurationError before any employee is computed.
func (p *Processor) Run(ctx context.Context, period engine.PayPeriod, employees []EmployeeInput) (*RunResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	year := period.FiscalYear()
	table, err := p.Tables.Lookup(year, period.Frequency)
	if err != nil {
		return nil, err
	}
	subsidyTable, err := p.Tables.LookupSubsidy(year, period.Frequency)
	if err != nil {
		return nil, err
	}
	params, err := p.Parameters.Lookup(year)
	if err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(employees) && len(employees) > 0 {
		workers = len(employees)
	}

	lines := make([]*LineResult, len(employees))
	errs := make([]error, len(employees))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				line, err := p.computeLine(period, employees[i], table, subsidyTable, params)
				if err != nil {
					errs[i] = err
					continue
				}
				lines[i] = line
			}
		}()
	}

dispatch:
	for i := range employees {
		// checked first so an already-cancelled context never dispatches
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	result := &RunResult{Period: period}
	for i := range employees {
		switch {
		case lines[i] != nil:
			result.Lines = append(result.Lines, *lines[i])
			result.Totals.add(*lines[i])
		case errs[i] != nil:
			result.Failures = append(result.Failures, Failure{EmployeeID: employees[i].Snapshot.ID, Err: errs[i]})
		default:
			// never dispatched: the caller cancelled mid-run
			result.Failures = append(result.Failures, Failure{EmployeeID: employees[i].Snapshot.ID, Err: ctx.Err()})
		}
	}
	result.Totals.FailureCount = len(result.Failures)
	return result, nil
}

// =============================================================================
// PER-EMPLOYEE CALCULATION
// =============================================================================

func (p *Processor) computeLine(period engine.PayPeriod, emp EmployeeInput, table, subsidyTable *isr.Table, params imss.Parameters) (*LineResult, error) {
	if err := emp.Snapshot.Validate(); err != nil {
		return nil, err
	}

	calendarDays := decimal.NewFromInt(int64(period.CalendarDays()))
	unpaidDays := decimal.Zero
	overtimeHours := decimal.Zero

	for _, inc := range emp.Incidences {
		if err := inc.Validate(); err != nil {
			return nil, err
		}
		switch inc.Kind {
		case engine.IncidenceAbsence, engine.IncidenceUnpaidLeave, engine.IncidenceIncapacity:
			unpaidDays = unpaidDays.Add(inc.Quantity)
		case engine.IncidenceOvertime:
			overtimeHours = overtimeHours.Add(inc.Quantity)
		case engine.IncidencePaidLeave, engine.IncidenceVacationTaken:
			// salary continues; days and pay unchanged
		default:
			return nil, &engine.ValidationError{Code: "unknown_incidence_kind", Message: string(inc.Kind)}
		}
	}

	if unpaidDays.GreaterThan(calendarDays) {
		return nil, &engine.ValidationError{
			Code:    "incidence_overflow",
			Message: fmt.Sprintf("employee %s: %s unpaid days in a %s-day period", emp.Snapshot.ID, unpaidDays, calendarDays),
			Err:     engine.ErrIncidenceOverflow,
		}
	}
	paidDays := calendarDays.Sub(unpaidDays)

	daily := emp.Snapshot.DailySalary
	baseSalary := daily.Mul(paidDays)

	// Overtime at double time, partially exempt.
	exemptShare := defaultOvertimeExemptShare
	if p.OvertimeExemptShare != nil {
		exemptShare = *p.OvertimeExemptShare
	}
	overtimePay := daily.Div(hoursPerDay).Mul(overtimeRate).Mul(overtimeHours)
	overtimeExempt := overtimePay.Mul(exemptShare)
	overtimeTaxable := overtimePay.Sub(overtimeExempt)

	grossTaxable := baseSalary.Add(overtimeTaxable).Round2()
	grossExempt := overtimeExempt.Round2()

	withholding, err := isr.Withhold(table, subsidyTable, grossTaxable)
	if err != nil {
		return nil, err
	}

	factor := p.integrationFactor(emp, period)
	capped := params.CapBase(imss.Integrate(daily, factor))
	contrib := imss.NewCalculator(params)
	worker := roundContributions(contrib.Worker(capped, paidDays))
	employer := roundContributions(contrib.Employer(capped, paidDays))

	net := grossTaxable.
		Add(grossExempt).
		Sub(withholding.NetTax).
		Sub(worker.Total()).
		Round2()

	return &LineResult{
		EmployeeID:     emp.Snapshot.ID,
		PaidDays:       paidDays,
		GrossTaxable:   grossTaxable,
		GrossExempt:    grossExempt,
		TaxWithheld:    withholding.NetTax.Round2(),
		SubsidyApplied: withholding.Subsidy.Round2(),
		IntegratedBase: capped.Round2(),
		Worker:         worker,
		Employer:       employer,
		NetPay:         net,
	}, nil
}

func (p *Processor) integrationFactor(emp EmployeeInput, period engine.PayPeriod) decimal.Decimal {
	if emp.Snapshot.IntegrationFactor != nil {
		return *emp.Snapshot.IntegrationFactor
	}
	seniorityYear := engine.CompletedYears(emp.Snapshot.HireDate, period.End) + 1
	vacationDays := p.Vacations.EntitlementForYear(seniorityYear) + emp.Plan.ExtraVacationDays
	if p.FactorFn != nil {
		return p.FactorFn(emp.Plan.AguinaldoDays, vacationDays, emp.Plan.VacationPremiumRate)
	}
	return imss.DefaultIntegrationFactor(emp.Plan.AguinaldoDays, vacationDays, emp.Plan.VacationPremiumRate)
}

func roundContributions(c imss.Contributions) imss.Contributions {
	return imss.Contributions{
		SicknessMaternity: c.SicknessMaternity.Round2(),
		DisabilityLife:    c.DisabilityLife.Round2(),
		Retirement:        c.Retirement.Round2(),
		Nursery:           c.Nursery.Round2(),
		Housing:           c.Housing.Round2(),
		OccupationalRisk:  c.OccupationalRisk.Round2(),
	}
}
