/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Every monetary field travels as a decimal string ("7500.00"), never a
  float. Clients that parse them as floats forfeit the engine's precision
  on their side of the wire.

TYPES:
  Employee:
    EmployeeDTO, SaveEmployeeRequest

  Statutory records:
    PublishTableRequest, PublishParametersRequest (wrap factory JSON)

  Vacations:
    VacationPeriodDTO, UpdateDaysTakenRequest

  Payroll:
    RunPayrollRequest, RunResultDTO, LineResultDTO, TotalsDTO

  Severance:
    SettleRequest, SettlementDTO

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: TableJSON, ParametersJSON
*/
package api

import (
	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/factory"
	"github.com/nomina/payroll-engine/imss"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/severance"
	"github.com/nomina/payroll-engine/vacation"
)

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DailySalary       string `json:"daily_salary"`
	HireDate          string `json:"hire_date"`
	IntegrationFactor string `json:"integration_factor,omitempty"`
	PlanName          string `json:"plan_name"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// SaveEmployeeRequest is the request to create or update an employee.
type SaveEmployeeRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DailySalary       string `json:"daily_salary"`
	HireDate          string `json:"hire_date"`
	IntegrationFactor string `json:"integration_factor,omitempty"`
	PlanName          string `json:"plan_name,omitempty"`
}

// =============================================================================
// STATUTORY RECORD TYPES
// =============================================================================

// PublishTableRequest publishes one bracket table. Kind selects between
// the tax table and the subsidy table.
type PublishTableRequest struct {
	Kind  string            `json:"kind"`
	Table factory.TableJSON `json:"table"`
}

// PublishParametersRequest publishes one year's contribution parameters.
type PublishParametersRequest struct {
	Parameters factory.ParametersJSON `json:"parameters"`
}

// TableDTO describes a published table without its rows.
type TableDTO struct {
	ID         string `json:"id"`
	FiscalYear int    `json:"fiscal_year"`
	Frequency  string `json:"frequency"`
	Kind       string `json:"kind"`
	RowCount   int    `json:"row_count"`
	CreatedAt  string `json:"created_at"`
}

// ParametersDTO describes a published parameter set.
type ParametersDTO struct {
	FiscalYear  int    `json:"fiscal_year"`
	UMADaily    string `json:"uma_daily"`
	MinimumWage string `json:"minimum_wage"`
	CapUMAUnits int    `json:"cap_uma_units"`
}

// =============================================================================
// INCIDENCE TYPES
// =============================================================================

// IncidenceDTO represents a stored incidence.
type IncidenceDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	SpanStart string `json:"span_start"`
	SpanEnd   string `json:"span_end"`
	Quantity  string `json:"quantity"`
}

// CreateIncidenceRequest records an incidence for an employee.
type CreateIncidenceRequest struct {
	Kind      string `json:"kind"`
	SpanStart string `json:"span_start"`
	SpanEnd   string `json:"span_end"`
	Quantity  string `json:"quantity"`
}

// =============================================================================
// VACATION TYPES
// =============================================================================

// VacationPeriodDTO represents one seniority-year balance.
type VacationPeriodDTO struct {
	SeniorityYear   int    `json:"seniority_year"`
	Start           string `json:"start"`
	End             string `json:"end"`
	EntitlementDays int    `json:"entitlement_days"`
	DaysTaken       string `json:"days_taken"`
	Remaining       string `json:"remaining"`
	ExpiresAt       string `json:"expires_at"`
	Expired         bool   `json:"expired"`
	ProratedAccrued string `json:"prorated_accrued,omitempty"`
}

// UpdateDaysTakenRequest sets the days taken for one seniority year.
type UpdateDaysTakenRequest struct {
	DaysTaken string `json:"days_taken"`
}

// =============================================================================
// PAYROLL TYPES
// =============================================================================

// RunPayrollRequest asks for a period to be processed. An empty employee
// list means every stored employee.
type RunPayrollRequest struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	PayDate     string   `json:"pay_date"`
	Frequency   string   `json:"frequency"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

// LineResultDTO is one employee's computed pay.
type LineResultDTO struct {
	EmployeeID     string            `json:"employee_id"`
	PaidDays       string            `json:"paid_days"`
	GrossTaxable   string            `json:"gross_taxable"`
	GrossExempt    string            `json:"gross_exempt"`
	TaxWithheld    string            `json:"tax_withheld"`
	SubsidyApplied string            `json:"subsidy_applied"`
	IntegratedBase string            `json:"integrated_base"`
	Worker         map[string]string `json:"worker_contributions"`
	Employer       map[string]string `json:"employer_contributions"`
	NetPay         string            `json:"net_pay"`
}

// FailureDTO is one employee the run could not compute.
type FailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// TotalsDTO aggregates a run.
type TotalsDTO struct {
	EmployeeCount         int    `json:"employee_count"`
	FailureCount          int    `json:"failure_count"`
	GrossTaxable          string `json:"gross_taxable"`
	GrossExempt           string `json:"gross_exempt"`
	TaxWithheld           string `json:"tax_withheld"`
	SubsidyApplied        string `json:"subsidy_applied"`
	WorkerContributions   string `json:"worker_contributions"`
	EmployerContributions string `json:"employer_contributions"`
	NetPay                string `json:"net_pay"`
}

// RunResultDTO is a full processed period.
type RunResultDTO struct {
	RunID     string          `json:"run_id,omitempty"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	PayDate   string          `json:"pay_date"`
	Frequency string          `json:"frequency"`
	Lines     []LineResultDTO `json:"lines"`
	Failures  []FailureDTO    `json:"failures,omitempty"`
	Totals    TotalsDTO       `json:"totals"`
}

// =============================================================================
// SEVERANCE TYPES
// =============================================================================

// SettleRequest asks for a termination settlement.
type SettleRequest struct {
	TerminationDate string `json:"termination_date"`
	Cause           string `json:"cause"`

	// Persist stores the settlement; quotes leave no record.
	Persist bool `json:"persist,omitempty"`
}

// FiniquitoDTO is the earned-compensation half of a settlement.
type FiniquitoDTO struct {
	BonusDays           string `json:"bonus_days"`
	ProratedBonus       string `json:"prorated_bonus"`
	OwedVacationDays    string `json:"owed_vacation_days"`
	ExpiredUnusedDays   string `json:"expired_unused_days"`
	ProratedVacationPay string `json:"prorated_vacation_pay"`
	VacationPremium     string `json:"vacation_premium"`
	Subtotal            string `json:"subtotal"`
}

// LiquidacionDTO is the indemnity half, present only for wrongful dismissal.
type LiquidacionDTO struct {
	CompletedYears          int    `json:"completed_years"`
	IntegratedDailySalary   string `json:"integrated_daily_salary"`
	ConstitutionalIndemnity string `json:"constitutional_indemnity"`
	YearsIndemnity          string `json:"years_indemnity"`
	SeniorityPremium        string `json:"seniority_premium"`
	Subtotal                string `json:"subtotal"`
}

// SettlementDTO is a full termination settlement.
type SettlementDTO struct {
	ID              string          `json:"id,omitempty"`
	EmployeeID      string          `json:"employee_id"`
	TerminationDate string          `json:"termination_date"`
	Cause           string          `json:"cause"`
	Finiquito       FiniquitoDTO    `json:"finiquito"`
	Liquidacion     *LiquidacionDTO `json:"liquidacion,omitempty"`
	Total           string          `json:"total"`
}

// =============================================================================
// SHARED TYPES
// =============================================================================

// ErrorResponse is the error body for all failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toLineDTO(l payroll.LineResult) LineResultDTO {
	return LineResultDTO{
		EmployeeID:     string(l.EmployeeID),
		PaidDays:       l.PaidDays.String(),
		GrossTaxable:   l.GrossTaxable.String(),
		GrossExempt:    l.GrossExempt.String(),
		TaxWithheld:    l.TaxWithheld.String(),
		SubsidyApplied: l.SubsidyApplied.String(),
		IntegratedBase: l.IntegratedBase.String(),
		Worker:         toContributionsMap(l.Worker),
		Employer:       toContributionsMap(l.Employer),
		NetPay:         l.NetPay.String(),
	}
}

func toContributionsMap(c imss.Contributions) map[string]string {
	out := make(map[string]string, len(imss.Categories()))
	for _, cat := range imss.Categories() {
		out[string(cat)] = c.Amount(cat).String()
	}
	out["total"] = c.Total().String()
	return out
}

func toRunDTO(runID string, result *payroll.RunResult) RunResultDTO {
	dto := RunResultDTO{
		RunID:     runID,
		Start:     result.Period.Start.String(),
		End:       result.Period.End.String(),
		PayDate:   result.Period.PayDate.String(),
		Frequency: string(result.Period.Frequency),
		Lines:     make([]LineResultDTO, len(result.Lines)),
		Totals: TotalsDTO{
			EmployeeCount:         result.Totals.EmployeeCount,
			FailureCount:          result.Totals.FailureCount,
			GrossTaxable:          result.Totals.GrossTaxable.String(),
			GrossExempt:           result.Totals.GrossExempt.String(),
			TaxWithheld:           result.Totals.TaxWithheld.String(),
			SubsidyApplied:        result.Totals.SubsidyApplied.String(),
			WorkerContributions:   result.Totals.WorkerContributions.String(),
			EmployerContributions: result.Totals.EmployerContributions.String(),
			NetPay:                result.Totals.NetPay.String(),
		},
	}
	for i, l := range result.Lines {
		dto.Lines[i] = toLineDTO(l)
	}
	for _, f := range result.Failures {
		dto.Failures = append(dto.Failures, FailureDTO{
			EmployeeID: string(f.EmployeeID),
			Error:      f.Err.Error(),
		})
	}
	return dto
}

func toPeriodDTO(p vacation.Period, asOf engine.Date, prorated string) VacationPeriodDTO {
	return VacationPeriodDTO{
		SeniorityYear:   p.SeniorityYear,
		Start:           p.Start.String(),
		End:             p.End.String(),
		EntitlementDays: p.EntitlementDays,
		DaysTaken:       p.DaysTaken.String(),
		Remaining:       p.Remaining().String(),
		ExpiresAt:       p.ExpiresAt.String(),
		Expired:         asOf.After(p.ExpiresAt),
		ProratedAccrued: prorated,
	}
}

func toSettlementDTO(id string, employeeID engine.EmployeeID, terminationDate engine.Date, s severance.Settlement) SettlementDTO {
	dto := SettlementDTO{
		ID:              id,
		EmployeeID:      string(employeeID),
		TerminationDate: terminationDate.String(),
		Cause:           string(s.Cause),
		Finiquito: FiniquitoDTO{
			BonusDays:           s.Finiquito.BonusDays.String(),
			ProratedBonus:       s.Finiquito.ProratedBonus.String(),
			OwedVacationDays:    s.Finiquito.OwedVacationDays.String(),
			ExpiredUnusedDays:   s.Finiquito.ExpiredUnusedDays.String(),
			ProratedVacationPay: s.Finiquito.ProratedVacationPay.String(),
			VacationPremium:     s.Finiquito.VacationPremium.String(),
			Subtotal:            s.Finiquito.Subtotal().String(),
		},
		Total: s.Total.String(),
	}
	if s.Liquidacion != nil {
		dto.Liquidacion = &LiquidacionDTO{
			CompletedYears:          s.Liquidacion.CompletedYears,
			IntegratedDailySalary:   s.Liquidacion.IntegratedDailySalary.String(),
			ConstitutionalIndemnity: s.Liquidacion.ConstitutionalIndemnity.String(),
			YearsIndemnity:          s.Liquidacion.YearsIndemnity.String(),
			SeniorityPremium:        s.Liquidacion.SeniorityPremium.String(),
			Subtotal:                s.Liquidacion.Subtotal().String(),
		}
	}
	return dto
}
