/*
inputs.go - Read-only inputs the engine consumes

PURPOSE:
  The engine is a pure computation core: an external collaborator loads
  these records (from storage, an HTTP payload, a fixture) and hands them
  in fully resolved. The engine never mutates them and never performs I/O.

KEY CONCEPTS:
  - EmployeeSnapshot: salary, hire date, optional integration factor
  - PayPeriod: the period being processed, with its pay frequency
  - Incidence: absences, overtime, leave - adjustments to worked/paid days
    and to taxable/exempt pay for one period. Consumed, never stored, by
    the calculators.

CLOSED ENUMS:
  PayFrequency and IncidenceKind are closed sets. Every consumer switches
  over them exhaustively and treats an unknown value as a validation error
  rather than silently ignoring it - adding a new incidence kind must break
  loudly everywhere it is not handled.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE SNAPSHOT - Read-only view of one employee
// =============================================================================

type EmployeeID string

type EmployeeSnapshot struct {
	ID          EmployeeID
	Name        string
	DailySalary Money
	HireDate    Date

	// IntegrationFactor scales the daily salary into the contribution and
	// indemnity base (SDI). Nil means "derive from the benefit plan".
	IntegrationFactor *decimal.Decimal
}

func (s EmployeeSnapshot) Validate() error {
	if s.DailySalary.IsNegative() {
		return &ValidationError{
			Code:    "negative_salary",
			Message: fmt.Sprintf("employee %s has daily salary %s", s.ID, s.DailySalary),
			Err:     ErrNegativeSalary,
		}
	}
	if s.HireDate.IsZero() {
		return &ValidationError{Code: "missing_hire_date", Message: fmt.Sprintf("employee %s has no hire date", s.ID)}
	}
	if s.IntegrationFactor != nil && s.IntegrationFactor.LessThan(decimal.NewFromInt(1)) {
		return &ValidationError{
			Code:    "integration_factor_below_one",
			Message: fmt.Sprintf("employee %s has integration factor %s", s.ID, s.IntegrationFactor),
		}
	}
	return nil
}

// =============================================================================
// PAY PERIOD
// =============================================================================

// PayFrequency selects which row-set of the statutory tables applies.
// The ISR tables are frequency-scaled: a monthly table and a semimonthly
// table for the same fiscal year carry different bounds.
type PayFrequency string

const (
	FrequencyWeekly      PayFrequency = "weekly"
	FrequencyBiweekly    PayFrequency = "biweekly"
	FrequencySemimonthly PayFrequency = "semimonthly"
	FrequencyMonthly     PayFrequency = "monthly"
)

func (f PayFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencySemimonthly, FrequencyMonthly:
		return true
	}
	return false
}

type PayPeriod struct {
	Start     Date
	End       Date
	PayDate   Date
	Frequency PayFrequency
}

// CalendarDays returns the inclusive day count of the period.
func (p PayPeriod) CalendarDays() int {
	return DateSpan{Start: p.Start, End: p.End}.Days()
}

// FiscalYear is the year the statutory tables are resolved against.
// Withholding follows the pay date, not the period start.
func (p PayPeriod) FiscalYear() int {
	if !p.PayDate.IsZero() {
		return p.PayDate.Year()
	}
	return p.End.Year()
}

func (p PayPeriod) Validate() error {
	if !(DateSpan{Start: p.Start, End: p.End}).Valid() {
		return &ValidationError{
			Code:    "invalid_period",
			Message: fmt.Sprintf("period %s..%s", p.Start, p.End),
			Err:     ErrInvalidSpan,
		}
	}
	if !p.Frequency.Valid() {
		return &ValidationError{Code: "unknown_frequency", Message: string(p.Frequency)}
	}
	return nil
}

// =============================================================================
// INCIDENCE - Per-period adjustment to days and pay
// =============================================================================

type IncidenceKind string

const (
	IncidenceAbsence       IncidenceKind = "absence"        // unjustified, unpaid
	IncidenceOvertime      IncidenceKind = "overtime"       // hours, adds pay
	IncidencePaidLeave     IncidenceKind = "paid_leave"     // paid, days unchanged
	IncidenceUnpaidLeave   IncidenceKind = "unpaid_leave"   // unpaid
	IncidenceIncapacity    IncidenceKind = "incapacity"     // IMSS-covered, unpaid by employer
	IncidenceVacationTaken IncidenceKind = "vacation_taken" // paid, tracked against entitlement
)

func (k IncidenceKind) Valid() bool {
	switch k {
	case IncidenceAbsence, IncidenceOvertime, IncidencePaidLeave,
		IncidenceUnpaidLeave, IncidenceIncapacity, IncidenceVacationTaken:
		return true
	}
	return false
}

// Incidence quantity is days for day-based kinds and hours for overtime.
type Incidence struct {
	Kind     IncidenceKind
	Span     DateSpan
	Quantity decimal.Decimal
}

func (i Incidence) Validate() error {
	if !i.Kind.Valid() {
		return &ValidationError{Code: "unknown_incidence_kind", Message: string(i.Kind)}
	}
	if i.Quantity.IsNegative() {
		return &ValidationError{Code: "negative_incidence", Message: fmt.Sprintf("%s quantity %s", i.Kind, i.Quantity)}
	}
	if !i.Span.Valid() {
		return &ValidationError{
			Code:    "invalid_incidence_span",
			Message: fmt.Sprintf("%s span %s", i.Kind, i.Span),
			Err:     ErrInvalidSpan,
		}
	}
	return nil
}
