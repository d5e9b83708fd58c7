/*
errors.go - Centralized error taxonomy for the payroll engine

PURPOSE:
  All engine error types in one place. Three categories matter to callers:

  1. Configuration errors - a statutory table or parameter set is missing
     for the requested fiscal year/frequency. Fatal for the calculation;
     the engine never falls back to a guessed table.
  2. Validation errors - the inputs violate a business rule (termination
     before hire, negative salary, incidence longer than the period,
     benefit plan below the legal floor). Rejected before any money math.
  3. Precision errors - an intermediate result would violate a documented
     invariant (e.g. subsidy exceeding base tax before the clamp). These
     are caught and resolved inside the calculators; callers only see them
     if a clamp cannot restore the invariant.

USAGE:
  Calculators wrap the sentinels with context:

    if engine.IsConfiguration(err) {
        // abort the run, surface to the operator
    }
    if engine.IsValidation(err) {
        // record against the employee, continue with siblings
    }

SEE ALSO:
  - isr/table.go:   ConfigurationError for missing bracket tables
  - payroll/processor.go: per-employee error recording
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is the root of every missing-table/missing-parameter
	// failure. Deterministic: retrying without publishing the data is useless.
	ErrConfiguration = errors.New("missing statutory configuration")

	// ErrValidation is the root of every rejected-input failure.
	ErrValidation = errors.New("invalid input")

	// ErrPrecision marks a violated numeric invariant that could not be
	// resolved internally.
	ErrPrecision = errors.New("precision invariant violated")

	// ErrNegativeSalary is returned for a snapshot with daily_salary < 0.
	ErrNegativeSalary = errors.New("daily salary must not be negative")

	// ErrInvalidSpan is returned when a date range ends before it starts.
	ErrInvalidSpan = errors.New("invalid date range: end before start")

	// ErrTerminationBeforeHire is returned by the severance calculator.
	ErrTerminationBeforeHire = errors.New("termination date precedes hire date")

	// ErrIncidenceOverflow is returned when incidence quantities exceed the
	// calendar days of the pay period.
	ErrIncidenceOverflow = errors.New("incidence quantity exceeds period length")

	// ErrBelowLegalFloor is returned for a benefit plan under the statutory
	// minimums (15 aguinaldo days, 25% vacation premium).
	ErrBelowLegalFloor = errors.New("benefit plan below legal minimum")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError reports which statutory record is missing.
type ConfigurationError struct {
	Missing    string // e.g. "bracket table", "subsidy table", "contribution parameters"
	FiscalYear int
	Frequency  PayFrequency // empty when the record is not frequency-scaled
}

func (e *ConfigurationError) Error() string {
	if e.Frequency == "" {
		return fmt.Sprintf("no %s published for fiscal year %d", e.Missing, e.FiscalYear)
	}
	return fmt.Sprintf("no %s published for fiscal year %d, frequency %s", e.Missing, e.FiscalYear, e.Frequency)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ValidationError reports a rejected input with a stable machine code.
type ValidationError struct {
	Code    string // e.g. "negative_salary", "incidence_overflow"
	Message string
	Err     error // underlying sentinel, when one applies
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// PrecisionError reports a numeric invariant violation.
type PrecisionError struct {
	Op     string // e.g. "subsidy clamp"
	Detail string
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("precision: %s (%s)", e.Op, e.Detail)
}

func (e *PrecisionError) Unwrap() error { return ErrPrecision }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfiguration returns true for missing-table/parameter failures.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsValidation returns true for rejected-input failures.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNegativeSalary) ||
		errors.Is(err, ErrInvalidSpan) ||
		errors.Is(err, ErrTerminationBeforeHire) ||
		errors.Is(err, ErrIncidenceOverflow) ||
		errors.Is(err, ErrBelowLegalFloor)
}
