/*
Package imss implements the social-security contribution calculator.

PURPOSE:
  Computes the integrated daily base salary (SDI), applies the legal cap
  in UMA units, and produces worker and employer contributions by category.
  Worker amounts are withheld from net pay; employer amounts are a payroll
  cost and are never summed into an employee's net.

KEY CONCEPTS IN THIS FILE (params.go):
  - Category: the closed set of contribution categories. Rates are reached
    through typed fields - never free-form string lookup, so a typo cannot
    silently zero a contribution.
  - RateSchedule: per-side (worker/employer) rates per category. Sickness/
    maternity has TWO rates: a fixed quota computed on the minimum wage and
    a marginal rate on the base over three minimum wages. Both parts are
    always computed and summed; dropping either under-withholds.
  - Parameters: one published set per fiscal year (UMA value, minimum
    wage, cap, schedules). Every calculation receives its parameters
    explicitly - there is no ambient "current year" state, so two fiscal
    years can be processed concurrently without cross-talk.

CONFIGURATION, NOT CONSTANTS:
  Rates, the UMA value, the cap and the minimum wage are jurisdiction-year
  data. The factory package ships samples; nothing in this package assumes
  they are current.
*/
package imss

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
)

// =============================================================================
// CATEGORIES - Closed set with typed accessors
// =============================================================================

type Category string

const (
	CategorySicknessMaternity Category = "sickness_maternity"
	CategoryDisabilityLife    Category = "disability_life"
	CategoryRetirement        Category = "retirement_old_age"
	CategoryNursery           Category = "nursery"
	CategoryHousing           Category = "housing_fund"
	CategoryOccupationalRisk  Category = "occupational_risk"
)

// Categories returns every contribution category in reporting order.
func Categories() []Category {
	return []Category{
		CategorySicknessMaternity,
		CategoryDisabilityLife,
		CategoryRetirement,
		CategoryNursery,
		CategoryHousing,
		CategoryOccupationalRisk,
	}
}

// =============================================================================
// RATE SCHEDULE - One side (worker or employer)
// =============================================================================

// RateSchedule carries the marginal rates for one contribution side.
// All rates are fractions (0.0110 for 1.10%).
type RateSchedule struct {
	// SicknessMaternityFixed is the fixed-quota rate applied to the
	// MINIMUM WAGE per covered day, not to the capped base.
	SicknessMaternityFixed decimal.Decimal

	// SicknessMaternityExcess applies to the portion of the capped base
	// above three minimum wages.
	SicknessMaternityExcess decimal.Decimal

	DisabilityLife   decimal.Decimal
	Retirement       decimal.Decimal
	Nursery          decimal.Decimal
	Housing          decimal.Decimal
	OccupationalRisk decimal.Decimal
}

// =============================================================================
// PARAMETERS - One published set per fiscal year
// =============================================================================

type Parameters struct {
	FiscalYear int

	// UMADaily is the daily value of the yearly reference index the cap
	// is denominated in.
	UMADaily engine.Money

	MinimumWage engine.Money

	// CapUMAUnits caps the integrated base at this many UMA per day.
	CapUMAUnits int

	Worker   RateSchedule
	Employer RateSchedule
}

func (p Parameters) Validate() error {
	if p.FiscalYear == 0 {
		return &engine.ValidationError{Code: "missing_fiscal_year", Message: "contribution parameters need a fiscal year"}
	}
	if !p.UMADaily.IsPositive() || !p.MinimumWage.IsPositive() {
		return &engine.ValidationError{
			Code:    "non_positive_parameters",
			Message: fmt.Sprintf("uma %s, minimum wage %s", p.UMADaily, p.MinimumWage),
		}
	}
	if p.CapUMAUnits <= 0 {
		return &engine.ValidationError{Code: "non_positive_cap", Message: fmt.Sprintf("cap %d UMA", p.CapUMAUnits)}
	}
	return nil
}

// CapBase applies the legal cap: min(base, UMA_daily * cap_units).
func (p Parameters) CapBase(integratedBase engine.Money) engine.Money {
	ceiling := p.UMADaily.MulInt(p.CapUMAUnits)
	return integratedBase.Min(ceiling)
}

// =============================================================================
// PARAMETER SET - Published parameters per fiscal year
// =============================================================================

// ParameterSet is the registry of published parameter records: exactly one
// per fiscal year, insert-only, explicit lookup.
type ParameterSet struct {
	mu     sync.RWMutex
	byYear map[int]Parameters
}

func NewParameterSet() *ParameterSet {
	return &ParameterSet{byYear: make(map[int]Parameters)}
}

// Register publishes a parameter set. A year already published is
// immutable; corrections are a new fiscal year, not an edit.
func (ps *ParameterSet) Register(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.byYear[p.FiscalYear]; exists {
		return &engine.ValidationError{
			Code:    "parameters_already_published",
			Message: fmt.Sprintf("contribution parameters for %d are published and immutable", p.FiscalYear),
		}
	}
	ps.byYear[p.FiscalYear] = p
	return nil
}

// Lookup returns the parameters for a fiscal year or a ConfigurationError.
func (ps *ParameterSet) Lookup(year int) (Parameters, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if p, ok := ps.byYear[year]; ok {
		return p, nil
	}
	return Parameters{}, &engine.ConfigurationError{Missing: "contribution parameters", FiscalYear: year}
}

// All returns every published parameter set ordered by fiscal year.
func (ps *ParameterSet) All() []Parameters {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]Parameters, 0, len(ps.byYear))
	for _, p := range ps.byYear {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiscalYear < out[j].FiscalYear })
	return out
}
