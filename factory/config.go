/*
Package factory provides JSON to Go statutory configuration conversion.

PURPOSE:
  Converts JSON definitions of the published fiscal records into the
  calculation packages' Go structs. This enables yearly updates without
  code changes - payroll admins load the new gazette figures as JSON,
  and the factory registers the proper tables and parameter sets.

WHY JSON?
  - Non-developers can load the yearly gazette updates
  - Easy integration with an admin UI
  - Version control for the figures a run was computed with
  - Database storage of published configs

JSON SCHEMA:
  {
    "isr_tables": [
      {
        "fiscal_year": 2025,
        "frequency": "monthly",
        "rows": [
          {"lower": "0.01", "upper": "746.04", "base": "0", "rate": "0.0192"},
          {"lower": "375975.62", "base": "117912.32", "rate": "0.35"}
        ]
      }
    ],
    "subsidy_tables": [ ...same row shape, base is the flat allowance... ],
    "imss_parameters": [
      {
        "fiscal_year": 2025,
        "uma_daily": "113.14",
        "minimum_wage": "278.80",
        "cap_uma_units": 25,
        "worker":   {"sickness_maternity_excess": "0.0040", ...},
        "employer": {"sickness_maternity_fixed": "0.2040", ...}
      }
    ],
    "vacation": {"base": [12, 14, 16, 18, 20], "plateau_step": 2, "plateau_every": 5},
    "plans": {
      "statutory": {"aguinaldo_days": 15, "vacation_premium_rate": "0.25"}
    }
  }

KEY FEATURES:
  - All money and rates travel as strings, parsed exactly
  - A row without "upper" is the open-ended top bracket
  - Validation runs on registration, so a bad bundle never half-loads
  - DefaultBundle ships the current published figures for quick starts

USAGE:
  f := NewConfigFactory()

  bundle, err := f.ParseBundle(jsonString)
  // or from disk
  bundle, err := LoadBundle("config/2025.json")

  proc := payroll.NewProcessor(bundle.Tables, bundle.Parameters, bundle.Vacations())

SEE ALSO:
  - isr/table.go: bracket table semantics
  - imss/params.go: contribution parameter semantics
  - benefits/benefits.go: plan floors
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/benefits"
	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/imss"
	"github.com/nomina/payroll-engine/isr"
	"github.com/nomina/payroll-engine/vacation"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// BundleJSON is the JSON representation of a full statutory configuration.
type BundleJSON struct {
	ISRTables      []TableJSON         `json:"isr_tables,omitempty"`
	SubsidyTables  []TableJSON         `json:"subsidy_tables,omitempty"`
	IMSSParameters []ParametersJSON    `json:"imss_parameters,omitempty"`
	Vacation       *EntitlementJSON    `json:"vacation,omitempty"`
	Plans          map[string]PlanJSON `json:"plans,omitempty"`
}

// TableJSON represents one published bracket table.
type TableJSON struct {
	FiscalYear int       `json:"fiscal_year"`
	Frequency  string    `json:"frequency"`
	Rows       []RowJSON `json:"rows"`
}

// RowJSON represents a bracket row. Upper omitted or empty means the row
// is the open-ended top bracket.
type RowJSON struct {
	Lower string `json:"lower"`
	Upper string `json:"upper,omitempty"`
	Base  string `json:"base"`
	Rate  string `json:"rate"`
}

// ParametersJSON represents one year's contribution parameters.
type ParametersJSON struct {
	FiscalYear  int              `json:"fiscal_year"`
	UMADaily    string           `json:"uma_daily"`
	MinimumWage string           `json:"minimum_wage"`
	CapUMAUnits int              `json:"cap_uma_units"`
	Worker      RateScheduleJSON `json:"worker"`
	Employer    RateScheduleJSON `json:"employer"`
}

// RateScheduleJSON represents one side's contribution rates. Absent rates
// parse as zero, which is how non-participating branches are expressed
// (workers owe nothing for nursery or housing).
type RateScheduleJSON struct {
	SicknessMaternityFixed  string `json:"sickness_maternity_fixed,omitempty"`
	SicknessMaternityExcess string `json:"sickness_maternity_excess,omitempty"`
	DisabilityLife          string `json:"disability_life,omitempty"`
	Retirement              string `json:"retirement,omitempty"`
	Nursery                 string `json:"nursery,omitempty"`
	Housing                 string `json:"housing,omitempty"`
	OccupationalRisk        string `json:"occupational_risk,omitempty"`
}

// EntitlementJSON represents the vacation entitlement schedule.
type EntitlementJSON struct {
	Base         []int `json:"base"`
	PlateauStep  int   `json:"plateau_step"`
	PlateauEvery int   `json:"plateau_every"`
}

// PlanJSON represents a named benefit plan.
type PlanJSON struct {
	AguinaldoDays       int    `json:"aguinaldo_days"`
	VacationPremiumRate string `json:"vacation_premium_rate"`
	ExtraVacationDays   int    `json:"extra_vacation_days,omitempty"`
}

// =============================================================================
// BUNDLE
// =============================================================================

// Bundle holds the registered configuration, ready to wire into a processor.
type Bundle struct {
	Tables       *isr.TableSet
	Parameters   *imss.ParameterSet
	Entitlements vacation.EntitlementTable
	Plans        map[string]benefits.Plan
}

// Vacations returns an entitlement engine over the bundle's schedule.
func (b *Bundle) Vacations() *vacation.Engine {
	return vacation.NewEngine(b.Entitlements)
}

// Plan returns a named plan, falling back to the statutory minimum when
// the bundle defines no plan under that name.
func (b *Bundle) Plan(name string) benefits.Plan {
	if p, ok := b.Plans[name]; ok {
		return p
	}
	return benefits.DefaultPlan()
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON statutory bundles to Go structs.
type ConfigFactory struct{}

// NewConfigFactory creates a new config factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseBundle parses a JSON string into a registered Bundle.
func (f *ConfigFactory) ParseBundle(jsonStr string) (*Bundle, error) {
	var bj BundleJSON
	if err := json.Unmarshal([]byte(jsonStr), &bj); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return f.FromJSON(bj)
}

// LoadBundle reads and parses a bundle from a JSON file.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return NewConfigFactory().ParseBundle(string(data))
}

// FromJSON converts a BundleJSON into a registered Bundle. Registration
// validates each table and parameter set, so an invalid bundle errors
// out instead of loading partially usable figures.
func (f *ConfigFactory) FromJSON(bj BundleJSON) (*Bundle, error) {
	bundle := &Bundle{
		Tables:       isr.NewTableSet(),
		Parameters:   imss.NewParameterSet(),
		Entitlements: vacation.DefaultEntitlements(),
		Plans:        make(map[string]benefits.Plan),
	}

	for _, tj := range bj.ISRTables {
		table, err := ParseTable(tj)
		if err != nil {
			return nil, err
		}
		if err := bundle.Tables.Register(table); err != nil {
			return nil, err
		}
	}

	for _, tj := range bj.SubsidyTables {
		table, err := ParseTable(tj)
		if err != nil {
			return nil, err
		}
		if err := bundle.Tables.RegisterSubsidy(table); err != nil {
			return nil, err
		}
	}

	for _, pj := range bj.IMSSParameters {
		params, err := ParseParameters(pj)
		if err != nil {
			return nil, err
		}
		if err := bundle.Parameters.Register(params); err != nil {
			return nil, err
		}
	}

	if bj.Vacation != nil {
		bundle.Entitlements = vacation.EntitlementTable{
			Base:         bj.Vacation.Base,
			PlateauStep:  bj.Vacation.PlateauStep,
			PlateauEvery: bj.Vacation.PlateauEvery,
		}
	}

	for name, pj := range bj.Plans {
		rate, err := parseRate(pj.VacationPremiumRate, "vacation_premium_rate")
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", name, err)
		}
		plan, err := benefits.NewPlan(pj.AguinaldoDays, rate, pj.ExtraVacationDays)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", name, err)
		}
		bundle.Plans[name] = plan
	}

	return bundle, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseTable converts one table definition. The caller registers it,
// which is where validation happens.
func ParseTable(tj TableJSON) (*isr.Table, error) {
	table := &isr.Table{
		FiscalYear: tj.FiscalYear,
		Frequency:  engine.PayFrequency(tj.Frequency),
	}
	for i, rj := range tj.Rows {
		row, err := parseRow(rj)
		if err != nil {
			return nil, fmt.Errorf("table %d/%s row %d: %w", tj.FiscalYear, tj.Frequency, i, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func parseRow(rj RowJSON) (isr.Row, error) {
	lower, err := parseMoney(rj.Lower, "lower")
	if err != nil {
		return isr.Row{}, err
	}
	base, err := parseMoney(rj.Base, "base")
	if err != nil {
		return isr.Row{}, err
	}
	rate, err := parseRate(rj.Rate, "rate")
	if err != nil {
		return isr.Row{}, err
	}
	row := isr.Row{
		LowerBound:   lower,
		BaseAmount:   base,
		MarginalRate: rate,
	}
	if rj.Upper != "" {
		upper, err := parseMoney(rj.Upper, "upper")
		if err != nil {
			return isr.Row{}, err
		}
		row.UpperBound = upper
	}
	return row, nil
}

// ParseParameters converts one year's parameter definition.
func ParseParameters(pj ParametersJSON) (imss.Parameters, error) {
	uma, err := parseMoney(pj.UMADaily, "uma_daily")
	if err != nil {
		return imss.Parameters{}, err
	}
	minWage, err := parseMoney(pj.MinimumWage, "minimum_wage")
	if err != nil {
		return imss.Parameters{}, err
	}
	worker, err := parseRateSchedule(pj.Worker)
	if err != nil {
		return imss.Parameters{}, fmt.Errorf("worker rates: %w", err)
	}
	employer, err := parseRateSchedule(pj.Employer)
	if err != nil {
		return imss.Parameters{}, fmt.Errorf("employer rates: %w", err)
	}
	return imss.Parameters{
		FiscalYear:  pj.FiscalYear,
		UMADaily:    uma,
		MinimumWage: minWage,
		CapUMAUnits: pj.CapUMAUnits,
		Worker:      worker,
		Employer:    employer,
	}, nil
}

func parseRateSchedule(rj RateScheduleJSON) (imss.RateSchedule, error) {
	var rs imss.RateSchedule
	fields := []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"sickness_maternity_fixed", rj.SicknessMaternityFixed, &rs.SicknessMaternityFixed},
		{"sickness_maternity_excess", rj.SicknessMaternityExcess, &rs.SicknessMaternityExcess},
		{"disability_life", rj.DisabilityLife, &rs.DisabilityLife},
		{"retirement", rj.Retirement, &rs.Retirement},
		{"nursery", rj.Nursery, &rs.Nursery},
		{"housing", rj.Housing, &rs.Housing},
		{"occupational_risk", rj.OccupationalRisk, &rs.OccupationalRisk},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		rate, err := parseRate(f.src, f.name)
		if err != nil {
			return imss.RateSchedule{}, err
		}
		*f.dst = rate
	}
	return rs, nil
}

func parseMoney(s, field string) (engine.Money, error) {
	if s == "" {
		return engine.ZeroMoney(), fmt.Errorf("%s: empty amount", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return engine.ZeroMoney(), fmt.Errorf("%s: invalid amount %q: %w", field, s, err)
	}
	return engine.NewMoneyFromDecimal(d), nil
}

func parseRate(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid rate %q: %w", field, s, err)
	}
	return d, nil
}
