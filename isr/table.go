/*
Package isr implements the income-tax withholding calculator.

PURPOSE:
  Resolves gross taxable pay against the statutory ISR bracket table for a
  fiscal year and pay frequency, applies the employment subsidy, and yields
  the net withholding.

KEY CONCEPTS IN THIS FILE (table.go):
  - Row: one closed bracket {lower, upper, base amount, marginal rate}
  - Table: the ordered, contiguous row set for one (year, frequency)
  - TableSet: the published-table registry; lookups fail loudly

SHARED REPRESENTATION:
  The employment-subsidy table uses the same Row/Table shape: its rows
  carry the subsidy allowance in BaseAmount and a zero marginal rate.
  One resolution algorithm serves both tables.

IMMUTABILITY:
  A published table is legal record. The TableSet refuses to re-register
  an existing (year, frequency): a new fiscal year requires a new table,
  published rows are never edited in place.

ALGORITHM:
  Find the unique row with lower <= amount <= upper; the last row is
  open-ended, so any amount beyond the highest closed bound lands there
  rather than erroring. Then:

    excess       = amount - lower   (clamped at zero for the first row)
    marginal_tax = excess * marginal_rate
    base_tax     = base_amount + marginal_tax

SEE ALSO:
  - calculator.go: subsidy application and the net-withholding clamp
  - factory/: loads these tables from configuration data
*/
package isr

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
)

// =============================================================================
// ROW - One bracket
// =============================================================================

type Row struct {
	LowerBound engine.Money
	// UpperBound is inclusive. The zero value marks the open-ended last
	// row; every amount above the highest closed bound resolves there.
	UpperBound   engine.Money
	BaseAmount   engine.Money
	MarginalRate decimal.Decimal
}

// OpenEnded reports whether this row has no upper bound.
func (r Row) OpenEnded() bool { return r.UpperBound.IsZero() }

// =============================================================================
// TABLE - Ordered row set, identity (fiscal year, pay frequency)
// =============================================================================

type Table struct {
	FiscalYear int
	Frequency  engine.PayFrequency
	Rows       []Row
}

// centStep is the smallest statutory unit: consecutive rows satisfy
// next.lower == prev.upper + 0.01 (or tile exactly).
var centStep = engine.MustParseDecimal("0.01")

// Validate checks ordering, contiguity and the open-ended last row.
func (t *Table) Validate() error {
	if len(t.Rows) == 0 {
		return &engine.ValidationError{Code: "empty_table", Message: t.ident()}
	}
	if !t.Frequency.Valid() {
		return &engine.ValidationError{Code: "unknown_frequency", Message: string(t.Frequency)}
	}
	for i, row := range t.Rows {
		last := i == len(t.Rows)-1
		if row.OpenEnded() && !last {
			return &engine.ValidationError{
				Code:    "open_row_not_last",
				Message: fmt.Sprintf("%s row %d has no upper bound", t.ident(), i),
			}
		}
		if !last {
			if !row.UpperBound.GreaterThan(row.LowerBound) {
				return &engine.ValidationError{
					Code:    "inverted_row",
					Message: fmt.Sprintf("%s row %d: upper %s <= lower %s", t.ident(), i, row.UpperBound, row.LowerBound),
				}
			}
			gap := t.Rows[i+1].LowerBound.Sub(row.UpperBound)
			if gap.IsNegative() || gap.Value.GreaterThan(centStep) {
				return &engine.ValidationError{
					Code:    "non_contiguous_rows",
					Message: fmt.Sprintf("%s rows %d..%d: upper %s, next lower %s", t.ident(), i, i+1, row.UpperBound, t.Rows[i+1].LowerBound),
				}
			}
		}
	}
	if !t.Rows[len(t.Rows)-1].OpenEnded() {
		return &engine.ValidationError{
			Code:    "bounded_last_row",
			Message: fmt.Sprintf("%s last row must be open-ended", t.ident()),
		}
	}
	return nil
}

// Resolve finds the unique row for the amount and computes the bracket tax.
// A negative amount is rejected; an amount of exactly zero resolves to the
// first row with zero excess (and therefore zero marginal tax).
func (t *Table) Resolve(amount engine.Money) (Resolution, error) {
	if amount.IsNegative() {
		return Resolution{}, &engine.ValidationError{
			Code:    "negative_amount",
			Message: fmt.Sprintf("cannot resolve %s against %s", amount, t.ident()),
		}
	}
	if len(t.Rows) == 0 {
		return Resolution{}, &engine.ConfigurationError{Missing: "bracket rows", FiscalYear: t.FiscalYear, Frequency: t.Frequency}
	}

	idx := len(t.Rows) - 1 // open-ended catch-all
	for i, row := range t.Rows {
		if amount.LessThan(row.LowerBound) {
			// below the first lower bound (e.g. exactly zero against a
			// table starting at 0.01): the first row applies
			idx = i
			break
		}
		if row.OpenEnded() || !amount.GreaterThan(row.UpperBound) {
			idx = i
			break
		}
	}

	row := t.Rows[idx]
	excess := amount.Sub(row.LowerBound)
	if excess.IsNegative() {
		excess = engine.ZeroMoney()
	}
	marginal := excess.Mul(row.MarginalRate)
	return Resolution{
		Row:         row,
		RowIndex:    idx,
		Excess:      excess,
		MarginalTax: marginal,
		BaseTax:     row.BaseAmount.Add(marginal),
	}, nil
}

func (t *Table) ident() string {
	return fmt.Sprintf("table %d/%s", t.FiscalYear, t.Frequency)
}

// Resolution is the outcome of one bracket lookup.
type Resolution struct {
	Row         Row
	RowIndex    int
	Excess      engine.Money
	MarginalTax engine.Money
	BaseTax     engine.Money
}

// =============================================================================
// TABLE SET - Published-table registry
// =============================================================================

type tableKey struct {
	year int
	freq engine.PayFrequency
}

// TableSet holds the published tax and subsidy tables. Registration is
// insert-only; lookups for an unpublished (year, frequency) fail with a
// ConfigurationError rather than defaulting.
type TableSet struct {
	mu      sync.RWMutex
	tax     map[tableKey]*Table
	subsidy map[tableKey]*Table
}

func NewTableSet() *TableSet {
	return &TableSet{
		tax:     make(map[tableKey]*Table),
		subsidy: make(map[tableKey]*Table),
	}
}

// Register publishes a tax table. Re-publishing an existing identity fails:
// published rows are superseded by a new fiscal year, never replaced.
func (ts *TableSet) Register(t *Table) error {
	return ts.register(ts.tax, "bracket table", t)
}

// RegisterSubsidy publishes an employment-subsidy table.
func (ts *TableSet) RegisterSubsidy(t *Table) error {
	return ts.register(ts.subsidy, "subsidy table", t)
}

func (ts *TableSet) register(m map[tableKey]*Table, what string, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()

	key := tableKey{year: t.FiscalYear, freq: t.Frequency}
	if _, exists := m[key]; exists {
		return &engine.ValidationError{
			Code:    "table_already_published",
			Message: fmt.Sprintf("%s for %d/%s is published and immutable", what, t.FiscalYear, t.Frequency),
		}
	}
	m[key] = t
	return nil
}

// Lookup returns the tax table for (year, frequency).
func (ts *TableSet) Lookup(year int, freq engine.PayFrequency) (*Table, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if t, ok := ts.tax[tableKey{year: year, freq: freq}]; ok {
		return t, nil
	}
	return nil, &engine.ConfigurationError{Missing: "bracket table", FiscalYear: year, Frequency: freq}
}

// LookupSubsidy returns the subsidy table for (year, frequency).
func (ts *TableSet) LookupSubsidy(year int, freq engine.PayFrequency) (*Table, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if t, ok := ts.subsidy[tableKey{year: year, freq: freq}]; ok {
		return t, nil
	}
	return nil, &engine.ConfigurationError{Missing: "subsidy table", FiscalYear: year, Frequency: freq}
}

// All returns every published table, tax and subsidy, ordered by year
// then frequency.
func (ts *TableSet) All() (tax, subsidy []*Table) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return sortedTables(ts.tax), sortedTables(ts.subsidy)
}

func sortedTables(m map[tableKey]*Table) []*Table {
	out := make([]*Table, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FiscalYear != out[j].FiscalYear {
			return out[i].FiscalYear < out[j].FiscalYear
		}
		return out[i].Frequency < out[j].Frequency
	})
	return out
}
