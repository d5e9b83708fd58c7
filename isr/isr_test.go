package isr_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/isr"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================
// A compact three-bracket table keeps the arithmetic checkable by hand:
//
//   0.01 .. 1000.00      base     0.00   rate 10%
//   1000.01 .. 5000.00   base   100.00   rate 20%
//   5000.01 .. open      base   900.00   rate 30%

func row(lower, upper, base, rate string) isr.Row {
	return isr.Row{
		LowerBound:   engine.MustParseMoney(lower),
		UpperBound:   engine.MustParseMoney(upper),
		BaseAmount:   engine.MustParseMoney(base),
		MarginalRate: engine.MustParseDecimal(rate),
	}
}

func testTable() *isr.Table {
	return &isr.Table{
		FiscalYear: 2025,
		Frequency:  engine.FrequencyMonthly,
		Rows: []isr.Row{
			row("0.01", "1000.00", "0", "0.10"),
			row("1000.01", "5000.00", "100.00", "0.20"),
			row("5000.01", "0", "900.00", "0.30"),
		},
	}
}

func testSubsidyTable() *isr.Table {
	return &isr.Table{
		FiscalYear: 2025,
		Frequency:  engine.FrequencyMonthly,
		Rows: []isr.Row{
			row("0.01", "2000.00", "500.00", "0"),
			row("2000.01", "0", "0", "0"),
		},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError %s, got %v", code, err)
	}
	if verr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, verr.Code, verr.Message)
	}
}

// =============================================================================
// TABLE VALIDATION
// =============================================================================

func TestTable_Validate_AcceptsContiguousRows(t *testing.T) {
	if err := testTable().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTable_Validate_RejectsBoundedLastRow(t *testing.T) {
	// GIVEN: A table whose last row carries an upper bound
	// WHEN: Validating
	// THEN: Rejected; amounts above the bound would have no bracket

	table := testTable()
	table.Rows[2].UpperBound = engine.MustParseMoney("99999.99")
	assertCode(t, table.Validate(), "bounded_last_row")
}

func TestTable_Validate_RejectsOpenRowBeforeLast(t *testing.T) {
	table := testTable()
	table.Rows[0].UpperBound = engine.ZeroMoney()
	assertCode(t, table.Validate(), "open_row_not_last")
}

func TestTable_Validate_RejectsGapBetweenRows(t *testing.T) {
	// GIVEN: Rows where the next lower bound skips more than one centavo
	// WHEN: Validating
	// THEN: Rejected; an amount could fall between brackets

	table := testTable()
	table.Rows[1].LowerBound = engine.MustParseMoney("1000.05")
	assertCode(t, table.Validate(), "non_contiguous_rows")
}

func TestTable_Validate_RejectsOverlappingRows(t *testing.T) {
	table := testTable()
	table.Rows[1].LowerBound = engine.MustParseMoney("999.00")
	assertCode(t, table.Validate(), "non_contiguous_rows")
}

func TestTable_Validate_RejectsInvertedRow(t *testing.T) {
	table := testTable()
	table.Rows[0].UpperBound = engine.MustParseMoney("0.001")
	assertCode(t, table.Validate(), "inverted_row")
}

func TestTable_Validate_RejectsEmptyAndUnknownFrequency(t *testing.T) {
	empty := &isr.Table{FiscalYear: 2025, Frequency: engine.FrequencyMonthly}
	assertCode(t, empty.Validate(), "empty_table")

	table := testTable()
	table.Frequency = "quarterly"
	assertCode(t, table.Validate(), "unknown_frequency")
}

// =============================================================================
// BRACKET RESOLUTION
// =============================================================================

func TestTable_Resolve_Brackets(t *testing.T) {
	table := testTable()

	cases := []struct {
		name     string
		amount   string
		wantIdx  int
		wantBase string
	}{
		// zero sits below the first lower bound: first row, zero excess
		{"zero", "0", 0, "0"},
		// top of the first bracket: excess 999.99 at 10%
		{"first bracket upper bound", "1000.00", 0, "99.999"},
		// one centavo more crosses into the second bracket, zero excess
		{"second bracket lower bound", "1000.01", 1, "100.00"},
		// mid bracket: 100 + (3000 - 1000.01) * 0.20
		{"mid second bracket", "3000.00", 1, "499.998"},
		// far beyond every closed bound: open-ended last row catches it
		{"open-ended row", "1000000.00", 2, "299399.997"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := table.Resolve(engine.MustParseMoney(c.amount))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.RowIndex != c.wantIdx {
				t.Errorf("expected row %d, got %d", c.wantIdx, res.RowIndex)
			}
			if !res.BaseTax.Equal(engine.MustParseMoney(c.wantBase)) {
				t.Errorf("expected base tax %s, got %s", c.wantBase, res.BaseTax.Value)
			}
		})
	}
}

func TestTable_Resolve_RejectsNegativeAmount(t *testing.T) {
	_, err := testTable().Resolve(engine.MustParseMoney("-1"))
	assertCode(t, err, "negative_amount")
}

// =============================================================================
// WITHHOLDING - Subsidy application and the clamp
// =============================================================================

func TestWithhold_SubsidyReducesTax(t *testing.T) {
	// GIVEN: Gross pay in the second bracket, past the subsidy band
	// WHEN: Withholding
	// THEN: Net tax equals bracket tax minus the (zero) allowance

	w, err := isr.Withhold(testTable(), testSubsidyTable(), engine.MustParseMoney("3000.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.NetTax.Equal(engine.MustParseMoney("499.998")) {
		t.Errorf("expected net tax 499.998, got %s", w.NetTax.Value)
	}
	if w.Clamped {
		t.Error("clamp must not fire when tax exceeds subsidy")
	}
}

func TestWithhold_ClampsSubsidyExcess(t *testing.T) {
	// GIVEN: Low gross pay where the allowance exceeds the bracket tax
	// WHEN: Withholding
	// THEN: Net tax floors at zero and the clamp is recorded

	w, err := isr.Withhold(testTable(), testSubsidyTable(), engine.MustParseMoney("500.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.NetTax.IsZero() {
		t.Errorf("expected zero net tax, got %s", w.NetTax.Value)
	}
	if !w.Clamped {
		t.Error("expected the clamp to be recorded")
	}
	if !w.Subsidy.Equal(engine.MustParseMoney("500.00")) {
		t.Errorf("expected subsidy 500.00, got %s", w.Subsidy.Value)
	}
}

func TestWithhold_NilSubsidyTable(t *testing.T) {
	w, err := isr.Withhold(testTable(), nil, engine.MustParseMoney("3000.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Subsidy.IsZero() {
		t.Errorf("expected zero subsidy, got %s", w.Subsidy.Value)
	}
	if !w.NetTax.Equal(engine.MustParseMoney("499.998")) {
		t.Errorf("expected net tax 499.998, got %s", w.NetTax.Value)
	}
}

func TestWithhold_NetTaxMonotonic(t *testing.T) {
	// GIVEN: The fixture tax and subsidy tables
	// WHEN: Sweeping gross amounts upward in uneven 1.37 steps across all
	//       three brackets and the subsidy band
	// THEN: Net tax never decreases and never goes negative
	table := testTable()
	subsidy := testSubsidyTable()

	prev := engine.ZeroMoney()
	for cents := int64(0); cents <= 1_000_000; cents += 137 {
		gross := engine.NewMoneyFromDecimal(decimal.New(cents, -2))
		w, err := isr.Withhold(table, subsidy, gross)
		if err != nil {
			t.Fatalf("withhold at %s: %v", gross.Value, err)
		}
		if w.NetTax.IsNegative() {
			t.Fatalf("negative net tax %s at %s", w.NetTax.Value, gross.Value)
		}
		if w.NetTax.LessThan(prev) {
			t.Fatalf("net tax decreased from %s to %s at %s", prev.Value, w.NetTax.Value, gross.Value)
		}
		prev = w.NetTax
	}
}

func TestWithhold_NetTaxMonotonicAtBoundaries(t *testing.T) {
	// The bracket edges and the allowance step-down at 2000.00/2000.01,
	// where the 500.00 subsidy vanishes, in increasing order. A fixed-step
	// sweep never lands exactly on these.
	amounts := []string{
		"0", "0.01", "999.99", "1000.00", "1000.01",
		"1999.99", "2000.00", "2000.01",
		"4999.99", "5000.00", "5000.01", "10000.00",
	}

	table := testTable()
	subsidy := testSubsidyTable()
	prev := engine.ZeroMoney()
	for _, s := range amounts {
		w, err := isr.Withhold(table, subsidy, engine.MustParseMoney(s))
		if err != nil {
			t.Fatalf("withhold at %s: %v", s, err)
		}
		if w.NetTax.IsNegative() {
			t.Fatalf("negative net tax %s at %s", w.NetTax.Value, s)
		}
		if w.NetTax.LessThan(prev) {
			t.Fatalf("net tax decreased from %s to %s at %s", prev.Value, w.NetTax.Value, s)
		}
		prev = w.NetTax
	}
}

// =============================================================================
// TABLE SET - Published-table registry
// =============================================================================

func TestTableSet_RegisterAndLookup(t *testing.T) {
	set := isr.NewTableSet()
	if err := set.Register(testTable()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := set.RegisterSubsidy(testSubsidyTable()); err != nil {
		t.Fatalf("register subsidy: %v", err)
	}

	table, err := set.Lookup(2025, engine.FrequencyMonthly)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if table.FiscalYear != 2025 {
		t.Errorf("expected fiscal year 2025, got %d", table.FiscalYear)
	}
}

func TestTableSet_RegisteredTablesAreImmutable(t *testing.T) {
	// GIVEN: A published table for (2025, monthly)
	// WHEN: Publishing a second table for the same identity
	// THEN: Rejected; published tables are superseded, never replaced

	set := isr.NewTableSet()
	if err := set.Register(testTable()); err != nil {
		t.Fatalf("register: %v", err)
	}
	assertCode(t, set.Register(testTable()), "table_already_published")
}

func TestTableSet_LookupMiss_IsConfigurationError(t *testing.T) {
	set := isr.NewTableSet()

	_, err := set.Lookup(2025, engine.FrequencyMonthly)
	if !engine.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	_, err = set.LookupSubsidy(2025, engine.FrequencyMonthly)
	if !engine.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTableSet_RejectsInvalidTableOnRegister(t *testing.T) {
	set := isr.NewTableSet()
	table := testTable()
	table.Rows[2].UpperBound = engine.MustParseMoney("99999.99")
	assertCode(t, set.Register(table), "bounded_last_row")
}

func TestCalculator_Withhold_ResolvesThroughRegistry(t *testing.T) {
	set := isr.NewTableSet()
	if err := set.Register(testTable()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := set.RegisterSubsidy(testSubsidyTable()); err != nil {
		t.Fatalf("register subsidy: %v", err)
	}

	calc := isr.NewCalculator(set)

	w, err := calc.Withhold(2025, engine.FrequencyMonthly, engine.MustParseMoney("3000.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.NetTax.Equal(engine.MustParseMoney("499.998")) {
		t.Errorf("expected net tax 499.998, got %s", w.NetTax.Value)
	}

	if _, err := calc.Withhold(2030, engine.FrequencyMonthly, engine.MustParseMoney("1")); !engine.IsConfiguration(err) {
		t.Errorf("expected configuration error for unpublished year, got %v", err)
	}
}
