package engine_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func mustMoney(t *testing.T, s string) engine.Money {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad money literal %q: %v", s, err)
	}
	return engine.NewMoneyFromDecimal(d)
}

func assertMoney(t *testing.T, got engine.Money, want string) {
	t.Helper()
	if !got.Value.Equal(engine.MustParseDecimal(want)) {
		t.Errorf("expected %s, got %s", want, got.Value)
	}
}

// =============================================================================
// MONEY TESTS
// =============================================================================

func TestMoney_Round2_HalfAwayFromZero(t *testing.T) {
	// GIVEN: Amounts sitting exactly on the half-centavo boundary
	// WHEN: Rounding to centavos
	// THEN: The half rounds away from zero in both directions

	assertMoney(t, mustMoney(t, "10.005").Round2(), "10.01")
	assertMoney(t, mustMoney(t, "-10.005").Round2(), "-10.01")
	assertMoney(t, mustMoney(t, "10.004").Round2(), "10.00")
}

func TestMoney_Arithmetic_KeepsDecimalPrecision(t *testing.T) {
	// GIVEN: A daily salary multiplied by a statutory rate
	// WHEN: Performing the classic float-hostile operations
	// THEN: Results carry exact decimal digits

	salary := mustMoney(t, "278.80")

	gross := salary.MulInt(15)
	assertMoney(t, gross, "4182")

	premium := gross.Mul(engine.MustParseDecimal("0.25"))
	assertMoney(t, premium, "1045.5")

	hourly := salary.Div(decimal.NewFromInt(8))
	assertMoney(t, hourly, "34.85")
}

func TestMoney_MinMax(t *testing.T) {
	a := mustMoney(t, "100")
	b := mustMoney(t, "200")

	assertMoney(t, a.Min(b), "100")
	assertMoney(t, a.Max(b), "200")
	assertMoney(t, a.Min(a), "100")
}

func TestMoney_JSONRoundTrip_ExactDigits(t *testing.T) {
	// GIVEN: An amount with 4 fraction digits (an integration factor base)
	// WHEN: Marshaling and unmarshaling
	// THEN: The decimal survives without float drift

	original := mustMoney(t, "113.1400")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"113.14"` {
		t.Errorf("expected quoted decimal string, got %s", data)
	}

	var restored engine.Money
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Equal(original) {
		t.Errorf("round trip changed value: %s -> %s", original, restored)
	}
}

func TestMustParseDecimal_PanicsOnInvalidLiteral(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an invalid decimal literal")
		}
	}()
	engine.MustParseDecimal("not-a-number")
}

func TestMoney_UnmarshalJSON_RejectsGarbage(t *testing.T) {
	var m engine.Money
	if err := json.Unmarshal([]byte(`"not-a-number"`), &m); err == nil {
		t.Error("expected error for non-numeric string")
	}
	if err := json.Unmarshal([]byte(`42`), &m); err == nil {
		t.Error("expected error for unquoted number")
	}
}

// =============================================================================
// DATE TESTS
// =============================================================================

func TestDate_ParseDate(t *testing.T) {
	d := engine.ParseDate("2025-03-15")
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 15 {
		t.Errorf("expected 2025-03-15, got %s", d)
	}
	if !engine.ParseDate("15/03/2025").IsZero() {
		t.Error("expected zero date for unsupported layout")
	}
}

func TestDate_CompletedYears(t *testing.T) {
	// GIVEN: A hire date and various as-of dates
	// WHEN: Counting completed 365-day years
	// THEN: Partial years floor to the previous whole year

	hire := engine.NewDate(2020, time.March, 1)

	cases := []struct {
		asOf engine.Date
		want int
	}{
		{engine.NewDate(2020, time.March, 1), 0},
		{engine.NewDate(2021, time.February, 28), 0},
		{engine.NewDate(2021, time.March, 1), 1},
		{engine.NewDate(2025, time.March, 1), 5},
		{engine.NewDate(2019, time.March, 1), 0}, // before hire
	}
	for _, c := range cases {
		if got := engine.CompletedYears(hire, c.asOf); got != c.want {
			t.Errorf("CompletedYears(%s, %s) = %d, expected %d", hire, c.asOf, got, c.want)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := engine.NewDate(2025, time.December, 31)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-12-31"` {
		t.Errorf("expected \"2025-12-31\", got %s", data)
	}

	var restored engine.Date
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Equal(d) {
		t.Errorf("round trip changed date: %s -> %s", d, restored)
	}
}

func TestDateSpan_InclusiveDays(t *testing.T) {
	// GIVEN: A calendar month span
	// WHEN: Counting days
	// THEN: Both endpoints count

	jan := engine.DateSpan{
		Start: engine.NewDate(2025, time.January, 1),
		End:   engine.NewDate(2025, time.January, 31),
	}
	if got := jan.Days(); got != 31 {
		t.Errorf("expected 31 days, got %d", got)
	}

	single := engine.DateSpan{Start: jan.Start, End: jan.Start}
	if got := single.Days(); got != 1 {
		t.Errorf("expected 1 day for a single-day span, got %d", got)
	}
}

func TestDateSpan_Contains(t *testing.T) {
	span := engine.DateSpan{
		Start: engine.NewDate(2025, time.June, 1),
		End:   engine.NewDate(2025, time.June, 15),
	}

	if !span.Contains(engine.NewDate(2025, time.June, 1)) {
		t.Error("expected start to be contained")
	}
	if !span.Contains(engine.NewDate(2025, time.June, 15)) {
		t.Error("expected end to be contained")
	}
	if span.Contains(engine.NewDate(2025, time.June, 16)) {
		t.Error("expected day after end to be excluded")
	}
}

func TestDateSpan_Valid(t *testing.T) {
	good := engine.DateSpan{
		Start: engine.NewDate(2025, time.June, 2),
		End:   engine.NewDate(2025, time.June, 1),
	}
	if good.Valid() {
		t.Error("expected inverted span to be invalid")
	}
	if (engine.DateSpan{}).Valid() {
		t.Error("expected zero span to be invalid")
	}
}

// =============================================================================
// PAY PERIOD TESTS
// =============================================================================

func TestPayPeriod_FiscalYear_FollowsPayDate(t *testing.T) {
	// GIVEN: A period worked in December but paid in January
	// WHEN: Resolving the fiscal year
	// THEN: The pay date decides which tables apply

	p := engine.PayPeriod{
		Start:     engine.NewDate(2025, time.December, 16),
		End:       engine.NewDate(2025, time.December, 31),
		PayDate:   engine.NewDate(2026, time.January, 2),
		Frequency: engine.FrequencySemimonthly,
	}
	if got := p.FiscalYear(); got != 2026 {
		t.Errorf("expected fiscal year 2026, got %d", got)
	}

	p.PayDate = engine.Date{}
	if got := p.FiscalYear(); got != 2025 {
		t.Errorf("expected fallback to end year 2025, got %d", got)
	}
}

func TestPayPeriod_Validate(t *testing.T) {
	valid := engine.PayPeriod{
		Start:     engine.NewDate(2025, time.January, 1),
		End:       engine.NewDate(2025, time.January, 31),
		Frequency: engine.FrequencyMonthly,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inverted := valid
	inverted.Start, inverted.End = inverted.End, inverted.Start
	if err := inverted.Validate(); !errors.Is(err, engine.ErrInvalidSpan) {
		t.Errorf("expected ErrInvalidSpan, got %v", err)
	}

	badFreq := valid
	badFreq.Frequency = "quarterly"
	var verr *engine.ValidationError
	if err := badFreq.Validate(); !errors.As(err, &verr) || verr.Code != "unknown_frequency" {
		t.Errorf("expected unknown_frequency, got %v", err)
	}
}

// =============================================================================
// SNAPSHOT AND INCIDENCE VALIDATION
// =============================================================================

func TestEmployeeSnapshot_Validate(t *testing.T) {
	base := engine.EmployeeSnapshot{
		ID:          "emp-1",
		Name:        "Rosa Jiménez",
		DailySalary: mustMoney(t, "278.80"),
		HireDate:    engine.NewDate(2022, time.January, 10),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	negative := base
	negative.DailySalary = mustMoney(t, "-1")
	if err := negative.Validate(); !errors.Is(err, engine.ErrNegativeSalary) {
		t.Errorf("expected ErrNegativeSalary, got %v", err)
	}

	noHire := base
	noHire.HireDate = engine.Date{}
	var verr *engine.ValidationError
	if err := noHire.Validate(); !errors.As(err, &verr) || verr.Code != "missing_hire_date" {
		t.Errorf("expected missing_hire_date, got %v", err)
	}

	lowFactor := base
	f := engine.MustParseDecimal("0.9")
	lowFactor.IntegrationFactor = &f
	if err := lowFactor.Validate(); !errors.As(err, &verr) || verr.Code != "integration_factor_below_one" {
		t.Errorf("expected integration_factor_below_one, got %v", err)
	}
}

func TestIncidence_Validate(t *testing.T) {
	span := engine.DateSpan{
		Start: engine.NewDate(2025, time.June, 2),
		End:   engine.NewDate(2025, time.June, 4),
	}

	good := engine.Incidence{Kind: engine.IncidenceAbsence, Span: span, Quantity: decimal.NewFromInt(3)}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var verr *engine.ValidationError

	unknown := good
	unknown.Kind = "sabbatical"
	if err := unknown.Validate(); !errors.As(err, &verr) || verr.Code != "unknown_incidence_kind" {
		t.Errorf("expected unknown_incidence_kind, got %v", err)
	}

	negative := good
	negative.Quantity = decimal.NewFromInt(-1)
	if err := negative.Validate(); !errors.As(err, &verr) || verr.Code != "negative_incidence" {
		t.Errorf("expected negative_incidence, got %v", err)
	}
}

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

func TestErrorTaxonomy_Classification(t *testing.T) {
	// GIVEN: The structured error types
	// WHEN: Classifying through the helper predicates
	// THEN: Each unwraps to its sentinel and only its sentinel

	cfg := &engine.ConfigurationError{Missing: "bracket table", FiscalYear: 2025, Frequency: engine.FrequencyMonthly}
	if !engine.IsConfiguration(cfg) {
		t.Error("expected ConfigurationError to classify as configuration")
	}
	if engine.IsValidation(cfg) {
		t.Error("ConfigurationError must not classify as validation")
	}

	val := &engine.ValidationError{Code: "negative_salary", Message: "emp-1", Err: engine.ErrNegativeSalary}
	if !engine.IsValidation(val) {
		t.Error("expected ValidationError to classify as validation")
	}
	if !errors.Is(val, engine.ErrNegativeSalary) {
		t.Error("expected wrapped sentinel to surface through errors.Is")
	}

	bare := &engine.ValidationError{Code: "unknown_frequency", Message: "quarterly"}
	if !errors.Is(bare, engine.ErrValidation) {
		t.Error("expected bare ValidationError to unwrap to ErrValidation")
	}
}

func TestConfigurationError_Message(t *testing.T) {
	withFreq := &engine.ConfigurationError{Missing: "bracket table", FiscalYear: 2025, Frequency: engine.FrequencyMonthly}
	if got := withFreq.Error(); got != "no bracket table published for fiscal year 2025, frequency monthly" {
		t.Errorf("unexpected message: %q", got)
	}

	yearOnly := &engine.ConfigurationError{Missing: "contribution parameters", FiscalYear: 2025}
	if got := yearOnly.Error(); got != "no contribution parameters published for fiscal year 2025" {
		t.Errorf("unexpected message: %q", got)
	}
}
