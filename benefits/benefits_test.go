package benefits_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/benefits"
	"github.com/nomina/payroll-engine/engine"
)

// =============================================================================
// PLAN VALIDATION - Legal floors
// =============================================================================

func TestNewPlan_AcceptsFloorAndAbove(t *testing.T) {
	if _, err := benefits.NewPlan(15, engine.MustParseDecimal("0.25"), 0); err != nil {
		t.Fatalf("the legal floor itself must be accepted: %v", err)
	}
	if _, err := benefits.NewPlan(30, engine.MustParseDecimal("0.50"), 5); err != nil {
		t.Fatalf("a richer plan must be accepted: %v", err)
	}
}

func TestNewPlan_RejectsBelowFloor(t *testing.T) {
	// GIVEN: Plans below the statutory minimums
	// WHEN: Constructing
	// THEN: Rejected with ErrBelowLegalFloor before any amount is computed

	_, err := benefits.NewPlan(14, engine.MustParseDecimal("0.25"), 0)
	if !errors.Is(err, engine.ErrBelowLegalFloor) {
		t.Errorf("expected ErrBelowLegalFloor for 14 aguinaldo days, got %v", err)
	}

	_, err = benefits.NewPlan(15, engine.MustParseDecimal("0.20"), 0)
	if !errors.Is(err, engine.ErrBelowLegalFloor) {
		t.Errorf("expected ErrBelowLegalFloor for a 20%% premium, got %v", err)
	}

	var verr *engine.ValidationError
	_, err = benefits.NewPlan(15, engine.MustParseDecimal("0.25"), -1)
	if !errors.As(err, &verr) || verr.Code != "negative_extra_days" {
		t.Errorf("expected negative_extra_days, got %v", err)
	}
}

func TestDefaultPlan_IsTheLegalFloor(t *testing.T) {
	plan := benefits.DefaultPlan()
	if plan.AguinaldoDays != 15 {
		t.Errorf("expected 15 aguinaldo days, got %d", plan.AguinaldoDays)
	}
	if !plan.VacationPremiumRate.Equal(engine.MustParseDecimal("0.25")) {
		t.Errorf("expected 0.25 premium, got %s", plan.VacationPremiumRate)
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("the default plan must validate: %v", err)
	}
}

// =============================================================================
// ANNUAL BONUS (aguinaldo)
// =============================================================================

func TestAnnualBonus_FullYear(t *testing.T) {
	// GIVEN: An employee hired in a prior year, salary 500.00/day
	// WHEN: Computing the bonus at December 31st
	// THEN: The full 15 days: 7500.00, not prorated

	res, err := benefits.AnnualBonus(
		engine.MustParseMoney("500.00"),
		benefits.DefaultPlan(),
		engine.NewDate(2020, time.March, 1),
		engine.NewDate(2025, time.December, 31),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prorated {
		t.Error("a full year must not be marked prorated")
	}
	if !res.DaysCounted.Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected 15 days counted, got %s", res.DaysCounted)
	}
	if !res.Amount.Equal(engine.MustParseMoney("7500.00")) {
		t.Errorf("expected 7500.00, got %s", res.Amount)
	}
}

func TestAnnualBonus_NewHireProrates(t *testing.T) {
	// GIVEN: An employee hired July 1st, salary 650.50/day
	// WHEN: Computing the bonus at December 31st of the same year
	// THEN: 184 worked days: 15 * 184/365 = 7.5616 days, 4918.82

	res, err := benefits.AnnualBonus(
		engine.MustParseMoney("650.50"),
		benefits.DefaultPlan(),
		engine.NewDate(2025, time.July, 1),
		engine.NewDate(2025, time.December, 31),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Prorated {
		t.Error("a partial year must be marked prorated")
	}
	if !res.DaysCounted.Equal(engine.MustParseDecimal("7.5616")) {
		t.Errorf("expected 7.5616 days counted, got %s", res.DaysCounted)
	}
	if !res.Amount.Equal(engine.MustParseMoney("4918.82")) {
		t.Errorf("expected 4918.82, got %s", res.Amount)
	}
}

func TestAnnualBonus_MidYearSettlement(t *testing.T) {
	// GIVEN: A prior-year hire settled mid-year (June 30th)
	// WHEN: Computing the bonus
	// THEN: Counts from January 1st: 181 days, 15 * 181/365 = 7.4384 days

	res, err := benefits.AnnualBonus(
		engine.MustParseMoney("500.00"),
		benefits.DefaultPlan(),
		engine.NewDate(2021, time.October, 18),
		engine.NewDate(2025, time.June, 30),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.DaysCounted.Equal(engine.MustParseDecimal("7.4384")) {
		t.Errorf("expected 7.4384 days counted, got %s", res.DaysCounted)
	}
	if !res.Amount.Equal(engine.MustParseMoney("3719.20")) {
		t.Errorf("expected 3719.20, got %s", res.Amount)
	}
}

func TestAnnualBonus_RicherPlanScales(t *testing.T) {
	plan, err := benefits.NewPlan(30, engine.MustParseDecimal("0.25"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := benefits.AnnualBonus(
		engine.MustParseMoney("400.00"),
		plan,
		engine.NewDate(2019, time.May, 2),
		engine.NewDate(2025, time.December, 31),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Amount.Equal(engine.MustParseMoney("12000.00")) {
		t.Errorf("expected 12000.00, got %s", res.Amount)
	}
}

func TestAnnualBonus_Rejections(t *testing.T) {
	salary := engine.MustParseMoney("500.00")
	hire := engine.NewDate(2024, time.January, 1)

	_, err := benefits.AnnualBonus(salary, benefits.Plan{AguinaldoDays: 10, VacationPremiumRate: engine.MustParseDecimal("0.25")}, hire, engine.NewDate(2025, time.June, 1))
	if !errors.Is(err, engine.ErrBelowLegalFloor) {
		t.Errorf("expected ErrBelowLegalFloor, got %v", err)
	}

	_, err = benefits.AnnualBonus(engine.MustParseMoney("-1"), benefits.DefaultPlan(), hire, engine.NewDate(2025, time.June, 1))
	if !errors.Is(err, engine.ErrNegativeSalary) {
		t.Errorf("expected ErrNegativeSalary, got %v", err)
	}

	var verr *engine.ValidationError
	_, err = benefits.AnnualBonus(salary, benefits.DefaultPlan(), hire, engine.NewDate(2023, time.June, 1))
	if !errors.As(err, &verr) || verr.Code != "as_of_before_hire" {
		t.Errorf("expected as_of_before_hire, got %v", err)
	}
}

// =============================================================================
// VACATION PREMIUM
// =============================================================================

func TestVacationPremium(t *testing.T) {
	// 500.00 * 12 days * 25%
	got := benefits.VacationPremium(
		engine.MustParseMoney("500.00"),
		decimal.NewFromInt(12),
		engine.MustParseDecimal("0.25"),
	)
	if !got.Equal(engine.MustParseMoney("1500.00")) {
		t.Errorf("expected 1500.00, got %s", got)
	}
}

func TestVacationPremium_FractionalDays(t *testing.T) {
	// A prorated entitlement flows straight through: 278.80 * 8.0658 * 0.25
	got := benefits.VacationPremium(
		engine.MustParseMoney("278.80"),
		engine.MustParseDecimal("8.0658"),
		engine.MustParseDecimal("0.25"),
	)
	if !got.Equal(engine.MustParseMoney("562.19")) {
		t.Errorf("expected 562.19, got %s", got)
	}
}
