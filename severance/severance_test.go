package severance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/benefits"
	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/imss"
	"github.com/nomina/payroll-engine/severance"
	"github.com/nomina/payroll-engine/vacation"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================
// A minimum wage of 100.00 makes the seniority-premium cap (2x minimum)
// an easy 200.00.

func newCalculator() *severance.Calculator {
	return severance.NewCalculator(vacation.NewEngine(vacation.DefaultEntitlements()))
}

func testInput(cause severance.Cause) severance.Input {
	return severance.Input{
		Snapshot: engine.EmployeeSnapshot{
			ID:          "emp-1",
			Name:        "Luis Hernández",
			DailySalary: engine.MustParseMoney("500.00"),
			HireDate:    engine.NewDate(2020, time.January, 1),
		},
		Plan:            benefits.DefaultPlan(),
		TerminationDate: engine.NewDate(2025, time.June, 30),
		Cause:           cause,
		Params: imss.Parameters{
			FiscalYear:  2025,
			UMADaily:    engine.MustParseMoney("100.00"),
			MinimumWage: engine.MustParseMoney("100.00"),
			CapUMAUnits: 25,
		},
	}
}

func assertAmount(t *testing.T, got engine.Money, want string) {
	t.Helper()
	if !got.Equal(engine.MustParseMoney(want)) {
		t.Errorf("expected %s, got %s", want, got.Value)
	}
}

// =============================================================================
// FINIQUITO - Due regardless of cause
// =============================================================================

func TestSettle_Resignation_FiniquitoOnly(t *testing.T) {
	// GIVEN: A resignation after five and a half years at 500.00/day
	// WHEN: Settling
	// THEN: Prorated bonus, owed vacation and premium; no liquidación

	s, err := newCalculator().Settle(testInput(severance.CauseResignation))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Liquidacion != nil {
		t.Fatal("resignation must not produce a liquidación")
	}

	// 181 days worked in the termination year: 15 * 181/365 = 7.4384 days
	if !s.Finiquito.BonusDays.Equal(engine.MustParseDecimal("7.4384")) {
		t.Errorf("expected 7.4384 bonus days, got %s", s.Finiquito.BonusDays)
	}
	assertAmount(t, s.Finiquito.ProratedBonus, "3719.20")

	// Year 5 (20 days) closed 2024-12-31, claimable through 2025-06-30;
	// year 6 (22 days) open, prorated 180/365: 10.8493. Years 1..4 are
	// past their claim window.
	if !s.Finiquito.OwedVacationDays.Equal(engine.MustParseDecimal("30.8493")) {
		t.Errorf("expected 30.8493 owed days, got %s", s.Finiquito.OwedVacationDays)
	}
	if !s.Finiquito.ExpiredUnusedDays.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected 60 expired days (12+14+16+18), got %s", s.Finiquito.ExpiredUnusedDays)
	}

	// 500 * 30.8493, then 25% premium on the pay
	assertAmount(t, s.Finiquito.ProratedVacationPay, "15424.65")
	assertAmount(t, s.Finiquito.VacationPremium, "3856.16")

	assertAmount(t, s.Total, "23000.01")
	if !s.Total.Equal(s.Finiquito.Subtotal()) {
		t.Error("total must equal the finiquito subtotal without a liquidación")
	}
}

func TestSettle_DaysTakenReduceOwedVacation(t *testing.T) {
	// GIVEN: The same employee with recorded consumption
	// WHEN: Settling
	// THEN: Taken days come off the owed count, floored at zero per period

	in := testInput(severance.CauseResignation)
	in.VacationDaysTaken = map[int]decimal.Decimal{
		5: decimal.NewFromInt(20), // year 5 fully consumed
		6: decimal.NewFromInt(4),  // part of the open year
	}

	s, err := newCalculator().Settle(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// open-year proration 10.8493 minus 4 taken
	if !s.Finiquito.OwedVacationDays.Equal(engine.MustParseDecimal("6.8493")) {
		t.Errorf("expected 6.8493 owed days, got %s", s.Finiquito.OwedVacationDays)
	}
}

func TestSettle_ContractExpiry_NoLiquidacion(t *testing.T) {
	s, err := newCalculator().Settle(testInput(severance.CauseContractExpiry))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Liquidacion != nil {
		t.Error("contract expiry must not produce a liquidación")
	}
}

// =============================================================================
// LIQUIDACION - Wrongful dismissal only
// =============================================================================

func TestSettle_WrongfulDismissal_AddsIndemnities(t *testing.T) {
	// GIVEN: A wrongful dismissal at 5 completed years, salary 500.00/day
	// WHEN: Settling
	// THEN: 90-day and 20-day-per-year indemnities on the SDI, plus the
	//       seniority premium on the capped wage

	s, err := newCalculator().Settle(testInput(severance.CauseWrongfulDismissal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Liquidacion == nil {
		t.Fatal("wrongful dismissal must produce a liquidación")
	}
	liq := s.Liquidacion

	if liq.CompletedYears != 5 {
		t.Errorf("expected 5 completed years, got %d", liq.CompletedYears)
	}

	// Seniority year 6 carries 22 vacation days, so the factor is
	// (365 + 15 + 22*0.25)/365 = 1.0562 and SDI = 528.10.
	assertAmount(t, liq.IntegratedDailySalary, "528.10")
	// 528.10 * 90
	assertAmount(t, liq.ConstitutionalIndemnity, "47529.00")
	// 528.10 * 20 * 5
	assertAmount(t, liq.YearsIndemnity, "52810.00")
	// wage capped at 2x minimum: 200.00 * 12 * 5
	assertAmount(t, liq.SeniorityPremium, "12000.00")

	assertAmount(t, liq.Subtotal(), "112339.00")
	if !s.Total.Equal(s.Finiquito.Subtotal().Add(liq.Subtotal())) {
		t.Error("total must be the sum of both subtotals")
	}
}

func TestSettle_SeniorityPremium_UncappedBelowTwiceMinimum(t *testing.T) {
	// GIVEN: A daily salary under twice the minimum wage
	// WHEN: Settling a wrongful dismissal
	// THEN: The premium uses the actual salary, not the cap

	in := testInput(severance.CauseWrongfulDismissal)
	in.Snapshot.DailySalary = engine.MustParseMoney("150.00")

	s, err := newCalculator().Settle(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 150.00 * 12 * 5
	assertAmount(t, s.Liquidacion.SeniorityPremium, "9000.00")
}

func TestSettle_SnapshotFactorOverridesDerived(t *testing.T) {
	// GIVEN: A snapshot carrying an explicit integration factor
	// WHEN: Settling a wrongful dismissal
	// THEN: The explicit factor wins over the plan-derived one

	in := testInput(severance.CauseWrongfulDismissal)
	f := engine.MustParseDecimal("1.5")
	in.Snapshot.IntegrationFactor = &f

	s, err := newCalculator().Settle(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAmount(t, s.Liquidacion.IntegratedDailySalary, "750.00")
	assertAmount(t, s.Liquidacion.ConstitutionalIndemnity, "67500.00")
}

func TestSettle_PartialFirstYear_NoPerYearIndemnities(t *testing.T) {
	// GIVEN: A wrongful dismissal before the first anniversary
	// WHEN: Settling
	// THEN: Zero completed years, so only the constitutional 90 days pay

	in := testInput(severance.CauseWrongfulDismissal)
	in.Snapshot.HireDate = engine.NewDate(2025, time.February, 1)

	s, err := newCalculator().Settle(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	liq := s.Liquidacion

	if liq.CompletedYears != 0 {
		t.Errorf("expected 0 completed years, got %d", liq.CompletedYears)
	}
	if !liq.YearsIndemnity.IsZero() {
		t.Errorf("expected zero years indemnity, got %s", liq.YearsIndemnity.Value)
	}
	if !liq.SeniorityPremium.IsZero() {
		t.Errorf("expected zero seniority premium, got %s", liq.SeniorityPremium.Value)
	}
	if !liq.ConstitutionalIndemnity.IsPositive() {
		t.Error("the constitutional indemnity is due regardless of seniority")
	}
}

// =============================================================================
// REJECTIONS
// =============================================================================

func TestSettle_Rejections(t *testing.T) {
	calc := newCalculator()
	var verr *engine.ValidationError

	unknown := testInput("abandonment")
	if _, err := calc.Settle(unknown); !errors.As(err, &verr) || verr.Code != "unknown_cause" {
		t.Errorf("expected unknown_cause, got %v", err)
	}

	early := testInput(severance.CauseResignation)
	early.TerminationDate = engine.NewDate(2019, time.June, 1)
	if _, err := calc.Settle(early); !errors.Is(err, engine.ErrTerminationBeforeHire) {
		t.Errorf("expected ErrTerminationBeforeHire, got %v", err)
	}

	lowPlan := testInput(severance.CauseResignation)
	lowPlan.Plan.AguinaldoDays = 10
	if _, err := calc.Settle(lowPlan); !errors.Is(err, engine.ErrBelowLegalFloor) {
		t.Errorf("expected ErrBelowLegalFloor, got %v", err)
	}

	negative := testInput(severance.CauseResignation)
	negative.Snapshot.DailySalary = engine.MustParseMoney("-1")
	if _, err := calc.Settle(negative); !errors.Is(err, engine.ErrNegativeSalary) {
		t.Errorf("expected ErrNegativeSalary, got %v", err)
	}
}
