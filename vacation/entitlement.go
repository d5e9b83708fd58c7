/*
Package vacation implements the seniority-indexed vacation engine.

PURPOSE:
  Given a hire date and an as-of date, generates the sequence of
  anniversary-year vacation periods, each with its entitlement days,
  expiration date and days taken, and prorates the still-open year.

KEY CONCEPTS IN THIS FILE (entitlement.go):
  - EntitlementTable: a non-decreasing step function of completed years.
    The early years are listed explicitly; beyond them a plateau adds a
    fixed increment every N years (the "+2 every 5 years" pattern of the
    current LFT schedule).

CONFIGURATION, NOT CONSTANTS:
  The schedule is statutory data that has changed before (the 2023 reform
  doubled the first-year days). DefaultEntitlements ships the current
  schedule; the factory can load a different one per jurisdiction-year.
*/
package vacation

// =============================================================================
// ENTITLEMENT TABLE - Step function of seniority years
// =============================================================================

type EntitlementTable struct {
	// Base lists days for the first seniority years: Base[0] is year one.
	Base []int

	// Beyond the listed years, entitlement grows PlateauStep days for
	// every PlateauEvery additional years (the late-career plateau).
	PlateauStep  int
	PlateauEvery int
}

// DefaultEntitlements is the current LFT schedule: 12 days the first year,
// +2 per year through year five, then +2 for each five-year block.
func DefaultEntitlements() EntitlementTable {
	return EntitlementTable{
		Base:         []int{12, 14, 16, 18, 20},
		PlateauStep:  2,
		PlateauEvery: 5,
	}
}

// DaysForYear returns the entitlement for seniority year n (1-based).
// Zero for n < 1. Non-decreasing in n.
func (t EntitlementTable) DaysForYear(n int) int {
	if n < 1 || len(t.Base) == 0 {
		return 0
	}
	if n <= len(t.Base) {
		return t.Base[n-1]
	}
	last := t.Base[len(t.Base)-1]
	if t.PlateauEvery <= 0 {
		return last
	}
	block := (n - len(t.Base) - 1) / t.PlateauEvery
	return last + (block+1)*t.PlateauStep
}
