/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:

	Populates the database with a working configuration and a small
	roster, so a fresh checkout can process a period immediately.

WHAT GETS LOADED:
 1. Reset database (clear all data)
 2. The built-in statutory bundle (tables, subsidy, parameters)
 3. A demo roster covering the interesting cases: a minimum-wage
    earner, a mid-band salaried employee, a high earner above the
    contribution cap, and a recent mid-year hire
 4. A few incidences in the current month (overtime, an absence)

USAGE VIA API:

	POST /api/admin/seed

NOTE:

	Seeding resets the database. Only use in development/demo
	environments.

SEE ALSO:
  - factory/defaults.go: the bundle that gets published
  - handlers.go: LoadDemoData route registration
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/factory"
	"github.com/nomina/payroll-engine/store/sqlite"
)

// LoadDemoData resets the database and loads the demo configuration
// and roster.
func (h *Handler) LoadDemoData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.seedBundle(ctx); err != nil {
		writeError(w, statusFor(err), "Failed to publish bundle", err)
		return
	}
	if err := h.seedRoster(ctx); err != nil {
		writeError(w, statusFor(err), "Failed to seed roster", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "seeded"})
}

func (h *Handler) seedBundle(ctx context.Context) error {
	bundle := factory.DefaultBundle()

	tax, subsidy := bundle.Tables.All()
	for _, t := range tax {
		if err := h.Store.SaveTaxTable(ctx, sqlite.TableKindTax, t); err != nil {
			return err
		}
	}
	for _, t := range subsidy {
		if err := h.Store.SaveTaxTable(ctx, sqlite.TableKindSubsidy, t); err != nil {
			return err
		}
	}
	for _, p := range bundle.Parameters.All() {
		if err := h.Store.SaveParameters(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) seedRoster(ctx context.Context) error {
	now := engine.Today()
	year := now.Year()

	roster := []sqlite.EmployeeRecord{
		{
			ID:          "emp-minimum",
			Name:        "Rosa Jiménez",
			DailySalary: engine.MustParseMoney("278.80"),
			HireDate:    engine.NewDate(year-3, time.March, 1),
		},
		{
			ID:          "emp-salaried",
			Name:        "Luis Hernández",
			DailySalary: engine.MustParseMoney("500"),
			HireDate:    engine.NewDate(year-5, time.June, 15),
			PlanName:    "enhanced",
		},
		{
			ID:          "emp-capped",
			Name:        "Ana Torres",
			DailySalary: engine.MustParseMoney("4000"),
			HireDate:    engine.NewDate(year-8, time.January, 10),
		},
		{
			ID:          "emp-newhire",
			Name:        "Diego Ramírez",
			DailySalary: engine.MustParseMoney("650.50"),
			HireDate:    engine.NewDate(year, time.July, 1),
		},
	}
	for _, rec := range roster {
		if err := h.Store.SaveEmployee(ctx, rec); err != nil {
			return err
		}
	}

	monthStart := engine.NewDate(year, now.Month(), 1)
	incidences := []struct {
		employee engine.EmployeeID
		inc      engine.Incidence
	}{
		{
			employee: "emp-salaried",
			inc: engine.Incidence{
				Kind:     engine.IncidenceOvertime,
				Span:     engine.DateSpan{Start: monthStart.AddDays(2), End: monthStart.AddDays(2)},
				Quantity: engine.MustParseDecimal("3"),
			},
		},
		{
			employee: "emp-minimum",
			inc: engine.Incidence{
				Kind:     engine.IncidenceAbsence,
				Span:     engine.DateSpan{Start: monthStart.AddDays(6), End: monthStart.AddDays(6)},
				Quantity: engine.MustParseDecimal("1"),
			},
		},
	}
	for _, s := range incidences {
		if _, err := h.Store.SaveIncidence(ctx, s.employee, s.inc); err != nil {
			return err
		}
	}
	return nil
}
