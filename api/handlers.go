/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                  List all employees
    POST   /api/employees                  Create or update employee
    GET    /api/employees/{id}             Get employee details
    DELETE /api/employees/{id}             Remove employee

  Incidences:
    GET    /api/employees/{id}/incidences  List incidences in a span
    POST   /api/employees/{id}/incidences  Record an incidence
    DELETE /api/incidences/{id}            Remove an incidence

  Vacations:
    GET    /api/employees/{id}/vacations   Seniority-year balances
    PUT    /api/employees/{id}/vacations/{year}/taken  Set days taken

  Statutory records:
    GET    /api/tables                     List published bracket tables
    POST   /api/tables                     Publish a bracket table
    GET    /api/parameters                 List published parameters
    POST   /api/parameters                 Publish contribution parameters

  Payroll:
    POST   /api/payroll/run                Process a pay period
    GET    /api/payroll/runs/{id}          Get a stored run
    GET    /api/payroll/latest             Latest run for a period

  Severance:
    POST   /api/employees/{id}/severance   Quote or persist a settlement
    GET    /api/employees/{id}/settlements Stored settlements

  Admin:
    POST   /api/admin/bundle               Publish a full config bundle
    POST   /api/admin/reset                Database reset (dev only)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Plans: Named benefit plans from the loaded bundle
  - Vacations: Entitlement engine from the loaded bundle

  Statutory tables and parameters are hydrated from the store per run,
  so a table published a moment ago is visible to the next run without
  a restart.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Re-publishing an immutable record, missing configuration
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - seed.go: Demo data loader
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/benefits"
	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/factory"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/severance"
	"github.com/nomina/payroll-engine/store/sqlite"
	"github.com/nomina/payroll-engine/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Plans     map[string]benefits.Plan
	Vacations *vacation.Engine

	// Workers bounds the payroll processor's pool; <= 0 uses its default.
	Workers int
}

// NewHandler creates a new handler over the store and the loaded bundle.
func NewHandler(store *sqlite.Store, bundle *factory.Bundle) *Handler {
	return &Handler{
		Store:     store,
		Plans:     bundle.Plans,
		Vacations: bundle.Vacations(),
	}
}

func (h *Handler) planFor(name string) benefits.Plan {
	if p, ok := h.Plans[name]; ok {
		return p
	}
	return benefits.DefaultPlan()
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// SaveEmployee creates or updates an employee.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hireDate := engine.ParseDate(req.HireDate)
	if hireDate.IsZero() {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", nil)
		return
	}
	salary, err := decimal.NewFromString(req.DailySalary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid daily_salary", err)
		return
	}

	rec := sqlite.EmployeeRecord{
		ID:          engine.EmployeeID(req.ID),
		Name:        req.Name,
		DailySalary: engine.NewMoneyFromDecimal(salary),
		HireDate:    hireDate,
		PlanName:    req.PlanName,
	}
	if req.IntegrationFactor != "" {
		f, err := decimal.NewFromString(req.IntegrationFactor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid integration_factor", err)
			return
		}
		rec.IntegrationFactor = &f
	}

	if err := rec.Snapshot().Validate(); err != nil {
		writeError(w, statusFor(err), "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(rec))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toEmployeeDTO(e sqlite.EmployeeRecord) EmployeeDTO {
	dto := EmployeeDTO{
		ID:          string(e.ID),
		Name:        e.Name,
		DailySalary: e.DailySalary.String(),
		HireDate:    e.HireDate.String(),
		PlanName:    e.PlanName,
	}
	if e.IntegrationFactor != nil {
		dto.IntegrationFactor = e.IntegrationFactor.String()
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

// =============================================================================
// INCIDENCE HANDLERS
// =============================================================================

// CreateIncidence records an incidence for an employee.
func (h *Handler) CreateIncidence(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req CreateIncidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}

	inc := engine.Incidence{
		Kind: engine.IncidenceKind(req.Kind),
		Span: engine.DateSpan{
			Start: engine.ParseDate(req.SpanStart),
			End:   engine.ParseDate(req.SpanEnd),
		},
		Quantity: quantity,
	}

	incID, err := h.Store.SaveIncidence(r.Context(), id, inc)
	if err != nil {
		writeError(w, statusFor(err), "Failed to save incidence", err)
		return
	}
	writeJSON(w, http.StatusCreated, IncidenceDTO{
		ID:        incID,
		Kind:      string(inc.Kind),
		SpanStart: inc.Span.Start.String(),
		SpanEnd:   inc.Span.End.String(),
		Quantity:  inc.Quantity.String(),
	})
}

// ListIncidences returns an employee's incidences overlapping ?from / ?to.
func (h *Handler) ListIncidences(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	span := engine.DateSpan{
		Start: engine.ParseDate(r.URL.Query().Get("from")),
		End:   engine.ParseDate(r.URL.Query().Get("to")),
	}
	if !span.Valid() {
		writeError(w, http.StatusBadRequest, "from and to query params are required (YYYY-MM-DD)", nil)
		return
	}

	recs, err := h.Store.GetIncidences(r.Context(), id, span)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list incidences", err)
		return
	}

	dtos := make([]IncidenceDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = IncidenceDTO{
			ID:        rec.ID,
			Kind:      string(rec.Incidence.Kind),
			SpanStart: rec.Incidence.Span.Start.String(),
			SpanEnd:   rec.Incidence.Span.End.String(),
			Quantity:  rec.Incidence.Quantity.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteIncidence removes a stored incidence.
func (h *Handler) DeleteIncidence(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteIncidence(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete incidence", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// GetVacations returns the employee's seniority-year balances as of
// ?as_of (default today). Newly reached seniority years are persisted
// so their days-taken counters exist before anyone books against them.
func (h *Handler) GetVacations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	asOf := engine.Today()
	if q := r.URL.Query().Get("as_of"); q != "" {
		asOf = engine.ParseDate(q)
		if asOf.IsZero() {
			writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", nil)
			return
		}
	}

	plan := h.planFor(emp.PlanName)
	periods, err := h.Vacations.GeneratePeriods(emp.HireDate, asOf, plan.ExtraVacationDays)
	if err != nil {
		writeError(w, statusFor(err), "Failed to generate vacation periods", err)
		return
	}
	if err := h.Store.SaveVacationPeriods(ctx, id, periods); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist vacation periods", err)
		return
	}
	taken, err := h.Store.DaysTakenByYear(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load days taken", err)
		return
	}
	periods = vacation.WithTaken(periods, taken)

	dtos := make([]VacationPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p, asOf, h.Vacations.Prorate(p, asOf).String())
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdateDaysTaken sets the days taken for one seniority year.
func (h *Handler) UpdateDaysTaken(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid seniority year", err)
		return
	}

	var req UpdateDaysTakenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	taken, err := decimal.NewFromString(req.DaysTaken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid days_taken", err)
		return
	}

	if err := h.Store.UpdateDaysTaken(r.Context(), id, year, taken); err != nil {
		writeError(w, statusFor(err), "Failed to update days taken", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATUTORY RECORD HANDLERS
// =============================================================================

// PublishTable publishes a bracket table (tax or subsidy).
func (h *Handler) PublishTable(w http.ResponseWriter, r *http.Request) {
	var req PublishTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	table, err := factory.ParseTable(req.Table)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid table", err)
		return
	}
	if err := h.Store.SaveTaxTable(r.Context(), req.Kind, table); err != nil {
		writeError(w, statusFor(err), "Failed to publish table", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ListTables returns all published tables without their rows.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListTaxTables(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tables", err)
		return
	}

	dtos := make([]TableDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = TableDTO{
			ID:         rec.ID,
			FiscalYear: rec.Table.FiscalYear,
			Frequency:  string(rec.Table.Frequency),
			Kind:       rec.Kind,
			RowCount:   len(rec.Table.Rows),
			CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PublishParameters publishes a year's contribution parameters.
func (h *Handler) PublishParameters(w http.ResponseWriter, r *http.Request) {
	var req PublishParametersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params, err := factory.ParseParameters(req.Parameters)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters", err)
		return
	}
	if err := h.Store.SaveParameters(r.Context(), params); err != nil {
		writeError(w, statusFor(err), "Failed to publish parameters", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ListParameters returns all published parameter sets.
func (h *Handler) ListParameters(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.ListParameters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parameters", err)
		return
	}

	dtos := make([]ParametersDTO, len(all))
	for i, p := range all {
		dtos[i] = ParametersDTO{
			FiscalYear:  p.FiscalYear,
			UMADaily:    p.UMADaily.String(),
			MinimumWage: p.MinimumWage.String(),
			CapUMAUnits: p.CapUMAUnits,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// RunPayroll processes a pay period and stores the result.
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period := engine.PayPeriod{
		Start:     engine.ParseDate(req.Start),
		End:       engine.ParseDate(req.End),
		PayDate:   engine.ParseDate(req.PayDate),
		Frequency: engine.PayFrequency(req.Frequency),
	}
	if err := period.Validate(); err != nil {
		writeError(w, statusFor(err), "Invalid period", err)
		return
	}

	records, err := h.runEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		writeError(w, statusFor(err), "Failed to resolve employees", err)
		return
	}

	inputs := make([]payroll.EmployeeInput, 0, len(records))
	span := engine.DateSpan{Start: period.Start, End: period.End}
	for _, rec := range records {
		incRecs, err := h.Store.GetIncidences(ctx, rec.ID, span)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load incidences", err)
			return
		}
		incidences := make([]engine.Incidence, len(incRecs))
		for i, ir := range incRecs {
			incidences[i] = ir.Incidence
		}
		plan := h.planFor(rec.PlanName)
		inputs = append(inputs, payroll.EmployeeInput{
			Snapshot: rec.Snapshot(),
			Plan: payroll.Plan{
				AguinaldoDays:       plan.AguinaldoDays,
				VacationPremiumRate: plan.VacationPremiumRate,
				ExtraVacationDays:   plan.ExtraVacationDays,
			},
			Incidences: incidences,
		})
	}

	tables, err := h.Store.TableSet(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load tables", err)
		return
	}
	paramSet, err := h.Store.ParameterSet(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load parameters", err)
		return
	}

	proc := payroll.NewProcessor(tables, paramSet, h.Vacations)
	proc.Workers = h.Workers
	result, err := proc.Run(ctx, period, inputs)
	if err != nil {
		writeError(w, statusFor(err), "Payroll run failed", err)
		return
	}

	runID, err := h.Store.SaveRun(ctx, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store run", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRunDTO(runID, result))
}

func (h *Handler) runEmployees(ctx context.Context, ids []string) ([]sqlite.EmployeeRecord, error) {
	if len(ids) == 0 {
		return h.Store.ListEmployees(ctx)
	}
	records := make([]sqlite.EmployeeRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := h.Store.GetEmployee(ctx, engine.EmployeeID(id))
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, &engine.ValidationError{Code: "employee_not_found", Message: id}
		}
		records = append(records, *rec)
	}
	return records, nil
}

// GetRun returns a stored run by ID.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get run", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(rec.ID, &rec.Result))
}

// GetLatestRun returns the latest run for ?start / ?end.
func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	start := engine.ParseDate(r.URL.Query().Get("start"))
	end := engine.ParseDate(r.URL.Query().Get("end"))
	if start.IsZero() || end.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end query params are required (YYYY-MM-DD)", nil)
		return
	}

	rec, err := h.Store.GetLatestRun(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get run", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "No run for that period", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(rec.ID, &rec.Result))
}

// =============================================================================
// SEVERANCE HANDLERS
// =============================================================================

// SettleEmployee computes a termination settlement. With persist=true the
// settlement is stored; otherwise it is a quote.
func (h *Handler) SettleEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	terminationDate := engine.ParseDate(req.TerminationDate)
	if terminationDate.IsZero() {
		writeError(w, http.StatusBadRequest, "Invalid termination_date format (use YYYY-MM-DD)", nil)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	paramSet, err := h.Store.ParameterSet(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load parameters", err)
		return
	}
	params, err := paramSet.Lookup(terminationDate.Year())
	if err != nil {
		writeError(w, statusFor(err), "No parameters for termination year", err)
		return
	}
	taken, err := h.Store.DaysTakenByYear(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load days taken", err)
		return
	}

	calc := severance.NewCalculator(h.Vacations)
	settlement, err := calc.Settle(severance.Input{
		Snapshot:          emp.Snapshot(),
		Plan:              h.planFor(emp.PlanName),
		TerminationDate:   terminationDate,
		Cause:             severance.Cause(req.Cause),
		Params:            params,
		VacationDaysTaken: taken,
	})
	if err != nil {
		writeError(w, statusFor(err), "Settlement failed", err)
		return
	}

	var settlementID string
	if req.Persist {
		settlementID, err = h.Store.SaveSettlement(ctx, id, terminationDate, *settlement)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store settlement", err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, toSettlementDTO(settlementID, id, terminationDate, *settlement))
}

// ListSettlements returns an employee's stored settlements.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	recs, err := h.Store.GetSettlements(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settlements", err)
		return
	}

	dtos := make([]SettlementDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toSettlementDTO(rec.ID, rec.EmployeeID, rec.TerminationDate, rec.Settlement)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// LoadBundle publishes every table and parameter set in a config bundle.
func (h *Handler) LoadBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var bj factory.BundleJSON
	if err := json.NewDecoder(r.Body).Decode(&bj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, tj := range bj.ISRTables {
		table, err := factory.ParseTable(tj)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid table", err)
			return
		}
		if err := h.Store.SaveTaxTable(ctx, sqlite.TableKindTax, table); err != nil {
			writeError(w, statusFor(err), "Failed to publish table", err)
			return
		}
	}
	for _, tj := range bj.SubsidyTables {
		table, err := factory.ParseTable(tj)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid table", err)
			return
		}
		if err := h.Store.SaveTaxTable(ctx, sqlite.TableKindSubsidy, table); err != nil {
			writeError(w, statusFor(err), "Failed to publish table", err)
			return
		}
	}
	for _, pj := range bj.IMSSParameters {
		params, err := factory.ParseParameters(pj)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parameters", err)
			return
		}
		if err := h.Store.SaveParameters(ctx, params); err != nil {
			writeError(w, statusFor(err), "Failed to publish parameters", err)
			return
		}
	}
	w.WriteHeader(http.StatusCreated)
}

// ResetDatabase clears all data. Dev only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps engine errors to HTTP statuses: immutability violations
// and missing configuration are conflicts with published state, validation
// failures are the client's input.
func statusFor(err error) int {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		switch verr.Code {
		case "table_already_published", "parameters_already_published":
			return http.StatusConflict
		case "employee_not_found", "vacation_period_not_found":
			return http.StatusNotFound
		}
	}
	switch {
	case engine.IsConfiguration(err):
		return http.StatusConflict
	case engine.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
