/*
Package sqlite provides a SQLite-backed implementation of the persistence layer.

PURPOSE:
  Persists everything the payroll engine computes over or produces:
  employee records, published statutory tables, vacation period balances,
  incidences, payroll run results and severance settlements. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect differences.

PUBLISH-ONLY RECORDS:
  Statutory tables and contribution parameters are insert-only:
  - No UPDATE statements on tax_tables or contribution_params
  - A correction is a new fiscal year's publication, never an edit
  - Re-publishing the same identity fails with a validation error

  Payroll runs are also insert-only; re-running a period inserts a new
  row and reads resolve to the latest insert.

KEY TABLES:
  employees:           Master records with salary and hire date
  tax_tables:          Published bracket tables (tax and subsidy), immutable
  contribution_params: Published yearly contribution parameters, immutable
  vacation_periods:    Per-employee seniority-year balances
  incidences:          Period events (absences, overtime, leave)
  payroll_runs:        Full run results as JSON, latest insert wins
  severance_settlements: Termination settlements as JSON

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  tables, err := store.TableSet(ctx)
  params, err := store.ParameterSet(ctx)
  proc := payroll.NewProcessor(tables, params, vacations)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - isr/table.go: what a published bracket table means
  - imss/params.go: what published parameters mean
  - payroll/result.go: the run result persisted here
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/imss"
	"github.com/nomina/payroll-engine/isr"
	"github.com/nomina/payroll-engine/payroll"
	"github.com/nomina/payroll-engine/severance"
	"github.com/nomina/payroll-engine/vacation"
)

// Table kinds stored in tax_tables.
const (
	TableKindTax     = "tax"
	TableKindSubsidy = "subsidy"
)

// Store implements the persistence layer using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees (master records)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		daily_salary TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		integration_factor TEXT,
		plan_name TEXT NOT NULL DEFAULT 'statutory',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Published bracket tables (insert-only)
	CREATE TABLE IF NOT EXISTS tax_tables (
		id TEXT PRIMARY KEY,
		fiscal_year INTEGER NOT NULL,
		frequency TEXT NOT NULL,
		kind TEXT NOT NULL,
		rows_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_tax_tables_identity
		ON tax_tables(fiscal_year, frequency, kind);

	-- Published contribution parameters (insert-only)
	CREATE TABLE IF NOT EXISTS contribution_params (
		id TEXT PRIMARY KEY,
		fiscal_year INTEGER NOT NULL UNIQUE,
		params_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Vacation balances per seniority year
	CREATE TABLE IF NOT EXISTS vacation_periods (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		seniority_year INTEGER NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		entitlement_days INTEGER NOT NULL,
		days_taken TEXT NOT NULL DEFAULT '0',
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, seniority_year)
	);

	CREATE INDEX IF NOT EXISTS idx_vacation_periods_employee
		ON vacation_periods(employee_id);

	-- Incidences (events affecting a pay period)
	CREATE TABLE IF NOT EXISTS incidences (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		span_start TEXT NOT NULL,
		span_end TEXT NOT NULL,
		quantity TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_incidences_employee_span
		ON incidences(employee_id, span_start);

	-- Payroll runs (insert-only, latest insert wins on reads)
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		pay_date TEXT NOT NULL,
		frequency TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_runs_period
		ON payroll_runs(period_start, period_end, created_at DESC);

	-- Severance settlements (insert-only)
	CREATE TABLE IF NOT EXISTS severance_settlements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		termination_date TEXT NOT NULL,
		cause TEXT NOT NULL,
		settlement_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_severance_employee
		ON severance_settlements(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// EmployeeRecord is a stored employee.
type EmployeeRecord struct {
	ID                engine.EmployeeID
	Name              string
	DailySalary       engine.Money
	HireDate          engine.Date
	IntegrationFactor *decimal.Decimal
	PlanName          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot converts the record into the processor's input form.
func (r EmployeeRecord) Snapshot() engine.EmployeeSnapshot {
	return engine.EmployeeSnapshot{
		ID:                r.ID,
		Name:              r.Name,
		DailySalary:       r.DailySalary,
		HireDate:          r.HireDate,
		IntegrationFactor: r.IntegrationFactor,
	}
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, rec EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, daily_salary, hire_date, integration_factor, plan_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			daily_salary = excluded.daily_salary,
			hire_date = excluded.hire_date,
			integration_factor = excluded.integration_factor,
			plan_name = excluded.plan_name,
			updated_at = excluded.updated_at
	`

	var factor sql.NullString
	if rec.IntegrationFactor != nil {
		factor = sql.NullString{String: rec.IntegrationFactor.String(), Valid: true}
	}
	planName := rec.PlanName
	if planName == "" {
		planName = "statutory"
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, query,
		string(rec.ID), rec.Name, rec.DailySalary.Value.String(),
		rec.HireDate.String(), factor, planName, now, now,
	)
	return err
}

// GetEmployee retrieves an employee by ID. Returns (nil, nil) when absent.
func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, daily_salary, hire_date, integration_factor, plan_name, created_at, updated_at FROM employees WHERE id = ?",
		string(id),
	)
	rec, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, daily_salary, hire_date, integration_factor, plan_name, created_at, updated_at FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []EmployeeRecord
	for rows.Next() {
		rec, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// DeleteEmployee removes an employee record.
func (s *Store) DeleteEmployee(ctx context.Context, id engine.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", string(id))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*EmployeeRecord, error) {
	var (
		rec                  EmployeeRecord
		id, salary, hireDate string
		factor               sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &rec.Name, &salary, &hireDate, &factor, &rec.PlanName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.ID = engine.EmployeeID(id)
	d, err := decimal.NewFromString(salary)
	if err != nil {
		return nil, fmt.Errorf("stored daily salary %q: %w", salary, err)
	}
	rec.DailySalary = engine.NewMoneyFromDecimal(d)
	rec.HireDate = engine.ParseDate(hireDate)
	if factor.Valid {
		f, err := decimal.NewFromString(factor.String)
		if err != nil {
			return nil, fmt.Errorf("stored integration factor %q: %w", factor.String, err)
		}
		rec.IntegrationFactor = &f
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

// =============================================================================
// STATUTORY TABLE STORE (insert-only)
// =============================================================================

// TaxTableRecord is a published bracket table with its kind.
type TaxTableRecord struct {
	ID        string
	Kind      string
	Table     isr.Table
	CreatedAt time.Time
}

// SaveTaxTable publishes a bracket table. The identity (year, frequency,
// kind) is immutable; re-publishing fails.
func (s *Store) SaveTaxTable(ctx context.Context, kind string, t *isr.Table) error {
	if kind != TableKindTax && kind != TableKindSubsidy {
		return &engine.ValidationError{Code: "unknown_table_kind", Message: kind}
	}
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rowsJSON, err := json.Marshal(t.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode table rows: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tax_tables (id, fiscal_year, frequency, kind, rows_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), t.FiscalYear, string(t.Frequency), kind,
		string(rowsJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &engine.ValidationError{
				Code:    "table_already_published",
				Message: fmt.Sprintf("%s table %d/%s is already published", kind, t.FiscalYear, t.Frequency),
			}
		}
		return fmt.Errorf("failed to save table: %w", err)
	}
	return nil
}

// ListTaxTables returns every published table.
func (s *Store) ListTaxTables(ctx context.Context) ([]TaxTableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fiscal_year, frequency, kind, rows_json, created_at FROM tax_tables ORDER BY fiscal_year, frequency, kind",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []TaxTableRecord
	for rows.Next() {
		var (
			rec            TaxTableRecord
			freq, rowsJSON string
			createdAt      string
		)
		if err := rows.Scan(&rec.ID, &rec.Table.FiscalYear, &freq, &rec.Kind, &rowsJSON, &createdAt); err != nil {
			return nil, err
		}
		rec.Table.Frequency = engine.PayFrequency(freq)
		if err := json.Unmarshal([]byte(rowsJSON), &rec.Table.Rows); err != nil {
			return nil, fmt.Errorf("failed to decode table rows: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// TableSet hydrates an in-memory table set from every published table.
func (s *Store) TableSet(ctx context.Context) (*isr.TableSet, error) {
	recs, err := s.ListTaxTables(ctx)
	if err != nil {
		return nil, err
	}

	set := isr.NewTableSet()
	for i := range recs {
		table := recs[i].Table
		switch recs[i].Kind {
		case TableKindSubsidy:
			err = set.RegisterSubsidy(&table)
		default:
			err = set.Register(&table)
		}
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// SaveParameters publishes a year's contribution parameters. The year is
// immutable; re-publishing fails.
func (s *Store) SaveParameters(ctx context.Context, p imss.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	paramsJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contribution_params (id, fiscal_year, params_json, created_at)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), p.FiscalYear, string(paramsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &engine.ValidationError{
				Code:    "parameters_already_published",
				Message: fmt.Sprintf("parameters for %d are already published", p.FiscalYear),
			}
		}
		return fmt.Errorf("failed to save parameters: %w", err)
	}
	return nil
}

// ListParameters returns every published parameter set ordered by year.
func (s *Store) ListParameters(ctx context.Context) ([]imss.Parameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT params_json FROM contribution_params ORDER BY fiscal_year",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []imss.Parameters
	for rows.Next() {
		var paramsJSON string
		if err := rows.Scan(&paramsJSON); err != nil {
			return nil, err
		}
		var p imss.Parameters
		if err := json.Unmarshal([]byte(paramsJSON), &p); err != nil {
			return nil, fmt.Errorf("failed to decode parameters: %w", err)
		}
		all = append(all, p)
	}
	return all, rows.Err()
}

// ParameterSet hydrates an in-memory parameter set from every published year.
func (s *Store) ParameterSet(ctx context.Context) (*imss.ParameterSet, error) {
	all, err := s.ListParameters(ctx)
	if err != nil {
		return nil, err
	}

	set := imss.NewParameterSet()
	for _, p := range all {
		if err := set.Register(p); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// =============================================================================
// VACATION PERIOD STORE
// =============================================================================

// SaveVacationPeriods inserts the generated periods for an employee.
// Already-stored seniority years are left untouched, so regeneration
// after a new anniversary only adds the new year and never resets a
// stored days_taken.
func (s *Store) SaveVacationPeriods(ctx context.Context, employeeID engine.EmployeeID, periods []vacation.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO vacation_periods
		(id, employee_id, seniority_year, period_start, period_end, entitlement_days, days_taken, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, seniority_year) DO NOTHING
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range periods {
		_, err := tx.ExecContext(ctx, query,
			uuid.NewString(), string(employeeID), p.SeniorityYear,
			p.Start.String(), p.End.String(), p.EntitlementDays,
			p.DaysTaken.String(), p.ExpiresAt.String(), now,
		)
		if err != nil {
			return fmt.Errorf("failed to save vacation period: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateDaysTaken is the only mutator on stored vacation periods.
func (s *Store) UpdateDaysTaken(ctx context.Context, employeeID engine.EmployeeID, seniorityYear int, taken decimal.Decimal) error {
	if taken.IsNegative() {
		return &engine.ValidationError{Code: "negative_days_taken", Message: taken.String()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE vacation_periods SET days_taken = ? WHERE employee_id = ? AND seniority_year = ?",
		taken.String(), string(employeeID), seniorityYear,
	)
	if err != nil {
		return fmt.Errorf("failed to update days taken: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &engine.ValidationError{
			Code:    "vacation_period_not_found",
			Message: fmt.Sprintf("employee %s has no stored seniority year %d", employeeID, seniorityYear),
		}
	}
	return nil
}

// GetVacationPeriods returns the stored periods ordered by seniority year.
func (s *Store) GetVacationPeriods(ctx context.Context, employeeID engine.EmployeeID) ([]vacation.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT seniority_year, period_start, period_end, entitlement_days, days_taken, expires_at
		FROM vacation_periods WHERE employee_id = ? ORDER BY seniority_year`,
		string(employeeID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []vacation.Period
	for rows.Next() {
		var (
			p                   vacation.Period
			start, end, expires string
			taken               string
		)
		if err := rows.Scan(&p.SeniorityYear, &start, &end, &p.EntitlementDays, &taken, &expires); err != nil {
			return nil, err
		}
		p.Start = engine.ParseDate(start)
		p.End = engine.ParseDate(end)
		p.ExpiresAt = engine.ParseDate(expires)
		p.DaysTaken, err = decimal.NewFromString(taken)
		if err != nil {
			return nil, fmt.Errorf("stored days taken %q: %w", taken, err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// DaysTakenByYear returns the stored days taken keyed by seniority year.
func (s *Store) DaysTakenByYear(ctx context.Context, employeeID engine.EmployeeID) (map[int]decimal.Decimal, error) {
	periods, err := s.GetVacationPeriods(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	taken := make(map[int]decimal.Decimal, len(periods))
	for _, p := range periods {
		taken[p.SeniorityYear] = p.DaysTaken
	}
	return taken, nil
}

// =============================================================================
// INCIDENCE STORE
// =============================================================================

// IncidenceRecord is a stored incidence with its owner.
type IncidenceRecord struct {
	ID         string
	EmployeeID engine.EmployeeID
	Incidence  engine.Incidence
	CreatedAt  time.Time
}

// SaveIncidence stores an incidence and returns its generated ID.
func (s *Store) SaveIncidence(ctx context.Context, employeeID engine.EmployeeID, inc engine.Incidence) (string, error) {
	if err := inc.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incidences (id, employee_id, kind, span_start, span_end, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(employeeID), string(inc.Kind),
		inc.Span.Start.String(), inc.Span.End.String(),
		inc.Quantity.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save incidence: %w", err)
	}
	return id, nil
}

// GetIncidences returns an employee's incidences overlapping the span.
func (s *Store) GetIncidences(ctx context.Context, employeeID engine.EmployeeID, span engine.DateSpan) ([]IncidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, kind, span_start, span_end, quantity, created_at
		FROM incidences
		WHERE employee_id = ? AND span_start <= ? AND span_end >= ?
		ORDER BY span_start, created_at`,
		string(employeeID), span.End.String(), span.Start.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []IncidenceRecord
	for rows.Next() {
		var (
			rec                  IncidenceRecord
			empID, kind          string
			start, end, quantity string
			createdAt            string
		)
		if err := rows.Scan(&rec.ID, &empID, &kind, &start, &end, &quantity, &createdAt); err != nil {
			return nil, err
		}
		rec.EmployeeID = engine.EmployeeID(empID)
		qty, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("stored quantity %q: %w", quantity, err)
		}
		rec.Incidence = engine.Incidence{
			Kind:     engine.IncidenceKind(kind),
			Span:     engine.DateSpan{Start: engine.ParseDate(start), End: engine.ParseDate(end)},
			Quantity: qty,
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteIncidence removes a stored incidence.
func (s *Store) DeleteIncidence(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM incidences WHERE id = ?", id)
	return err
}

// =============================================================================
// PAYROLL RUN STORE (insert-only, latest wins)
// =============================================================================

// RunRecord is a stored payroll run.
type RunRecord struct {
	ID        string
	Result    payroll.RunResult
	CreatedAt time.Time
}

// storedFailure keeps the failure reason as text; errors don't survive
// a JSON round trip.
type storedFailure struct {
	EmployeeID engine.EmployeeID `json:"employee_id"`
	Error      string            `json:"error"`
}

type storedRun struct {
	Period   engine.PayPeriod     `json:"period"`
	Lines    []payroll.LineResult `json:"lines"`
	Failures []storedFailure      `json:"failures,omitempty"`
	Totals   payroll.PeriodTotals `json:"totals"`
}

// SaveRun stores a run result and returns its generated ID. Runs are
// never updated; reprocessing a period inserts a new row.
func (s *Store) SaveRun(ctx context.Context, result *payroll.RunResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr := storedRun{
		Period: result.Period,
		Lines:  result.Lines,
		Totals: result.Totals,
	}
	for _, f := range result.Failures {
		sr.Failures = append(sr.Failures, storedFailure{EmployeeID: f.EmployeeID, Error: f.Err.Error()})
	}
	resultJSON, err := json.Marshal(sr)
	if err != nil {
		return "", fmt.Errorf("failed to encode run result: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payroll_runs (id, period_start, period_end, pay_date, frequency, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, result.Period.Start.String(), result.Period.End.String(),
		result.Period.PayDate.String(), string(result.Period.Frequency),
		string(resultJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// GetLatestRun returns the most recent run for a period, or (nil, nil)
// when the period was never processed.
func (s *Store) GetLatestRun(ctx context.Context, start, end engine.Date) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, result_json, created_at FROM payroll_runs
		WHERE period_start = ? AND period_end = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		start.String(), end.String(),
	)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// GetRun returns a run by ID, or (nil, nil) when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, result_json, created_at FROM payroll_runs WHERE id = ?", id,
	)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		rec        RunRecord
		resultJSON string
		createdAt  string
	)
	if err := row.Scan(&rec.ID, &resultJSON, &createdAt); err != nil {
		return nil, err
	}
	var sr storedRun
	if err := json.Unmarshal([]byte(resultJSON), &sr); err != nil {
		return nil, fmt.Errorf("failed to decode run result: %w", err)
	}
	rec.Result = payroll.RunResult{
		Period: sr.Period,
		Lines:  sr.Lines,
		Totals: sr.Totals,
	}
	for _, f := range sr.Failures {
		rec.Result.Failures = append(rec.Result.Failures, payroll.Failure{
			EmployeeID: f.EmployeeID,
			Err:        fmt.Errorf("%s", f.Error),
		})
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &rec, nil
}

// =============================================================================
// SEVERANCE STORE (insert-only)
// =============================================================================

// SettlementRecord is a stored severance settlement.
type SettlementRecord struct {
	ID              string
	EmployeeID      engine.EmployeeID
	TerminationDate engine.Date
	Settlement      severance.Settlement
	CreatedAt       time.Time
}

// SaveSettlement stores a computed settlement and returns its ID.
func (s *Store) SaveSettlement(ctx context.Context, employeeID engine.EmployeeID, terminationDate engine.Date, settlement severance.Settlement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settlementJSON, err := json.Marshal(settlement)
	if err != nil {
		return "", fmt.Errorf("failed to encode settlement: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO severance_settlements (id, employee_id, termination_date, cause, settlement_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(employeeID), terminationDate.String(),
		string(settlement.Cause), string(settlementJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save settlement: %w", err)
	}
	return id, nil
}

// GetSettlements returns an employee's stored settlements, newest first.
func (s *Store) GetSettlements(ctx context.Context, employeeID engine.EmployeeID) ([]SettlementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, termination_date, settlement_json, created_at
		FROM severance_settlements WHERE employee_id = ?
		ORDER BY created_at DESC`,
		string(employeeID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []SettlementRecord
	for rows.Next() {
		var (
			rec                       SettlementRecord
			empID, termDate           string
			settlementJSON, createdAt string
		)
		if err := rows.Scan(&rec.ID, &empID, &termDate, &settlementJSON, &createdAt); err != nil {
			return nil, err
		}
		rec.EmployeeID = engine.EmployeeID(empID)
		rec.TerminationDate = engine.ParseDate(termDate)
		if err := json.Unmarshal([]byte(settlementJSON), &rec.Settlement); err != nil {
			return nil, fmt.Errorf("failed to decode settlement: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// =============================================================================
// TESTING UTILITIES
// =============================================================================

// Reset clears all data. For testing only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"employees", "tax_tables", "contribution_params",
		"vacation_periods", "incidences", "payroll_runs", "severance_settlements",
	}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
