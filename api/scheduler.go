/*
scheduler.go - Background vacation period materializer

PURPOSE:
  Periodically regenerates every employee's seniority-year vacation
  periods, so newly reached anniversaries get their days-taken counter
  before anyone books against them and expiry flags stay current
  without waiting for a balance read.

DESIGN:
  - Runs a background goroutine with a configurable sweep interval
  - Persisting periods is additive: existing days-taken counters are
    never touched, only missing seniority years are inserted
  - A failing employee is logged and skipped; the sweep continues

USAGE:
  scheduler := NewVacationScheduler(store, handler)
  scheduler.Start()
  // ... on shutdown
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetVacations does the same materialization on read
  - store/sqlite/sqlite.go: SaveVacationPeriods additive semantics
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nomina/payroll-engine/engine"
	"github.com/nomina/payroll-engine/store/sqlite"
)

// VacationScheduler sweeps the roster and materializes vacation periods.
type VacationScheduler struct {
	Store    *sqlite.Store
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewVacationScheduler creates a scheduler with a daily sweep.
func NewVacationScheduler(store *sqlite.Store, handler *Handler) *VacationScheduler {
	return &VacationScheduler{
		Store:    store,
		Handler:  handler,
		Interval: 24 * time.Hour,
		Enabled:  true,
		stop:     make(chan struct{}),
	}
}

// Start begins the background sweep.
func (vs *VacationScheduler) Start() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if !vs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if vs.ticker != nil {
		return
	}

	vs.ticker = time.NewTicker(vs.Interval)
	vs.stop = make(chan struct{})
	vs.wg.Add(1)
	go vs.run()

	log.Printf("[Scheduler] Vacation sweep every %v", vs.Interval)
}

// Stop halts the scheduler and waits for an in-flight sweep.
func (vs *VacationScheduler) Stop() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.ticker == nil {
		return
	}
	vs.ticker.Stop()
	close(vs.stop)
	vs.wg.Wait()
	vs.ticker = nil

	log.Println("[Scheduler] Stopped")
}

func (vs *VacationScheduler) run() {
	defer vs.wg.Done()

	// First sweep right away, then on the ticker.
	vs.sweep(context.Background())

	for {
		select {
		case <-vs.ticker.C:
			vs.sweep(context.Background())
		case <-vs.stop:
			return
		}
	}
}

// sweep regenerates periods for every employee as of today.
func (vs *VacationScheduler) sweep(ctx context.Context) {
	employees, err := vs.Store.ListEmployees(ctx)
	if err != nil {
		log.Printf("[Scheduler] Failed to list employees: %v", err)
		return
	}

	asOf := engine.Today()
	materialized := 0
	for _, emp := range employees {
		plan := vs.Handler.planFor(emp.PlanName)
		periods, err := vs.Handler.Vacations.GeneratePeriods(emp.HireDate, asOf, plan.ExtraVacationDays)
		if err != nil {
			log.Printf("[Scheduler] Employee %s: %v", emp.ID, err)
			continue
		}
		if err := vs.Store.SaveVacationPeriods(ctx, emp.ID, periods); err != nil {
			log.Printf("[Scheduler] Employee %s: %v", emp.ID, err)
			continue
		}
		materialized++
	}
	if len(employees) > 0 {
		log.Printf("[Scheduler] Materialized vacation periods for %d/%d employees", materialized, len(employees))
	}
}
