/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. httplog:    Structured request logging (slog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for an admin frontend
  5. Heartbeat:  /ping liveness endpoint

ROUTE GROUPS:
  /api/employees/*    Employee records, incidences, vacations, severance
  /api/tables/*       Published bracket tables
  /api/parameters/*   Published contribution parameters
  /api/payroll/*      Period processing and stored runs
  /api/admin/*        Bundle loading, database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
	)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)

			r.Get("/{id}/incidences", h.ListIncidences)
			r.Post("/{id}/incidences", h.CreateIncidence)

			r.Get("/{id}/vacations", h.GetVacations)
			r.Put("/{id}/vacations/{year}/taken", h.UpdateDaysTaken)

			r.Post("/{id}/severance", h.SettleEmployee)
			r.Get("/{id}/settlements", h.ListSettlements)
		})

		// Incidence routes
		r.Route("/incidences", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteIncidence)
		})

		// Statutory record routes
		r.Route("/tables", func(r chi.Router) {
			r.Get("/", h.ListTables)
			r.Post("/", h.PublishTable)
		})
		r.Route("/parameters", func(r chi.Router) {
			r.Get("/", h.ListParameters)
			r.Post("/", h.PublishParameters)
		})

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/run", h.RunPayroll)
			r.Get("/runs/{id}", h.GetRun)
			r.Get("/latest", h.GetLatestRun)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/bundle", h.LoadBundle)
			r.Post("/seed", h.LoadDemoData)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
