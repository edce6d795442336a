/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. CORS:          Cross-origin requests for the frontend
  2. RequestLogger: Structured request logs (httplog over slog, JSON)
  3. CleanPath:     Normalized URLs
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. Heartbeat:     Liveness probe on /
  6. WithActor:     Caller identity headers (API routes only)

ROUTE GROUPS:
  /api/comp-off*         Credit tracking and earn requests
  /api/leave-requests/*  Bookings and their lifecycle
  /api/overtime*         Planned-overtime requests and work logs
  /api/leave-statistics* Dashboard numbers
  /api/employees/*       Employee management
  /api/admin/*           Sweep trigger, demo seed
  /metrics               Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware; the actor headers assert identity and
  the role rules gate manager operations. Put a real auth layer in
  front before exposing this beyond a trusted network.

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
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewLogger builds the JSON slog logger the server and scheduler share.
func NewLogger(env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "comp-ledger"),
		slog.String("env", env),
	)
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID", "X-Actor-Role"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/"))

	// Prometheus scrape endpoint, outside the actor gate.
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(WithActor)

		// Credit tracking
		r.Route("/comp-off", func(r chi.Router) {
			r.Get("/tracking", h.GetTracking)
			r.Get("/monthly-breakdown", h.GetMonthlyBreakdown)
			r.Get("/balance", h.GetBalance)
			r.Put("/{id}/approve", h.ApproveEarnRequest)
			r.Put("/{id}/reject", h.RejectEarnRequest)
			r.Post("/grants/{id}/revoke", h.RevokeGrant)
		})

		// Earn requests
		r.Route("/comp-off-requests", func(r chi.Router) {
			r.Post("/", h.SubmitEarnRequest)
			r.Get("/", h.ListEarnRequests)
		})

		// Leave bookings
		r.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", h.SubmitLeaveRequest)
			r.Get("/", h.ListLeaveRequests)
			r.Put("/{id}/approve", h.ApproveLeaveRequest)
			r.Put("/{id}/reject", h.RejectLeaveRequest)
			r.Put("/{id}/cancel", h.CancelLeaveRequest)
		})

		// Overtime
		r.Route("/overtime-requests", func(r chi.Router) {
			r.Post("/", h.SubmitOvertimeRequest)
			r.Get("/", h.ListOvertimeRequests)
			r.Put("/{id}/approve", h.ApproveOvertimeRequest)
			r.Put("/{id}/reject", h.RejectOvertimeRequest)
		})
		r.Route("/overtime-worked", func(r chi.Router) {
			r.Post("/", h.LogOvertimeWorked)
			r.Get("/", h.ListOvertimeWorked)
			r.Put("/{id}/approve", h.ApproveOvertimeWorked)
			r.Put("/{id}/reject", h.RejectOvertimeWorked)
		})
		r.Get("/overtime/tracking", h.GetOvertimeTracking)

		// Statistics
		r.Route("/leave-statistics", func(r chi.Router) {
			r.Get("/", h.GetLeaveStatistics)
			r.Get("/employee/{id}", h.GetEmployeeLeaveStatistics)
		})

		// Employees
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Post("/expiry-sweep", h.TriggerSweep)
			r.Post("/seed-demo", h.SeedDemo)
		})
	})

	return r
}
