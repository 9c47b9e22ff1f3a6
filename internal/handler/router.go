package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/infra/observability"
)

const serviceName = "expense-planner"

// NewRouter assembles the HTTP surface.
func NewRouter(h *PlannerHandler, metrics *observability.Metrics, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetrics(metrics))
	r.Use(observability.Tracing(serviceName))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", h.GetCategories)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.GetExpenses)
			r.Post("/", h.CreateExpense)
			r.Get("/summary", h.GetSummary)
			r.Delete("/{expenseId}", h.DeleteExpense)
		})

		r.Route("/planned", func(r chi.Router) {
			r.Get("/", h.GetPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/calendar", h.GetCalendar)
			r.Post("/{planId}/execute", h.ExecutePlan)
			r.Post("/{planId}/cancel", h.CancelPlan)
		})

		r.Route("/budget", func(r chi.Router) {
			r.Get("/", h.GetBudget)
			r.Put("/", h.PutBudget)
			r.Post("/evaluate", h.EvaluateBudget)
		})

		r.Get("/metrics/planner", h.GetPlannerMetrics)
	})

	return r
}
