package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/service"
)

// PlannerHandler serves every planner route.
type PlannerHandler struct {
	svc    *service.PlannerService
	logger *zap.Logger
}

// NewPlannerHandler wires a handler.
func NewPlannerHandler(svc *service.PlannerService, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{svc: svc, logger: logger}
}

// periodFromQuery parses from/to, defaulting to the current month.
func (h *PlannerHandler) periodFromQuery(r *http.Request) (domain.LocalDate, domain.LocalDate, error) {
	today := domain.Today(nil)
	from := domain.LocalDate{Year: today.Year, Month: today.Month, Day: 1}
	to := today

	if s := r.URL.Query().Get("from"); s != "" {
		parsed, err := domain.ParseLocalDate(s)
		if err != nil {
			return from, to, &domain.ErrValidation{Field: "from", Message: "must be YYYY-MM-DD"}
		}
		from = parsed
	}
	if s := r.URL.Query().Get("to"); s != "" {
		parsed, err := domain.ParseLocalDate(s)
		if err != nil {
			return from, to, &domain.ErrValidation{Field: "to", Message: "must be YYYY-MM-DD"}
		}
		to = parsed
	}
	if to.Before(from) {
		return from, to, &domain.ErrValidation{Field: "to", Message: "must not be before from"}
	}
	return from, to, nil
}

// GetCategories handles GET /v1/categories.
func (h *PlannerHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	kind := domain.CategoryKind(r.URL.Query().Get("kind"))

	categories, fallback, err := h.svc.Categories(r.Context(), kind)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Data     []domain.Category `json:"data"`
		Fallback bool              `json:"catalog_fallback,omitempty"`
	}{Data: categories, Fallback: fallback})
}

// GetExpenses handles GET /v1/expenses.
func (h *PlannerHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.periodFromQuery(r)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), from, to)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ListResponse[domain.Expense]{Data: expenses, Total: len(expenses)})
}

// CreateExpense handles POST /v1/expenses. An over-limit request
// without override answers 200 with the budget decision and no
// expense; the client decides whether to retry with override.
func (h *PlannerHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.svc.CreateExpense(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if resp.Expense == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteExpense handles DELETE /v1/expenses/{expenseId}.
func (h *PlannerHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "expenseId")
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "expense deleted", ID: id})
}

// GetSummary handles GET /v1/expenses/summary.
func (h *PlannerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.periodFromQuery(r)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	summary, err := h.svc.Summary(r.Context(), from, to)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
