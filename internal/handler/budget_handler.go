package handler

import (
	"net/http"

	"github.com/aureum/expense-planner-go/internal/domain"
)

// GetBudget handles GET /v1/budget. No configured limit answers an
// explicit null limit rather than 404; the mobile client treats
// both the same.
func (h *PlannerHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	limit, err := h.svc.BudgetLimit()
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Budget *domain.BudgetLimit `json:"budget"`
	}{Budget: limit})
}

// PutBudget handles PUT /v1/budget.
func (h *PlannerHandler) PutBudget(w http.ResponseWriter, r *http.Request) {
	var req domain.BudgetLimit
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.SetBudgetLimit(req.MonthlyLimit); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// EvaluateBudget handles POST /v1/budget/evaluate.
func (h *PlannerHandler) EvaluateBudget(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluateBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	decision, err := h.svc.EvaluateBudget(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// GetPlannerMetrics handles GET /v1/metrics/planner.
func (h *PlannerHandler) GetPlannerMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.MetricsReport())
}
