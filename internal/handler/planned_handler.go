package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aureum/expense-planner-go/internal/domain"
)

// GetPlans handles GET /v1/planned.
func (h *PlannerHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.ListPlans(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ListResponse[domain.PlannedExpense]{Data: plans, Total: len(plans)})
}

// CreatePlan handles POST /v1/planned.
func (h *PlannerHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plan, err := h.svc.CreatePlan(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// ExecutePlan handles POST /v1/planned/{planId}/execute.
func (h *PlannerHandler) ExecutePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planId")

	expense, err := h.svc.ExecutePlan(r.Context(), planID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// CancelPlan handles POST /v1/planned/{planId}/cancel.
func (h *PlannerHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planId")

	if err := h.svc.CancelPlan(r.Context(), planID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "plan cancelled", ID: planID})
}

// GetCalendar handles GET /v1/planned/calendar.
func (h *PlannerHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Calendar(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
