package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
)

// ListPlans returns every planned expense in the store.
func (s *PlannerService) ListPlans(ctx context.Context) ([]domain.PlannedExpense, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.ListPlans")
	defer span.End()

	return s.store.FetchPlannedExpenses(ctx)
}

// CreatePlan validates and persists a new plan in the pending state.
// The category id is resolved against the catalog so the plan
// carries its display name from day one.
func (s *PlannerService) CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.PlannedExpense, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.CreatePlan")
	defer span.End()

	if strings.TrimSpace(req.Concept) == "" {
		return nil, &domain.ErrInvalidPlan{Field: "concept", Message: "must not be empty"}
	}
	if req.EstimatedAmount <= 0 {
		return nil, &domain.ErrInvalidPlan{Field: "estimated_amount", Message: "must be positive"}
	}
	if req.CategoryID <= 0 {
		return nil, &domain.ErrInvalidPlan{Field: "category_id", Message: "must reference a category"}
	}
	plannedDate, err := domain.ParseLocalDate(req.PlannedDate)
	if err != nil {
		return nil, &domain.ErrInvalidPlan{Field: "planned_date", Message: "must be YYYY-MM-DD"}
	}
	// Plans model future commitments only; today's spending is a
	// regular expense.
	if !plannedDate.After(domain.DateOf(s.now())) {
		return nil, &domain.ErrInvalidPlan{Field: "planned_date", Message: "must be in the future"}
	}

	catalog, _ := s.Catalog(ctx)
	var categoryName string
	for _, c := range catalog {
		if c.ID == req.CategoryID {
			categoryName = c.Name
			break
		}
	}
	if categoryName == "" {
		return nil, &domain.ErrInvalidPlan{Field: "category_id", Message: "does not resolve in catalog"}
	}

	plan := &domain.PlannedExpense{
		ID:              uuid.NewString(),
		Concept:         strings.TrimSpace(req.Concept),
		CategoryID:      req.CategoryID,
		Category:        categoryName,
		EstimatedAmount: req.EstimatedAmount,
		PlannedDate:     plannedDate,
		Description:     req.Description,
		State:           domain.PlanPending,
	}

	if err := s.store.PersistPlannedExpense(ctx, plan); err != nil {
		return nil, err
	}

	s.metrics.PlansCreated.Inc()
	s.logger.Info("plan created",
		zap.String("plan_id", plan.ID),
		zap.String("planned_date", plan.PlannedDate.String()),
		zap.Float64("estimated_amount", plan.EstimatedAmount))
	return plan, nil
}

// ExecutePlan turns a pending plan into a realized expense dated
// today. The transition is one way; a plan that already reached a
// terminal state is rejected untouched. Calls for the same plan id
// are serialized.
func (s *PlannerService) ExecutePlan(ctx context.Context, planID string) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.ExecutePlan")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", planID))

	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.store.GetPlannedExpense(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.State.Terminal() {
		return nil, &domain.ErrAlreadyFinalized{PlanID: planID, State: plan.State}
	}

	category := plan.Category
	if category == "" {
		catalog, _ := s.Catalog(ctx)
		for _, c := range catalog {
			if c.ID == plan.CategoryID {
				category = c.Name
				break
			}
		}
	}

	executed := &domain.Expense{
		ID:          uuid.NewString(),
		Concept:     plan.Concept,
		Amount:      plan.EstimatedAmount,
		Date:        domain.DateOf(s.now()),
		Category:    domain.CategoryName(category),
		Description: plan.Description,
	}

	if err := s.store.MarkPlannedExecuted(ctx, planID, executed); err != nil {
		return nil, err
	}

	s.metrics.PlansExecuted.Inc()
	s.logger.Info("plan executed",
		zap.String("plan_id", planID),
		zap.String("expense_id", executed.ID),
		zap.Float64("amount", executed.Amount))
	return executed, nil
}

// CancelPlan finalizes a pending plan without creating an expense.
// Cancelled is terminal; no transition out of it exists.
func (s *PlannerService) CancelPlan(ctx context.Context, planID string) error {
	ctx, span := tracer.Start(ctx, "PlannerService.CancelPlan")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", planID))

	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.store.GetPlannedExpense(ctx, planID)
	if err != nil {
		return err
	}
	if plan.State.Terminal() {
		return &domain.ErrAlreadyFinalized{PlanID: planID, State: plan.State}
	}

	if err := s.store.MarkPlannedCancelled(ctx, planID); err != nil {
		return err
	}

	s.metrics.PlansCancelled.Inc()
	s.logger.Info("plan cancelled", zap.String("plan_id", planID))
	return nil
}
