package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/engine"
)

// BudgetLimit returns the stored monthly limit, nil when budgeting
// was never configured.
func (s *PlannerService) BudgetLimit() (*domain.BudgetLimit, error) {
	limit, err := s.prefs.LoadBudgetLimit()
	if err != nil {
		return nil, err
	}
	if limit == nil {
		return nil, nil
	}
	return &domain.BudgetLimit{MonthlyLimit: *limit}, nil
}

// SetBudgetLimit overwrites the monthly limit. Zero disables
// budgeting; negative values are rejected.
func (s *PlannerService) SetBudgetLimit(limit float64) error {
	if limit < 0 {
		return &domain.ErrValidation{Field: "monthly_limit", Message: "must not be negative"}
	}
	if err := s.prefs.SaveBudgetLimit(limit); err != nil {
		return err
	}
	s.logger.Info("budget limit updated", zap.Float64("monthly_limit", limit))
	return nil
}

// EvaluateBudget runs the pure gating math. The request may carry
// its own limit; otherwise the stored preference applies.
func (s *PlannerService) EvaluateBudget(ctx context.Context, req domain.EvaluateBudgetRequest) (*domain.BudgetDecision, error) {
	_, span := tracer.Start(ctx, "PlannerService.EvaluateBudget")
	defer span.End()

	limit := req.Limit
	if limit == nil {
		stored, err := s.prefs.LoadBudgetLimit()
		if err != nil {
			return nil, err
		}
		limit = stored
	}

	decision := engine.EvaluateBudget(req.CurrentTotal, req.Incoming, limit)
	return &decision, nil
}
