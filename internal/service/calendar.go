package service

import (
	"context"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/engine"
)

// Calendar groups the pending plans by their local calendar day.
// Today is taken from the service clock in its own zone, so a plan
// for "March 15" stays on March 15 regardless of where the server
// runs.
func (s *PlannerService) Calendar(ctx context.Context) (*domain.CalendarView, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.Calendar")
	defer span.End()

	plans, err := s.store.FetchPlannedExpenses(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.DateOf(s.now())
	return &domain.CalendarView{
		Today:   today,
		Buckets: engine.Bucket(plans, today),
	}, nil
}
