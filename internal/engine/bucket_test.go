package engine_test

import (
	"testing"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/engine"
)

func plan(id, date string, state domain.PlanState, amount float64) domain.PlannedExpense {
	return domain.PlannedExpense{
		ID:              id,
		Concept:         id,
		CategoryID:      1,
		EstimatedAmount: amount,
		PlannedDate:     day(date),
		State:           state,
	}
}

func TestBucketGroupsByDay(t *testing.T) {
	today := day("2026-03-15")
	plans := []domain.PlannedExpense{
		plan("p1", "2026-03-14", domain.PlanPending, 10),
		plan("p2", "2026-03-15", domain.PlanPending, 20),
		plan("p3", "2026-03-15", domain.PlanPending, 5),
		plan("p4", "2026-03-20", domain.PlanPending, 7.5),
	}

	got := engine.Bucket(plans, today)

	if len(got) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(got))
	}
	if !got[0].Date.Equal(day("2026-03-14")) || !got[2].Date.Equal(day("2026-03-20")) {
		t.Errorf("buckets not sorted ascending: %v, %v, %v", got[0].Date, got[1].Date, got[2].Date)
	}
	if got[1].Total != 25 || len(got[1].Items) != 2 {
		t.Errorf("today bucket: total=%v items=%d", got[1].Total, len(got[1].Items))
	}
}

func TestBucketExcludesFinalizedPlans(t *testing.T) {
	today := day("2026-03-15")
	plans := []domain.PlannedExpense{
		plan("p1", "2026-03-16", domain.PlanPending, 10),
		plan("p2", "2026-03-16", domain.PlanExecuted, 99),
		plan("p3", "2026-03-16", domain.PlanCancelled, 99),
	}

	got := engine.Bucket(plans, today)

	if len(got) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(got))
	}
	if len(got[0].Items) != 1 || got[0].Total != 10 {
		t.Errorf("finalized plans leaked into bucket: items=%d total=%v", len(got[0].Items), got[0].Total)
	}
}

func TestBucketColorClasses(t *testing.T) {
	today := day("2026-03-15")
	plans := []domain.PlannedExpense{
		plan("past", "2026-03-01", domain.PlanPending, 1),
		plan("today", "2026-03-15", domain.PlanPending, 1),
		plan("future", "2026-04-01", domain.PlanPending, 1),
	}

	got := engine.Bucket(plans, today)

	want := []domain.DayClass{domain.DayPast, domain.DayToday, domain.DayFuture}
	for i, class := range want {
		if got[i].ColorClass != class {
			t.Errorf("bucket %d: expected %s, got %s", i, class, got[i].ColorClass)
		}
	}
}

func TestBucketEmptyInput(t *testing.T) {
	got := engine.Bucket(nil, day("2026-03-15"))
	if len(got) != 0 {
		t.Fatalf("expected no buckets, got %d", len(got))
	}
}
