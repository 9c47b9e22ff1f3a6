package engine

import "github.com/aureum/expense-planner-go/internal/domain"

// EvaluateBudget decides whether an incoming amount keeps the period
// total within the limit. The decision is advisory: callers may
// still commit an over-limit expense with an explicit override.
//
// A nil, zero or negative limit disables budgeting entirely; the
// result is then always allowed with OverBy zero.
func EvaluateBudget(currentTotal, incoming float64, limit *float64) domain.BudgetDecision {
	projectedCents := domain.ToCents(currentTotal) + domain.ToCents(incoming)
	projected := domain.FromCents(projectedCents)

	if limit == nil || *limit <= 0 {
		return domain.BudgetDecision{
			Allowed:        true,
			ProjectedTotal: projected,
		}
	}

	limitCents := domain.ToCents(*limit)
	if projectedCents <= limitCents {
		return domain.BudgetDecision{
			Allowed:        true,
			ProjectedTotal: projected,
		}
	}
	return domain.BudgetDecision{
		Allowed:        false,
		ProjectedTotal: projected,
		OverBy:         domain.FromCents(projectedCents - limitCents),
	}
}
