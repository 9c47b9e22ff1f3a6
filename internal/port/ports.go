// Package port defines the interfaces between the planner services
// and their infrastructure. Services depend on these, never on the
// concrete REST or file implementations.
package port

import (
	"context"
	"time"

	"github.com/aureum/expense-planner-go/internal/domain"
)

// PlannerStore is the remote financial store. It is the source of
// truth for categories, expenses and planned expenses; the service
// layer never trusts local state over a store answer.
type PlannerStore interface {
	FetchCategories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error)
	FetchExpenses(ctx context.Context, from, to domain.LocalDate) ([]domain.Expense, error)
	PersistExpense(ctx context.Context, e *domain.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	FetchPlannedExpenses(ctx context.Context) ([]domain.PlannedExpense, error)
	GetPlannedExpense(ctx context.Context, id string) (*domain.PlannedExpense, error)
	PersistPlannedExpense(ctx context.Context, p *domain.PlannedExpense) error
	MarkPlannedExecuted(ctx context.Context, id string, executed *domain.Expense) error
	MarkPlannedCancelled(ctx context.Context, id string) error
}

// PreferenceStore holds small device-local settings that survive
// restarts but are not part of the remote source of truth.
type PreferenceStore interface {
	LoadBudgetLimit() (*float64, error)
	SaveBudgetLimit(limit float64) error
}

// Cache is a TTL cache for a single value. Get reports a miss when
// the entry is absent or stale; the caller decides what to do then.
type Cache[T any] interface {
	Get(now time.Time) (T, bool)
	Set(value T, now time.Time)
	Invalidate()
	HitRate() float64
}
