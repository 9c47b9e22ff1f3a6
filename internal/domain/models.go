// Package domain defines the core business entities for the expense planner.
// These models are independent of external services and represent the
// canonical data structures used throughout the engine.
package domain

// ============================================================
// Categories
// ============================================================

// CategoryKind distinguishes spending from earning categories.
type CategoryKind string

const (
	KindExpense CategoryKind = "expense"
	KindIncome  CategoryKind = "income"
	KindBoth    CategoryKind = "both"
)

// Category is immutable reference data fetched once per session.
// Identity in the aggregation path is Name (case-sensitive), not ID.
type Category struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Kind  CategoryKind `json:"kind"`
	Color string       `json:"color,omitempty"`
	Icon  string       `json:"icon,omitempty"`
}

// ============================================================
// Expenses (actual, realized)
// ============================================================

// Expense is a realized transaction. Immutable once created except
// for deletion.
type Expense struct {
	ID          string       `json:"id"`
	Concept     string       `json:"concept"`
	Amount      float64      `json:"amount"`
	Date        LocalDate    `json:"date"`
	Category    CategoryName `json:"category"`
	PaymentType string       `json:"payment_type,omitempty"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
}

// ============================================================
// Planned expenses
// ============================================================

// PlanState is the lifecycle state of a planned expense.
// pending is the only non-terminal state; executed and cancelled
// are terminal and admit no further transitions.
type PlanState string

const (
	PlanPending   PlanState = "pending"
	PlanExecuted  PlanState = "executed"
	PlanCancelled PlanState = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s PlanState) Terminal() bool {
	return s == PlanExecuted || s == PlanCancelled
}

// PlannedExpense is a future spending commitment. The category is
// scheduled by id but carries the resolved display name so execution
// can fold into name-keyed aggregates without a second catalog lookup.
type PlannedExpense struct {
	ID              string    `json:"id"`
	Concept         string    `json:"concept"`
	CategoryID      int64     `json:"category_id"`
	Category        string    `json:"category,omitempty"`
	EstimatedAmount float64   `json:"estimated_amount"`
	PlannedDate     LocalDate `json:"planned_date"`
	Description     string    `json:"description,omitempty"`
	State           PlanState `json:"state"`
}

// ============================================================
// Derived views (never persisted, always rebuilt from source)
// ============================================================

// ExpenseDetail is one line inside a category aggregate.
type ExpenseDetail struct {
	Concept string    `json:"concept"`
	Amount  float64   `json:"amount"`
	Date    LocalDate `json:"date"`
}

// CategoryAggregate is the per-category fold of a set of expenses.
type CategoryAggregate struct {
	Category Category        `json:"category"`
	Total    float64         `json:"total"`
	Count    int             `json:"count"`
	Details  []ExpenseDetail `json:"details"`
}

// DayClass drives calendar presentation only; it never affects
// lifecycle state.
type DayClass string

const (
	DayPast   DayClass = "past"
	DayToday  DayClass = "today"
	DayFuture DayClass = "future"
)

// DayBucket groups the pending planned expenses of one calendar day.
type DayBucket struct {
	Date       LocalDate        `json:"date"`
	Items      []PlannedExpense `json:"items"`
	Total      float64          `json:"total"`
	ColorClass DayClass         `json:"color_class"`
}

// ============================================================
// Budget
// ============================================================

// BudgetLimit is a single scalar preference, overwritten on update.
type BudgetLimit struct {
	MonthlyLimit float64 `json:"monthly_limit"`
}

// BudgetDecision is the advisory result of evaluating a commit
// against the monthly limit. It classifies; it never blocks.
type BudgetDecision struct {
	Allowed        bool    `json:"allowed"`
	ProjectedTotal float64 `json:"projected_total"`
	OverBy         float64 `json:"over_by"`
}

// ============================================================
// API request / response shapes
// ============================================================

// CreateExpenseRequest is the body for POST /v1/expenses.
// Override commits the expense even when the budget evaluation
// flags it as over the limit.
type CreateExpenseRequest struct {
	Concept     string  `json:"concept"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date,omitempty"` // YYYY-MM-DD, empty = today
	Category    string  `json:"category"`
	PaymentType string  `json:"payment_type,omitempty"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location,omitempty"`
	Override    bool    `json:"override,omitempty"`
}

// CreateExpenseResponse carries the persisted expense and the budget
// decision computed before the commit.
type CreateExpenseResponse struct {
	Expense *Expense        `json:"expense"`
	Budget  *BudgetDecision `json:"budget,omitempty"`
}

// CreatePlanRequest is the body for POST /v1/planned.
type CreatePlanRequest struct {
	Concept         string  `json:"concept"`
	CategoryID      int64   `json:"category_id"`
	EstimatedAmount float64 `json:"estimated_amount"`
	PlannedDate     string  `json:"planned_date"` // YYYY-MM-DD
	Description     string  `json:"description,omitempty"`
}

// ExpenseSummary is the aggregate view for a period.
// CatalogFallback is true when the remote catalog could not be
// fetched and the built-in default catalog was used instead.
type ExpenseSummary struct {
	From            LocalDate           `json:"from"`
	To              LocalDate           `json:"to"`
	Total           float64             `json:"total"`
	Aggregates      []CategoryAggregate `json:"aggregates"`
	CatalogFallback bool                `json:"catalog_fallback,omitempty"`
}

// CalendarView is the day-bucketed presentation of pending plans.
type CalendarView struct {
	Today   LocalDate   `json:"today"`
	Buckets []DayBucket `json:"buckets"`
}

// EvaluateBudgetRequest is the body for POST /v1/budget/evaluate.
// Limit is optional; when absent the stored preference is used.
type EvaluateBudgetRequest struct {
	CurrentTotal float64  `json:"current_total"`
	Incoming     float64  `json:"incoming"`
	Limit        *float64 `json:"limit,omitempty"`
}

// PlannerMetrics is returned by GET /v1/metrics/planner.
type PlannerMetrics struct {
	PlansCreated     int64   `json:"plans_created"`
	PlansExecuted    int64   `json:"plans_executed"`
	PlansCancelled   int64   `json:"plans_cancelled"`
	CatalogFallbacks int64   `json:"catalog_fallbacks"`
	StoreErrors      int64   `json:"store_errors"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
}

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
