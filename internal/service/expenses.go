package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/engine"
)

// ListExpenses returns the expenses of a period.
func (s *PlannerService) ListExpenses(ctx context.Context, from, to domain.LocalDate) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.ListExpenses")
	defer span.End()

	return s.store.FetchExpenses(ctx, from, to)
}

// CreateExpense validates and persists a manual expense. Before the
// commit the month's running total is evaluated against the budget
// limit; when the result is over the limit and the request carries
// no override, nothing is persisted and the decision alone is
// returned so the client can ask the user.
func (s *PlannerService) CreateExpense(ctx context.Context, req domain.CreateExpenseRequest) (*domain.CreateExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.CreateExpense")
	defer span.End()

	if strings.TrimSpace(req.Concept) == "" {
		return nil, &domain.ErrValidation{Field: "concept", Message: "must not be empty"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	date := domain.DateOf(s.now())
	if req.Date != "" {
		parsed, err := domain.ParseLocalDate(req.Date)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		date = parsed
	}

	decision := s.evaluateMonth(ctx, date, req.Amount)
	if decision != nil && !decision.Allowed && !req.Override {
		return &domain.CreateExpenseResponse{Budget: decision}, nil
	}

	expense := &domain.Expense{
		ID:          uuid.NewString(),
		Concept:     strings.TrimSpace(req.Concept),
		Amount:      req.Amount,
		Date:        date,
		Category:    domain.CategoryName(strings.TrimSpace(req.Category)),
		PaymentType: req.PaymentType,
		Description: req.Description,
		Location:    req.Location,
	}

	if err := s.store.PersistExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.logger.Info("expense created",
		zap.String("expense_id", expense.ID),
		zap.Float64("amount", expense.Amount))
	return &domain.CreateExpenseResponse{Expense: expense, Budget: decision}, nil
}

// evaluateMonth computes the advisory budget decision for adding
// amount on date. A store or preference failure degrades to no
// decision; budgeting never blocks the expense path on its own.
func (s *PlannerService) evaluateMonth(ctx context.Context, date domain.LocalDate, amount float64) *domain.BudgetDecision {
	limit, err := s.prefs.LoadBudgetLimit()
	if err != nil {
		s.logger.Warn("budget limit unavailable", zap.Error(err))
		return nil
	}
	if limit == nil || *limit <= 0 {
		return nil
	}

	from, to := monthBounds(date)
	expenses, err := s.store.FetchExpenses(ctx, from, to)
	if err != nil {
		s.logger.Warn("month total unavailable, skipping budget evaluation", zap.Error(err))
		return nil
	}

	decision := engine.EvaluateBudget(engine.GrandTotal(expenses), amount, limit)
	return &decision
}

func monthBounds(d domain.LocalDate) (domain.LocalDate, domain.LocalDate) {
	first := domain.LocalDate{Year: d.Year, Month: d.Month, Day: 1}
	firstOfNext := domain.DateOf(time.Date(d.Year, d.Month+1, 1, 0, 0, 0, 0, time.UTC))
	return first, firstOfNext.AddDays(-1)
}

// DeleteExpense removes an expense from the store.
func (s *PlannerService) DeleteExpense(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "PlannerService.DeleteExpense")
	defer span.End()

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.logger.Info("expense deleted", zap.String("expense_id", id))
	return nil
}

// Summary aggregates the period's expenses over the catalog. The
// catalog and the expenses are fetched in parallel; an expense
// failure fails the summary, a catalog failure only degrades it to
// the default catalog.
func (s *PlannerService) Summary(ctx context.Context, from, to domain.LocalDate) (*domain.ExpenseSummary, error) {
	ctx, span := tracer.Start(ctx, "PlannerService.Summary")
	defer span.End()

	var (
		catalog  []domain.Category
		fallback bool
		expenses []domain.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		catalog, fallback = s.Catalog(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.FetchExpenses(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.ExpenseSummary{
		From:            from,
		To:              to,
		Total:           engine.GrandTotal(expenses),
		Aggregates:      engine.Aggregate(expenses, catalog),
		CatalogFallback: fallback,
	}, nil
}
