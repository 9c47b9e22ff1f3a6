package engine

import (
	"github.com/aureum/expense-planner-go/internal/domain"
)

// Aggregate folds a set of expenses into per-category totals.
//
// Every catalog category appears in the result even with zero
// matching expenses, in catalog order. Expenses whose category is
// not in the catalog get a synthesized entry appended after the
// catalog entries, in first-seen order. Records with an empty
// category fold into the synthetic "Sin categoría" entry.
//
// Totals are accumulated in integer cents and converted once at the
// end, so many small amounts never drift.
func Aggregate(expenses []domain.Expense, catalog []domain.Category) []domain.CategoryAggregate {
	aggregates := make([]domain.CategoryAggregate, 0, len(catalog))
	index := make(map[string]int, len(catalog))
	cents := make([]int64, 0, len(catalog))

	for _, c := range catalog {
		index[c.Name] = len(aggregates)
		aggregates = append(aggregates, domain.CategoryAggregate{
			Category: c,
			Details:  []domain.ExpenseDetail{},
		})
		cents = append(cents, 0)
	}

	nextSynthID := int64(-1)
	for _, e := range expenses {
		name := e.Category.String()
		if name == "" {
			name = UncategorizedName
		}
		i, ok := index[name]
		if !ok {
			i = len(aggregates)
			index[name] = i
			aggregates = append(aggregates, domain.CategoryAggregate{
				Category: domain.Category{
					ID:    nextSynthID,
					Name:  name,
					Kind:  domain.KindExpense,
					Color: ColorFor(name),
					Icon:  IconFor(name),
				},
				Details: []domain.ExpenseDetail{},
			})
			cents = append(cents, 0)
			nextSynthID--
		}
		cents[i] += domain.ToCents(e.Amount)
		aggregates[i].Count++
		aggregates[i].Details = append(aggregates[i].Details, domain.ExpenseDetail{
			Concept: e.Concept,
			Amount:  e.Amount,
			Date:    e.Date,
		})
	}

	for i := range aggregates {
		aggregates[i].Total = domain.FromCents(cents[i])
	}
	return aggregates
}

// GrandTotal sums a set of expenses in cents.
func GrandTotal(expenses []domain.Expense) float64 {
	var total int64
	for _, e := range expenses {
		total += domain.ToCents(e.Amount)
	}
	return domain.FromCents(total)
}
