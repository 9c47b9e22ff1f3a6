package engine

import (
	"sort"

	"github.com/aureum/expense-planner-go/internal/domain"
)

// Bucket groups pending planned expenses by their calendar day.
// Executed and cancelled plans are excluded. Each bucket carries the
// sum of its estimated amounts and a past/today/future class relative
// to today. Buckets come back sorted ascending by date.
func Bucket(plans []domain.PlannedExpense, today domain.LocalDate) []domain.DayBucket {
	byDay := make(map[domain.LocalDate]*domain.DayBucket)
	centsByDay := make(map[domain.LocalDate]int64)

	for _, p := range plans {
		if p.State != domain.PlanPending {
			continue
		}
		day := p.PlannedDate
		b, ok := byDay[day]
		if !ok {
			b = &domain.DayBucket{
				Date:       day,
				Items:      []domain.PlannedExpense{},
				ColorClass: classify(day, today),
			}
			byDay[day] = b
		}
		b.Items = append(b.Items, p)
		centsByDay[day] += domain.ToCents(p.EstimatedAmount)
	}

	buckets := make([]domain.DayBucket, 0, len(byDay))
	for day, b := range byDay {
		b.Total = domain.FromCents(centsByDay[day])
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets
}

func classify(day, today domain.LocalDate) domain.DayClass {
	switch {
	case day.Before(today):
		return domain.DayPast
	case day.Equal(today):
		return domain.DayToday
	default:
		return domain.DayFuture
	}
}
