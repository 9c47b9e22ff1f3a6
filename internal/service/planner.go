// Package service orchestrates the planner use cases on top of the
// store, the preference file and the pure engine.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/engine"
	"github.com/aureum/expense-planner-go/internal/infra/observability"
	"github.com/aureum/expense-planner-go/internal/port"
)

var tracer = otel.Tracer("service")

// PlannerService implements every planner use case. One instance is
// shared across requests; all state lives in the store, the
// preference file and the catalog cache.
type PlannerService struct {
	store   port.PlannerStore
	prefs   port.PreferenceStore
	catalog port.Cache[[]domain.Category]
	metrics *observability.Metrics
	logger  *zap.Logger

	now func() time.Time

	// One mutex per plan id serializes execute/cancel so the
	// check-then-write on the lifecycle state never interleaves.
	planLocks *keyedMutex
}

// NewPlannerService wires a service.
func NewPlannerService(store port.PlannerStore, prefs port.PreferenceStore, catalog port.Cache[[]domain.Category], metrics *observability.Metrics, logger *zap.Logger) *PlannerService {
	return &PlannerService{
		store:     store,
		prefs:     prefs,
		catalog:   catalog,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		planLocks: newKeyedMutex(),
	}
}

// WithClock overrides the clock, for tests.
func (s *PlannerService) WithClock(now func() time.Time) *PlannerService {
	s.now = now
	return s
}

func (s *PlannerService) lockPlan(id string) func() {
	return s.planLocks.lock(id)
}

// Catalog returns the expense catalog, cached for the configured
// TTL. When the store cannot answer (or answers empty) the built-in
// default catalog is returned with fallback=true; catalog problems
// degrade the response, they never fail it.
func (s *PlannerService) Catalog(ctx context.Context) (catalog []domain.Category, fallback bool) {
	ctx, span := tracer.Start(ctx, "PlannerService.Catalog")
	defer span.End()

	if cached, ok := s.catalog.Get(s.now()); ok {
		return cached, false
	}

	fetched, err := s.store.FetchCategories(ctx, domain.KindExpense)
	if err != nil {
		s.metrics.CatalogFallbacks.Inc()
		s.logger.Warn("category catalog unavailable, using default catalog",
			zap.Error(&domain.ErrCatalogUnavailable{Err: err}))
		return engine.DefaultCatalog(), true
	}
	if len(fetched) == 0 {
		s.metrics.CatalogFallbacks.Inc()
		s.logger.Warn("store returned an empty catalog, using default catalog")
		return engine.DefaultCatalog(), true
	}

	decorated := engine.Decorate(fetched)
	s.catalog.Set(decorated, s.now())
	return decorated, false
}

// Categories lists the catalog for one kind. The expense kind goes
// through the cached fallback path; other kinds hit the store
// directly.
func (s *PlannerService) Categories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, bool, error) {
	if kind == "" || kind == domain.KindExpense {
		catalog, fallback := s.Catalog(ctx)
		return catalog, fallback, nil
	}
	fetched, err := s.store.FetchCategories(ctx, kind)
	if err != nil {
		return nil, false, err
	}
	return engine.Decorate(fetched), false, nil
}

// MetricsReport snapshots the planner counters for the JSON metrics
// endpoint.
func (s *PlannerService) MetricsReport() domain.PlannerMetrics {
	return domain.PlannerMetrics{
		PlansCreated:     observability.CounterValue(s.metrics.PlansCreated),
		PlansExecuted:    observability.CounterValue(s.metrics.PlansExecuted),
		PlansCancelled:   observability.CounterValue(s.metrics.PlansCancelled),
		CatalogFallbacks: observability.CounterValue(s.metrics.CatalogFallbacks),
		StoreErrors:      observability.CounterVecTotal(s.metrics.Registry(), "planner_store_errors_total"),
		CacheHitRate:     s.catalog.HitRate(),
	}
}
