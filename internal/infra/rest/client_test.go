package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/infra/observability"
	"github.com/aureum/expense-planner-go/internal/infra/resilience"
	"github.com/aureum/expense-planner-go/internal/infra/rest"
)

func newClient(baseURL string, retries int) *rest.Client {
	logger := zap.NewNop()
	return rest.NewClient(
		&http.Client{Timeout: 2 * time.Second},
		baseURL,
		"test-key",
		resilience.NewCircuitBreaker("test", logger),
		resilience.NewBulkhead(4, time.Second),
		resilience.RetryConfig{MaxRetries: retries, InitialBackoff: time.Millisecond},
		observability.NewMetrics(),
		logger,
	)
}

func TestFetchCategoriesMapsRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/categorias" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "test-key" {
			t.Error("missing apikey header")
		}
		if got := r.URL.Query().Get("tipo"); got != "eq.gasto" {
			t.Errorf("unexpected tipo filter %q", got)
		}
		w.Write([]byte(`[{"id": 1, "nombre": "Alimentación", "tipo": "gasto", "color": "#FF6B6B"}]`))
	}))
	defer server.Close()

	categories, err := newClient(server.URL, 0).FetchCategories(context.Background(), domain.KindExpense)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
	c := categories[0]
	if c.Name != "Alimentación" || c.Kind != domain.KindExpense || c.Color != "#FF6B6B" {
		t.Errorf("bad mapping: %+v", c)
	}
}

func TestGetPlannedExpenseNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	_, err := newClient(server.URL, 2).GetPlannedExpense(context.Background(), "ghost")

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound in the chain, got %v", err)
	}
}

func TestMarkPlannedCancelledAlreadyFinalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		// Conditional update matched no pending row.
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	err := newClient(server.URL, 0).MarkPlannedCancelled(context.Background(), "p1")

	var finalized *domain.ErrAlreadyFinalized
	if !errors.As(err, &finalized) {
		t.Fatalf("expected ErrAlreadyFinalized in the chain, got %v", err)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "bad row"}`))
	}))
	defer server.Close()

	err := newClient(server.URL, 3).PersistExpense(context.Background(), &domain.Expense{ID: "e1", Concept: "x", Amount: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id": "p1", "concepto": "x", "categoria_id": 1, "monto_estimado": 5, "fecha_planificada": "2026-03-20", "estado_id": 1}]`))
	}))
	defer server.Close()

	plan, err := newClient(server.URL, 3).GetPlannedExpense(context.Background(), "p1")
	if err != nil {
		t.Fatalf("expected retries to recover: %v", err)
	}
	if plan.State != domain.PlanPending || !plan.PlannedDate.Equal(domain.LocalDate{Year: 2026, Month: time.March, Day: 20}) {
		t.Errorf("bad mapping: %+v", plan)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}
