// End-to-end scenario against a fake PostgREST store: the full
// create, bucket, execute, aggregate flow through the real router,
// service and REST client.
package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/handler"
	"github.com/aureum/expense-planner-go/internal/infra/cache"
	"github.com/aureum/expense-planner-go/internal/infra/observability"
	"github.com/aureum/expense-planner-go/internal/infra/prefs"
	"github.com/aureum/expense-planner-go/internal/infra/resilience"
	"github.com/aureum/expense-planner-go/internal/infra/rest"
	"github.com/aureum/expense-planner-go/internal/service"
)

// ============================================================
// Fake PostgREST store
// ============================================================

type plannedRow struct {
	ID              string  `json:"id"`
	Concept         string  `json:"concepto"`
	CategoryID      int64   `json:"categoria_id"`
	Category        string  `json:"categoria,omitempty"`
	EstimatedAmount float64 `json:"monto_estimado"`
	PlannedDate     string  `json:"fecha_planificada"`
	Description     string  `json:"descripcion,omitempty"`
	StateID         int     `json:"estado_id"`
}

type fakeStore struct {
	mu      sync.Mutex
	gastos  []json.RawMessage
	planned map[string]*plannedRow
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimPrefix(r.URL.Query().Get(key), "eq.")
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/rest/v1/categorias", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": 1, "nombre": "Alimentación", "tipo": "gasto"},
			{"id": 2, "nombre": "Transporte", "tipo": "gasto"}
		]`)
	})

	mux.HandleFunc("/rest/v1/gastos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(f.gastos)
		case http.MethodPost:
			var raw json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&raw)
			f.gastos = append(f.gastos, raw)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, "[%s]", raw)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/rest/v1/gastos_planificados", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			if id := queryValue(r, "id"); id != "" {
				if p, ok := f.planned[id]; ok {
					_ = json.NewEncoder(w).Encode([]*plannedRow{p})
				} else {
					fmt.Fprint(w, "[]")
				}
				return
			}
			rows := make([]*plannedRow, 0, len(f.planned))
			for _, p := range f.planned {
				rows = append(rows, p)
			}
			_ = json.NewEncoder(w).Encode(rows)
		case http.MethodPost:
			var row plannedRow
			_ = json.NewDecoder(r.Body).Decode(&row)
			f.planned[row.ID] = &row
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode([]*plannedRow{&row})
		case http.MethodPatch:
			id := queryValue(r, "id")
			p, ok := f.planned[id]
			if !ok || p.StateID != 1 {
				fmt.Fprint(w, "[]")
				return
			}
			var patch struct {
				StateID int `json:"estado_id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&patch)
			p.StateID = patch.StateID
			_ = json.NewEncoder(w).Encode([]*plannedRow{p})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	// Executes a pending plan and inserts the realized expense in
	// one step, the way the real store does it in a transaction.
	mux.HandleFunc("/rest/v1/rpc/ejecutar_gasto_planificado", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var payload struct {
			PlanID string          `json:"plan_id"`
			Gasto  json.RawMessage `json:"gasto"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)

		p, ok := f.planned[payload.PlanID]
		if !ok || p.StateID != 1 {
			fmt.Fprint(w, "[]")
			return
		}
		p.StateID = 2
		f.gastos = append(f.gastos, payload.Gasto)
		fmt.Fprintf(w, "[%s]", payload.Gasto)
	})

	return mux
}

// ============================================================
// Scenario
// ============================================================

func newPlannerAPI(t *testing.T, storeURL string) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	store := rest.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		storeURL,
		"test-key",
		resilience.NewCircuitBreaker("finance-store", logger),
		resilience.NewBulkhead(4, time.Second),
		resilience.RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond},
		metrics,
		logger,
	)

	preferenceStore, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))
	if err != nil {
		t.Fatalf("prefs: %v", err)
	}

	svc := service.NewPlannerService(
		store,
		preferenceStore,
		cache.New[[]domain.Category](time.Hour),
		metrics,
		logger,
	).WithClock(func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	})

	return handler.NewRouter(handler.NewPlannerHandler(svc, logger), metrics, logger)
}

func call(t *testing.T, api http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func TestPlanLifecycleEndToEnd(t *testing.T) {
	fake := &fakeStore{planned: make(map[string]*plannedRow)}
	backend := httptest.NewServer(fake.handler())
	defer backend.Close()

	api := newPlannerAPI(t, backend.URL)

	// Create a plan for five days out.
	rec := call(t, api, http.MethodPost, "/v1/planned",
		`{"concept": "Revisión del coche", "category_id": 2, "estimated_amount": 180.50, "planned_date": "2026-03-20"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan: %d %s", rec.Code, rec.Body.String())
	}
	var plan domain.PlannedExpense
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.State != domain.PlanPending || plan.Category != "Transporte" {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	// It shows up in the calendar as a future bucket.
	rec = call(t, api, http.MethodGet, "/v1/planned/calendar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar: %d", rec.Code)
	}
	var view domain.CalendarView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if len(view.Buckets) != 1 || view.Buckets[0].ColorClass != domain.DayFuture || view.Buckets[0].Total != 180.50 {
		t.Fatalf("unexpected calendar: %+v", view.Buckets)
	}

	// Execute it.
	rec = call(t, api, http.MethodPost, "/v1/planned/"+plan.ID+"/execute", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("execute: %d %s", rec.Code, rec.Body.String())
	}
	var executed domain.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &executed); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if executed.Amount != 180.50 || executed.Date.String() != "2026-03-15" {
		t.Fatalf("unexpected expense: %+v", executed)
	}

	// The executed plan left the calendar.
	rec = call(t, api, http.MethodGet, "/v1/planned/calendar", "")
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if len(view.Buckets) != 0 {
		t.Fatalf("executed plan still bucketed: %+v", view.Buckets)
	}

	// The expense folded into its category aggregate.
	rec = call(t, api, http.MethodGet, "/v1/expenses/summary?from=2026-03-01&to=2026-03-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", rec.Code, rec.Body.String())
	}
	var summary domain.ExpenseSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.CatalogFallback {
		t.Error("catalog came from the store, fallback flag must be off")
	}
	if summary.Total != 180.50 {
		t.Errorf("expected total 180.50, got %v", summary.Total)
	}
	found := false
	for _, agg := range summary.Aggregates {
		if agg.Category.Name == "Transporte" {
			found = true
			if agg.Total != 180.50 || agg.Count != 1 {
				t.Errorf("Transporte aggregate: %+v", agg)
			}
		}
	}
	if !found {
		t.Error("Transporte aggregate missing")
	}

	// Repeat execute and cancel both answer 409 and change nothing.
	rec = call(t, api, http.MethodPost, "/v1/planned/"+plan.ID+"/execute", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second execute: expected 409, got %d", rec.Code)
	}
	rec = call(t, api, http.MethodPost, "/v1/planned/"+plan.ID+"/cancel", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("cancel after execute: expected 409, got %d", rec.Code)
	}
	if len(fake.gastos) != 1 {
		t.Fatalf("expected exactly one stored expense, got %d", len(fake.gastos))
	}
}

func TestCancelEndToEnd(t *testing.T) {
	fake := &fakeStore{planned: make(map[string]*plannedRow)}
	backend := httptest.NewServer(fake.handler())
	defer backend.Close()

	api := newPlannerAPI(t, backend.URL)

	rec := call(t, api, http.MethodPost, "/v1/planned",
		`{"concept": "Entradas", "category_id": 1, "estimated_amount": 40, "planned_date": "2026-03-18"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	var plan domain.PlannedExpense
	_ = json.Unmarshal(rec.Body.Bytes(), &plan)

	rec = call(t, api, http.MethodPost, "/v1/planned/"+plan.ID+"/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body.String())
	}

	// Cancelled plans never execute and never create expenses.
	rec = call(t, api, http.MethodPost, "/v1/planned/"+plan.ID+"/execute", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("execute after cancel: expected 409, got %d", rec.Code)
	}
	if len(fake.gastos) != 0 {
		t.Fatalf("cancelled plan produced an expense")
	}

	// Unknown ids are 404.
	rec = call(t, api, http.MethodPost, "/v1/planned/ghost/cancel", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown plan: expected 404, got %d", rec.Code)
	}
}

func TestBudgetAdvisoryEndToEnd(t *testing.T) {
	fake := &fakeStore{planned: make(map[string]*plannedRow)}
	backend := httptest.NewServer(fake.handler())
	defer backend.Close()

	api := newPlannerAPI(t, backend.URL)

	// Configure a limit, spend most of it, then trip the gate.
	rec := call(t, api, http.MethodPut, "/v1/budget", `{"monthly_limit": 100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put budget: %d", rec.Code)
	}

	rec = call(t, api, http.MethodPost, "/v1/expenses",
		`{"concept": "compra grande", "amount": 90, "category": "Compras", "date": "2026-03-10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first expense: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, api, http.MethodPost, "/v1/expenses",
		`{"concept": "capricho", "amount": 20, "category": "Compras", "date": "2026-03-11"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("over-limit expense: expected advisory 200, got %d", rec.Code)
	}
	var resp domain.CreateExpenseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Expense != nil {
		t.Error("over-limit expense must not be persisted without override")
	}
	if resp.Budget == nil || resp.Budget.Allowed || resp.Budget.ProjectedTotal != 110 || resp.Budget.OverBy != 10 {
		t.Fatalf("unexpected decision: %+v", resp.Budget)
	}

	// Override commits it anyway.
	rec = call(t, api, http.MethodPost, "/v1/expenses",
		`{"concept": "capricho", "amount": 20, "category": "Compras", "date": "2026-03-11", "override": true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("override: expected 201, got %d", rec.Code)
	}
	if len(fake.gastos) != 2 {
		t.Fatalf("expected 2 stored expenses, got %d", len(fake.gastos))
	}
}
