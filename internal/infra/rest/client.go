// Package rest implements port.PlannerStore against a PostgREST
// style financial API. Every call runs inside the circuit breaker,
// the bulkhead and the retry policy.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
	"github.com/aureum/expense-planner-go/internal/infra/observability"
	"github.com/aureum/expense-planner-go/internal/infra/resilience"
)

var tracer = otel.Tracer("rest")

// Client wraps HTTP calls to the financial store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	retry      resilience.RetryConfig
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a store client.
func NewClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, retry resilience.RetryConfig, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		bulkhead:   bulkhead,
		retry:      retry,
		metrics:    metrics,
		logger:     logger,
	}
}

// call wraps an operation with bulkhead, breaker, retry and metrics.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.bulkhead.Execute(ctx, func() error {
			return resilience.RetryWithBackoff(ctx, c.logger, c.retry, op, fn)
		})
	})
	c.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
	return err
}

// doRequest executes one authenticated request. 404 and 204 come
// back as a nil body with no error; 4xx responses are permanent and
// never retried.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("encoding request body: %w", err))
		}
		reqBody = bytes.NewReader(encoded)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("store: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		c.logger.Warn("store: client error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, resilience.Permanent(fmt.Errorf("store returned status %d: %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("store: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("store returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ============================================================
// Row mappings (store columns are Spanish, domain is English)
// ============================================================

type categoryRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Kind  string `json:"tipo"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icono,omitempty"`
}

const (
	kindGasto   = "gasto"
	kindIngreso = "ingreso"
)

func kindColumn(kind domain.CategoryKind) string {
	if kind == domain.KindIncome {
		return kindIngreso
	}
	return kindGasto
}

func kindFromColumn(tipo string) domain.CategoryKind {
	if tipo == kindIngreso {
		return domain.KindIncome
	}
	return domain.KindExpense
}

type expenseRow struct {
	ID          string              `json:"id"`
	Concept     string              `json:"concepto"`
	Amount      float64             `json:"monto"`
	Date        domain.LocalDate    `json:"fecha"`
	Category    domain.CategoryName `json:"categoria"`
	PaymentType string              `json:"tipo_pago,omitempty"`
	Description string              `json:"descripcion,omitempty"`
	Location    string              `json:"ubicacion,omitempty"`
}

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:          r.ID,
		Concept:     r.Concept,
		Amount:      r.Amount,
		Date:        r.Date,
		Category:    r.Category,
		PaymentType: r.PaymentType,
		Description: r.Description,
		Location:    r.Location,
	}
}

func expenseToRow(e *domain.Expense) expenseRow {
	return expenseRow{
		ID:          e.ID,
		Concept:     e.Concept,
		Amount:      e.Amount,
		Date:        e.Date,
		Category:    e.Category,
		PaymentType: e.PaymentType,
		Description: e.Description,
		Location:    e.Location,
	}
}

// Plan lifecycle state ids in the store.
const (
	estadoPendiente  = 1
	estadoCompletado = 2
	estadoCancelado  = 3
)

func stateID(s domain.PlanState) int {
	switch s {
	case domain.PlanExecuted:
		return estadoCompletado
	case domain.PlanCancelled:
		return estadoCancelado
	default:
		return estadoPendiente
	}
}

func stateFromID(id int) domain.PlanState {
	switch id {
	case estadoCompletado:
		return domain.PlanExecuted
	case estadoCancelado:
		return domain.PlanCancelled
	default:
		return domain.PlanPending
	}
}

type plannedRow struct {
	ID              string              `json:"id"`
	Concept         string              `json:"concepto"`
	CategoryID      int64               `json:"categoria_id"`
	Category        domain.CategoryName `json:"categoria,omitempty"`
	EstimatedAmount float64             `json:"monto_estimado"`
	PlannedDate     domain.LocalDate    `json:"fecha_planificada"`
	Description     string              `json:"descripcion,omitempty"`
	StateID         int                 `json:"estado_id"`
}

func (r plannedRow) toDomain() domain.PlannedExpense {
	return domain.PlannedExpense{
		ID:              r.ID,
		Concept:         r.Concept,
		CategoryID:      r.CategoryID,
		Category:        r.Category.String(),
		EstimatedAmount: r.EstimatedAmount,
		PlannedDate:     r.PlannedDate,
		Description:     r.Description,
		State:           stateFromID(r.StateID),
	}
}

func plannedToRow(p *domain.PlannedExpense) plannedRow {
	return plannedRow{
		ID:              p.ID,
		Concept:         p.Concept,
		CategoryID:      p.CategoryID,
		Category:        domain.CategoryName(p.Category),
		EstimatedAmount: p.EstimatedAmount,
		PlannedDate:     p.PlannedDate,
		Description:     p.Description,
		StateID:         stateID(p.State),
	}
}

// ============================================================
// Categories
// ============================================================

// FetchCategories lists the catalog for one kind, ordered by id.
func (c *Client) FetchCategories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchCategories")
	defer span.End()
	span.SetAttributes(attribute.String("category.kind", string(kind)))

	var categories []domain.Category
	err := c.call(ctx, "fetch_categories", func() error {
		path := fmt.Sprintf("categorias?tipo=eq.%s&order=id.asc", kindColumn(kind))
		body, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		var rows []categoryRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode categories: %w", err)
			}
		}
		categories = make([]domain.Category, 0, len(rows))
		for _, r := range rows {
			categories = append(categories, domain.Category{
				ID:    r.ID,
				Name:  r.Name,
				Kind:  kindFromColumn(r.Kind),
				Color: r.Color,
				Icon:  r.Icon,
			})
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "store/categories", Err: err}
	}
	return categories, nil
}

// ============================================================
// Expenses
// ============================================================

// FetchExpenses lists expenses between two dates inclusive.
func (c *Client) FetchExpenses(ctx context.Context, from, to domain.LocalDate) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchExpenses")
	defer span.End()
	span.SetAttributes(
		attribute.String("period.from", from.String()),
		attribute.String("period.to", to.String()),
	)

	var expenses []domain.Expense
	err := c.call(ctx, "fetch_expenses", func() error {
		path := fmt.Sprintf("gastos?fecha=gte.%s&fecha=lte.%s&order=fecha.desc", from, to)
		body, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		var rows []expenseRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode expenses: %w", err)
			}
		}
		expenses = make([]domain.Expense, 0, len(rows))
		for _, r := range rows {
			expenses = append(expenses, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "store/expenses", Err: err}
	}
	return expenses, nil
}

// PersistExpense inserts a new expense row.
func (c *Client) PersistExpense(ctx context.Context, e *domain.Expense) error {
	ctx, span := tracer.Start(ctx, "Store.PersistExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", e.ID))

	err := c.call(ctx, "persist_expense", func() error {
		_, err := c.doRequest(ctx, http.MethodPost, "gastos", expenseToRow(e))
		return err
	})
	if err != nil {
		return &domain.ErrPersistenceFailure{Op: "persist_expense", ID: e.ID, Err: err}
	}
	return nil
}

// DeleteExpense removes an expense. Deleting a missing id is an
// ErrNotFound.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Store.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	err := c.call(ctx, "delete_expense", func() error {
		path := fmt.Sprintf("gastos?id=eq.%s", id)
		body, err := c.doRequest(ctx, http.MethodDelete, path, nil)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "expense", ID: id})
		}
		return nil
	})
	if err != nil {
		return &domain.ErrPersistenceFailure{Op: "delete_expense", ID: id, Err: err}
	}
	return nil
}

// ============================================================
// Planned expenses
// ============================================================

// FetchPlannedExpenses lists every planned expense.
func (c *Client) FetchPlannedExpenses(ctx context.Context) ([]domain.PlannedExpense, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchPlannedExpenses")
	defer span.End()

	var plans []domain.PlannedExpense
	err := c.call(ctx, "fetch_planned", func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "gastos_planificados?order=fecha_planificada.asc", nil)
		if err != nil {
			return err
		}
		var rows []plannedRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode planned expenses: %w", err)
			}
		}
		plans = make([]domain.PlannedExpense, 0, len(rows))
		for _, r := range rows {
			plans = append(plans, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "store/planned", Err: err}
	}
	return plans, nil
}

// GetPlannedExpense fetches one plan by id.
func (c *Client) GetPlannedExpense(ctx context.Context, id string) (*domain.PlannedExpense, error) {
	ctx, span := tracer.Start(ctx, "Store.GetPlannedExpense")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", id))

	var plan *domain.PlannedExpense
	err := c.call(ctx, "get_planned", func() error {
		path := fmt.Sprintf("gastos_planificados?id=eq.%s&limit=1", id)
		body, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "planned expense", ID: id})
		}
		var rows []plannedRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode planned expense: %w", err)
		}
		if len(rows) == 0 {
			return resilience.Permanent(&domain.ErrNotFound{Resource: "planned expense", ID: id})
		}
		p := rows[0].toDomain()
		plan = &p
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "store/planned", Err: err}
	}
	return plan, nil
}

// PersistPlannedExpense inserts a new plan row.
func (c *Client) PersistPlannedExpense(ctx context.Context, p *domain.PlannedExpense) error {
	ctx, span := tracer.Start(ctx, "Store.PersistPlannedExpense")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", p.ID))

	err := c.call(ctx, "persist_planned", func() error {
		_, err := c.doRequest(ctx, http.MethodPost, "gastos_planificados", plannedToRow(p))
		return err
	})
	if err != nil {
		return &domain.ErrPersistenceFailure{Op: "persist_planned", ID: p.ID, Err: err}
	}
	return nil
}

// MarkPlannedExecuted flips a pending plan to executed and inserts
// the realized expense in one store transaction. The RPC only
// touches rows still in the pending state; an empty result means
// another writer finalized the plan first.
func (c *Client) MarkPlannedExecuted(ctx context.Context, id string, executed *domain.Expense) error {
	ctx, span := tracer.Start(ctx, "Store.MarkPlannedExecuted")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", id))

	payload := struct {
		PlanID string     `json:"plan_id"`
		Gasto  expenseRow `json:"gasto"`
	}{PlanID: id, Gasto: expenseToRow(executed)}

	err := c.call(ctx, "mark_executed", func() error {
		body, err := c.doRequest(ctx, http.MethodPost, "rpc/ejecutar_gasto_planificado", payload)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" || string(body) == "null" {
			return resilience.Permanent(&domain.ErrAlreadyFinalized{PlanID: id})
		}
		return nil
	})
	if err != nil {
		return &domain.ErrPersistenceFailure{Op: "mark_executed", ID: id, Err: err}
	}
	return nil
}

// MarkPlannedCancelled flips a pending plan to cancelled. The filter
// on the pending state makes the update conditional; an empty result
// means the plan was already finalized.
func (c *Client) MarkPlannedCancelled(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Store.MarkPlannedCancelled")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", id))

	err := c.call(ctx, "mark_cancelled", func() error {
		path := fmt.Sprintf("gastos_planificados?id=eq.%s&estado_id=eq.%d", id, estadoPendiente)
		body, err := c.doRequest(ctx, http.MethodPatch, path, map[string]int{"estado_id": estadoCancelado})
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return resilience.Permanent(&domain.ErrAlreadyFinalized{PlanID: id})
		}
		return nil
	})
	if err != nil {
		return &domain.ErrPersistenceFailure{Op: "mark_cancelled", ID: id, Err: err}
	}
	return nil
}
