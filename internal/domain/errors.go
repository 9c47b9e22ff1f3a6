package domain

import "fmt"

// ============================================================
// Typed errors
// ============================================================

// ErrInvalidPlan signals a planned expense that fails validation
// before any persistence is attempted.
type ErrInvalidPlan struct {
	Field   string
	Message string
}

func (e *ErrInvalidPlan) Error() string {
	return fmt.Sprintf("invalid plan: %s: %s", e.Field, e.Message)
}

// ErrAlreadyFinalized signals an execute or cancel against a plan
// that already reached a terminal state. The stored record is not
// modified.
type ErrAlreadyFinalized struct {
	PlanID string
	State  PlanState
}

func (e *ErrAlreadyFinalized) Error() string {
	return fmt.Sprintf("plan %s already finalized (state=%s)", e.PlanID, e.State)
}

// ErrCatalogUnavailable signals that the remote category catalog
// could not be fetched. Callers fall back to the default catalog and
// keep going; this error degrades, it never aborts.
type ErrCatalogUnavailable struct {
	Err error
}

func (e *ErrCatalogUnavailable) Error() string {
	return fmt.Sprintf("category catalog unavailable: %v", e.Err)
}

func (e *ErrCatalogUnavailable) Unwrap() error {
	return e.Err
}

// ErrPersistenceFailure signals a failed write against the remote
// store. Any optimistic local transition must be rolled back.
type ErrPersistenceFailure struct {
	Op  string
	ID  string
	Err error
}

func (e *ErrPersistenceFailure) Error() string {
	return fmt.Sprintf("persistence failure in %s (id=%s): %v", e.Op, e.ID, e.Err)
}

func (e *ErrPersistenceFailure) Unwrap() error {
	return e.Err
}

// ErrNotFound signals a missing resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation signals malformed request input.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ErrExternalService signals a failed call to an upstream dependency.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}
