// Package handler exposes the planner over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/aureum/expense-planner-go/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// handleServiceError maps domain errors to HTTP statuses. Specific
// lifecycle errors are checked before the generic persistence
// wrappers because errors.As walks the whole Unwrap chain.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		invalidPlan *domain.ErrInvalidPlan
		finalized   *domain.ErrAlreadyFinalized
		notFound    *domain.ErrNotFound
		validation  *domain.ErrValidation
		persistence *domain.ErrPersistenceFailure
		external    *domain.ErrExternalService
	)

	switch {
	case errors.As(err, &invalidPlan):
		writeError(w, http.StatusUnprocessableEntity, invalidPlan.Error())
	case errors.As(err, &finalized):
		writeError(w, http.StatusConflict, finalized.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		writeError(w, http.StatusServiceUnavailable, "upstream store temporarily unavailable")
	case errors.As(err, &persistence):
		logger.Error("persistence failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to persist changes")
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream store failed")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
