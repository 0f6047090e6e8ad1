// Package respond writes the {success, message, ...} envelope every shop
// endpoint answers with and maps domain errors onto it.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/cartflow/internal/domain"
	"github.com/joao-fontenele/cartflow/internal/store"
)

// Failure reasons are part of the public contract; clients match on them.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonNotFound     = "notfound"
	ReasonEmpty        = "empty"
	ReasonInconsistent = "inconsistent"
	ReasonInvalid      = "invalid"
	ReasonError        = "error"
)

type Fields map[string]any

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// Success writes {"success": true} merged with fields.
func Success(w http.ResponseWriter, logger *slog.Logger, status int, fields Fields) {
	body := make(Fields, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	JSON(w, logger, status, body)
}

func fail(w http.ResponseWriter, logger *slog.Logger, status int, reason string) {
	JSON(w, logger, status, Fields{"success": false, "message": reason})
}

func Invalid(w http.ResponseWriter, logger *slog.Logger) {
	fail(w, logger, http.StatusBadRequest, ReasonInvalid)
}

// Failure converts err to its reason and status. Store failures and catalog
// divergence are logged for operators; caller mistakes are not.
func Failure(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, reason := Reason(err)
	switch reason {
	case ReasonInconsistent:
		logger.Error("catalog and cart diverged", "error", err)
	case ReasonError:
		logger.Error("store operation failed", "error", err, "transient", store.Transient(err))
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	fail(w, logger, status, reason)
}

func Reason(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ReasonUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ReasonNotFound
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusUnprocessableEntity, ReasonEmpty
	case errors.Is(err, domain.ErrConsistencyFault):
		return http.StatusConflict, ReasonInconsistent
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, ReasonInvalid
	case store.Transient(err):
		return http.StatusServiceUnavailable, ReasonError
	default:
		return http.StatusInternalServerError, ReasonError
	}
}
