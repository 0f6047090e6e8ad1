package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/joao-fontenele/cartflow/internal/domain"
)

var domainErrors = []error{
	domain.ErrUnauthorized,
	domain.ErrNotFound,
	domain.ErrEmptyCart,
	domain.ErrConsistencyFault,
	domain.ErrInvalidStatus,
	domain.ErrStoreFailure,
}

// Classify passes domain errors through and wraps anything else (driver,
// commit, context errors) as domain.ErrStoreFailure, keeping the cause.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
}

// Postgres error codes a caller can reasonably retry.
var transientCodes = map[pq.ErrorCode]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled
}

// Transient reports whether err is a store failure worth retrying.
func Transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientCodes[pqErr.Code]
	}
	return false
}
