// Package postgres holds the database/sql implementations of the stores the
// lifecycle engine, search and dashboards depend on.
package postgres

import (
	"errors"

	"github.com/lib/pq"

	apperrors "jobmarket-workers/internal/common/errors"
)

const uniqueViolation = "23505"

// storageError maps a driver error onto the error codes workers understand.
func storageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return apperrors.NewConflictError("Duplicate record", pqErr.Constraint).
			WithMetadata("constraint", pqErr.Constraint).
			WithMetadata("operation", operation)
	}

	return apperrors.NewUnavailableError(operation, err)
}
