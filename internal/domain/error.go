package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidPlanType    = errors.New("unknown plan type")
	ErrInvalidDateRange   = errors.New("end date must be after start date")
	ErrInvalidTransition  = errors.New("status transition not permitted")
	ErrOperationFailed    = errors.New("operation failed")
	ErrStoreUnavailable   = errors.New("store temporarily unavailable")
	ErrInvalidExecContext = errors.New("invalid query execution context")
	ErrReadDatabaseRow    = errors.New("failed reading database row")
)
