package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrUnauthenticated    = errors.New("caller is not authenticated")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidSignature   = errors.New("payment signature mismatch")
	ErrPlanNotFound       = errors.New("referenced plan not found")
	ErrUpstream           = errors.New("payment gateway call failed")
	ErrAlreadyProcessed   = errors.New("payment already processed")
	ErrRateLimited        = errors.New("too many requests")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction handle")
)
