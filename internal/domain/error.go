package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotOwner        = errors.New("resource belongs to another account")

	// Redemption outcomes. All four are "forbidden" reasons: deterministic
	// negative decisions, never retried.
	ErrPromoInactive     = errors.New("promo inactive or outside validity window")
	ErrTargetingMismatch = errors.New("user does not match promo targeting")
	ErrFraudDenied       = errors.New("fraud verdict denied activation")
	ErrCapacityExceeded  = errors.New("promo capacity exceeded")

	// ErrUpstream marks a fraud-oracle failure (unreachable, timeout or
	// malformed response). Surfaced without internal retry.
	ErrUpstream = errors.New("upstream fraud service failed")

	// ErrConflict is returned when capacity-guard contention outlives the
	// internal bounded retry.
	ErrConflict = errors.New("concurrent update conflict")

	ErrInvalidExecContext = errors.New("invalid query executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
