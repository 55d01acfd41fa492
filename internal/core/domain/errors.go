package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates a network or HTTP failure talking to the
	// portal. Aborts only the current pagination dimension.
	ErrTransport = errors.New("transport failure")

	// ErrAuthRequired indicates no bearer credential is available.
	ErrAuthRequired = errors.New("authentication required")

	// ErrValidationFailed indicates a retrieved artifact is not a
	// well-formed document.
	ErrValidationFailed = errors.New("document validation failed")

	// ErrNoShortName indicates the seller has no short-name mapping in
	// the profile.
	ErrNoShortName = errors.New("no short name configured for seller")

	// ErrManualStepTimeout indicates the human verification step did
	// not complete within its bounded wait.
	ErrManualStepTimeout = errors.New("manual verification step timed out")

	// ErrRetrieveFailed indicates a retrieval attempt did not produce
	// document bytes.
	ErrRetrieveFailed = errors.New("retrieval failed")
)
