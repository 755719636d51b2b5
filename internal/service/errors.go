package service

import "errors"

// Domain-level error kinds. The service layer translates store failures into
// these two; store sentinels never cross the service boundary.
var (
	// ErrNotFound signals that the requested id has no corresponding record.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict signals a mutation blocked by a dependent record.
	ErrConflict = errors.New("integrity violation")
)
