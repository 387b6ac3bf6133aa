// Package errs contains sentinel errors shared by the storage, service and
// transport layers so HTTP status mapping stays in one place.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity (popup, device identity) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing, malformed, expired or wrongly signed credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates a write payload that does not match the expected shape.
	ErrValidation = errors.New("validation failed")

	// ErrStateMissing indicates the state document was not seeded before a mutation.
	ErrStateMissing = errors.New("state document missing")

	// ErrUpstream indicates a failed fetch from an external calendar or weather source.
	ErrUpstream = errors.New("upstream fetch failed")
)
