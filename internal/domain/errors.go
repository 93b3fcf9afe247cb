package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrMismatch     = errors.New("mismatch")
	ErrDependency   = errors.New("dependency failure")
	ErrPolicy       = errors.New("policy violation")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrHashing is a dependency failure raised by the secret hasher.
	ErrHashing = errors.New("hashing failure")
)

// Failure kinds reported by Kind.
const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindExpired      = "expired"
	KindMismatch     = "mismatch"
	KindDependency   = "dependency"
	KindPolicy       = "policy"
	KindConflict     = "conflict"
	KindUnauthorized = "unauthorized"
)

// Kind classifies err into the failure taxonomy. A nil error yields "" and an
// unclassified error is treated as a dependency failure.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadRequest):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrExpired):
		return KindExpired
	case errors.Is(err, ErrMismatch):
		return KindMismatch
	case errors.Is(err, ErrPolicy):
		return KindPolicy
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindDependency
	}
}
