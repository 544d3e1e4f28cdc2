package shared

import "errors"

// Error taxonomy shared across domain packages. Services wrap these with
// fmt.Errorf("%w: ...") so handlers can map them to HTTP statuses.
var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrConflict indicates the operation conflicts with existing state,
	// e.g. deleting a customer that still has ledger transactions.
	ErrConflict = errors.New("conflict")
	// ErrPersistence indicates a backing store call failed.
	ErrPersistence = errors.New("persistence failure")
	// ErrForbidden indicates the actor lacks permission.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates the request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
