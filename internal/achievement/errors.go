package achievement

import "errors"

var (
	// ErrAlreadyAwarded indicates the (user, name) record already exists.
	// Callers treat it as an idempotent no-op, not a failure.
	ErrAlreadyAwarded = errors.New("achievement already awarded")
	// ErrNotFound indicates a required document was absent.
	ErrNotFound = errors.New("not found")
	// ErrMissingUserID indicates a required user id was absent.
	ErrMissingUserID = errors.New("user id is required")
)
