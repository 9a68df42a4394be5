package domain

import "errors"

// Sentinel errors for the five failure classes the HTTP layer distinguishes.
// Services wrap them with fmt.Errorf("%w: ...") so handlers and middleware
// can map them with errors.Is while the message keeps the specifics.
var (
	// ErrValidation covers malformed or semantically invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization means the actor's role (or department membership)
	// does not permit the operation in the entity's current state.
	ErrAuthorization = errors.New("not authorized")
	// ErrInvalidTransition means the workflow definition has no edge
	// between the two statuses, regardless of who is asking.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict signals a lost race: a duplicate key or a
	// compare-and-swap whose expected state no longer holds.
	ErrConflict = errors.New("conflicting concurrent update")
	ErrNotFound = errors.New("not found")
)
