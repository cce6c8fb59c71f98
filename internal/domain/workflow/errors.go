package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the action is not legal from the
	// request's current stage
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrForbidden is returned when the actor's role does not satisfy the
	// transition's role gate
	ErrForbidden = errors.New("action forbidden for actor")

	// ErrInvalidRequest is returned when a field guard fails (dates out of
	// order, empty travel modes on submit)
	ErrInvalidRequest = errors.New("invalid request fields")
)
