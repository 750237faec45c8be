package scenario

import "errors"

// Validation errors surfaced synchronously to Apply callers. A rejected
// request never mutates registry state.
var (
	ErrUnknownCity     = errors.New("unknown city")
	ErrUnknownKind     = errors.New("unknown scenario kind")
	ErrNoEffect        = errors.New("override forces no fields")
	ErrInvalidValue    = errors.New("override value out of range")
	ErrInvalidDuration = errors.New("duration must be positive")
)
