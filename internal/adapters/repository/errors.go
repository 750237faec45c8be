package repository

import "errors"

var (
	// ErrNotFound indicates the requested city has no current state.
	ErrNotFound = errors.New("city state not found")
	// ErrNoSnapshot indicates no tick has completed yet.
	ErrNoSnapshot = errors.New("no snapshot published yet")
	// ErrInvalidCapacity indicates a non-positive history capacity.
	ErrInvalidCapacity = errors.New("history capacity must be positive")
)
