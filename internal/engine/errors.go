package engine

import "errors"

var (
	// ErrNoCities indicates the scheduler was built without any cities.
	ErrNoCities = errors.New("no cities configured")
	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("scheduler already running")
)
