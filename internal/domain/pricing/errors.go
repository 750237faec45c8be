package pricing

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidInput    = errors.New("invalid scoring input")
	ErrScoringTimeout  = errors.New("scoring timed out")
	ErrProcessFailed   = errors.New("scoring process failed")
	ErrMalformedOutput = errors.New("malformed scoring output")
)
