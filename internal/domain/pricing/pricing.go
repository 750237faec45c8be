// Package pricing defines the contract for turning city metrics into a
// price multiplier with a human-readable explanation.
package pricing

import (
	"context"
	"fmt"
	"strings"
)

// Multiplier bounds shared by every scorer implementation.
const (
	MinMultiplier = 0.8
	MaxMultiplier = 2.0
)

// Input carries the metric triple scored for one city.
type Input struct {
	CityID          string
	FuelPrice       float64
	CongestionIndex int
	DemandLevel     int
}

// Result contains the computed multiplier and its rationale.
type Result struct {
	Multiplier  float64
	Explanation string
}

// Scorer computes a price multiplier from an input. Implementations may be
// in-process models, subprocess bridges, or remote calls; callers rely only
// on bounded latency (honor ctx) and an explicit error on failure.
type Scorer interface {
	// Score computes a multiplier, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// Validate rejects inputs outside the model's training range.
func (in Input) Validate() error {
	switch {
	case in.FuelPrice < 1.0 || in.FuelPrice > 3.0:
		return fmt.Errorf("%w: fuel price %.2f outside [1.00, 3.00]", ErrInvalidInput, in.FuelPrice)
	case in.CongestionIndex < 1 || in.CongestionIndex > 10:
		return fmt.Errorf("%w: congestion index %d outside [1, 10]", ErrInvalidInput, in.CongestionIndex)
	case in.DemandLevel < 1 || in.DemandLevel > 10:
		return fmt.Errorf("%w: demand level %d outside [1, 10]", ErrInvalidInput, in.DemandLevel)
	}
	return nil
}

// explain builds the human-readable rationale from threshold phrases.
func explain(in Input, multiplier float64) string {
	var phrases []string

	if in.FuelPrice > 2.0 {
		phrases = append(phrases, "high fuel costs")
	} else if in.FuelPrice < 1.7 {
		phrases = append(phrases, "low fuel costs")
	}

	if in.CongestionIndex >= 8 {
		phrases = append(phrases, "heavy traffic conditions")
	} else if in.CongestionIndex <= 3 {
		phrases = append(phrases, "light traffic conditions")
	}

	if in.DemandLevel >= 8 {
		phrases = append(phrases, "high customer demand")
	} else if in.DemandLevel <= 3 {
		phrases = append(phrases, "low customer demand")
	}

	if multiplier > 1.5 {
		phrases = append(phrases, "significant price increase due to market conditions")
	} else if multiplier < 1.0 {
		phrases = append(phrases, "price reduction due to favorable conditions")
	}

	switch len(phrases) {
	case 0:
		return "Price calculated based on current market conditions."
	case 1:
		return fmt.Sprintf("Price driven by %s.", phrases[0])
	default:
		return fmt.Sprintf("Price driven by %s and %s.",
			strings.Join(phrases[:len(phrases)-1], ", "), phrases[len(phrases)-1])
	}
}
