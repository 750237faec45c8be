package pricing

// Fallback formula constants. The fallback is a deterministic stand-in used
// when scoring fails; it is intentionally a separate code path from the
// model and is not tuned to match the model's output.
const (
	fallbackBaselineFuel       = 2.0
	fallbackBaselineCongestion = 5
	fallbackBaselineDemand     = 5

	fallbackFuelWeight       = 0.30
	fallbackCongestionWeight = 0.03
	fallbackDemandWeight     = 0.05
)

// FallbackExplanation is the fixed rationale attached to fallback results.
const FallbackExplanation = "Price estimated with baseline heuristics; pricing model unavailable."

// FallbackMultiplier computes the deterministic linear stand-in multiplier.
func FallbackMultiplier(in Input) float64 {
	return 1.0 +
		(in.FuelPrice-fallbackBaselineFuel)*fallbackFuelWeight +
		float64(in.CongestionIndex-fallbackBaselineCongestion)*fallbackCongestionWeight +
		float64(in.DemandLevel-fallbackBaselineDemand)*fallbackDemandWeight
}

// FallbackResult builds the full fallback result for an input.
func FallbackResult(in Input) Result {
	return Result{
		Multiplier:  FallbackMultiplier(in),
		Explanation: FallbackExplanation,
	}
}
