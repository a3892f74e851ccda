// Package certainty folds independent signal and model inputs into one bounded
// score. The blend is a fixed-weight linear combination so the score stays
// monotonic in every input and a rejected trade can always be explained by
// pointing at the inputs.
package certainty

import "marlin/internal/signal"

// Inputs are supplied by the external model-scoring subsystem. Each component
// is expected in roughly [0,1]; the liquidity penalty subtracts.
type Inputs struct {
	ModelMargin      float64 `json:"model_margin"`
	LiquidityPenalty float64 `json:"liquidity_penalty"`
	RegimeScore      float64 `json:"regime_score"`
	CalibrationScore float64 `json:"calibration_score"`
}

// Blend weights. Fixed for compatibility with recorded decisions; changing any
// of these invalidates historical certainty comparisons.
const (
	weightModelMargin = 0.35
	weightAgreement   = 0.25
	weightRegime      = 0.15
	weightCalibration = 0.15
	weightLiquidity   = 0.10
)

// Score blends ensemble agreement with model inputs, clamped to [0,1].
func Score(signals []signal.Signal, in Inputs) float64 {
	agreement := signal.Agreement(signals)
	score := weightModelMargin*in.ModelMargin +
		weightAgreement*agreement +
		weightRegime*in.RegimeScore +
		weightCalibration*in.CalibrationScore -
		weightLiquidity*in.LiquidityPenalty
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ExpectedValue is the edge net of costs (slippage and commission are modeled
// by the caller).
func ExpectedValue(edge, costs float64) float64 {
	return edge - costs
}
