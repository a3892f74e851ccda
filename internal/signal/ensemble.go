package signal

import "math"

// MomentumBreakout votes on VWAP/MA alignment with volume backing.
func MomentumBreakout(features Features) Signal {
	return Signal{
		Name:       "momentum_breakout",
		Direction:  Long,
		Confidence: clamp01(features.get("trend_alignment")),
		Rationale:  "VWAP/MA alignment with volume surge",
	}
}

// MeanReversion votes on reversion potential after a gap.
func MeanReversion(features Features) Signal {
	return Signal{
		Name:       "mean_reversion",
		Direction:  Long,
		Confidence: clamp01(1 - math.Abs(features.get("gap_pct"))),
		Rationale:  "Deviation from VWAP reversion potential",
	}
}

// VolatilityBreakout votes on true-range expansion.
func VolatilityBreakout(features Features) Signal {
	return Signal{
		Name:       "volatility_breakout",
		Direction:  Long,
		Confidence: clamp01(features.get("volatility_expansion")),
		Rationale:  "ATR/true range expansion",
	}
}

// Ensemble runs every strategy against the same feature set.
func Ensemble(features Features) []Signal {
	return []Signal{
		MomentumBreakout(features),
		MeanReversion(features),
		VolatilityBreakout(features),
	}
}

// Agreement is the mean confidence across signals, capped at 1. An empty
// ensemble means no agreement, not an error.
func Agreement(signals []Signal) float64 {
	if len(signals) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, s := range signals {
		sum += s.Confidence
	}
	return math.Min(1.0, sum/float64(len(signals)))
}
