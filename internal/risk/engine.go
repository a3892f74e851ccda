// Package risk turns a certainty score into a sized bracket decision under
// portfolio limits. Every function here is pure and total: malformed or
// unsizeable trades degrade to a denied decision, never to an error.
package risk

import "math"

// Config carries the portfolio risk limits. Loaded once at startup and shared
// read-only across all evaluations.
type Config struct {
	BaseRisk            float64
	CMin                float64
	MaxPositions        int
	MaxGrossExposure    float64
	SectorConcentration float64
	DailyMaxLoss        float64
	DrawdownMax         float64
}

// Decision is the outcome of one trade evaluation. Produced fresh per call.
type Decision struct {
	Allowed   bool
	Qty       int
	Stop      float64
	Target    float64
	Rationale string
}

// RiskMultiplier scales per-trade risk with certainty, capped at 2x.
func RiskMultiplier(certainty float64) float64 {
	return math.Min(2.0, 0.5+certainty*1.5)
}

// RewardMultiplier scales the profit target with certainty, capped at 4x.
func RewardMultiplier(certainty float64) float64 {
	return math.Min(4.0, 1.5+certainty*2.0)
}

// ComputeBracket derives stop and target from entry, ATR and certainty. Higher
// certainty tolerates a wider stop and stretches the target proportionally.
func ComputeBracket(entry, atr, certainty float64) (stop, target float64) {
	stop = entry - (1+certainty)*atr
	target = entry + RewardMultiplier(certainty)*(entry-stop)
	return stop, target
}

// PositionSize converts equity risk budget into shares. The per-share risk
// floor keeps the division sane when the stop sits on the entry.
func PositionSize(equity, entry, stop, riskPerTrade float64) int {
	perShareRisk := math.Max(0.01, entry-stop)
	qty := int(equity * riskPerTrade / perShareRisk)
	if qty < 0 {
		return 0
	}
	return qty
}

// EvaluateTrade runs the full gate -> size -> bracket chain for one candidate.
func EvaluateTrade(equity, entry, atr, certainty float64, cfg Config) Decision {
	if certainty < cfg.CMin {
		return Decision{Allowed: false, Qty: 0, Rationale: "certainty below threshold"}
	}
	riskPerTrade := cfg.BaseRisk * RiskMultiplier(certainty)
	stop, target := ComputeBracket(entry, atr, certainty)
	qty := PositionSize(equity, entry, stop, riskPerTrade)
	return Decision{
		Allowed:   qty > 0,
		Qty:       qty,
		Stop:      stop,
		Target:    target,
		Rationale: "risk sizing ok",
	}
}
