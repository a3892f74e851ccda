package risk

// BreakerState reports whether portfolio-level losses demand a trading halt.
// It is derived fresh from live figures on every check and never cached across
// trades.
type BreakerState struct {
	Tripped bool
	Reason  string
}

// CheckCircuitBreaker trips on realized daily loss first, then drawdown. A
// tripped breaker is an absolute veto on new submissions regardless of how the
// individual trade scored.
func CheckCircuitBreaker(dailyLoss, drawdown float64, cfg Config) BreakerState {
	if dailyLoss <= -cfg.DailyMaxLoss {
		return BreakerState{Tripped: true, Reason: "daily loss limit exceeded"}
	}
	if drawdown >= cfg.DrawdownMax {
		return BreakerState{Tripped: true, Reason: "drawdown limit exceeded"}
	}
	return BreakerState{Tripped: false, Reason: "ok"}
}
