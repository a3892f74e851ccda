package signal

// Long is the only direction the strategy set votes; the bracket math
// downstream is long-only.
const Long int = 1

// Signal is one strategy's vote for a ticker. Immutable once produced.
type Signal struct {
	Name       string  `json:"name"`
	Direction  int     `json:"direction"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Features is the raw per-ticker feature mapping supplied by the scanning
// subsystem (volume_surge, gap_pct, volatility_expansion, trend_alignment...).
type Features map[string]float64

func (f Features) get(key string) float64 {
	if f == nil {
		return 0
	}
	return f[key]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
