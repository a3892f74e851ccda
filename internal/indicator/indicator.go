// Package indicator derives the volatility inputs the risk engine needs when
// the upstream feed does not supply them precomputed.
package indicator

import (
	talib "github.com/markcheno/go-talib"
)

// Candle is one bar of price history, oldest first in slices.
type Candle struct {
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

const DefaultATRPeriod = 14

// ATR returns the latest average true range over period bars, or 0 when the
// history is too short to compute one.
func ATR(candles []Candle, period int) float64 {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	if len(candles) <= period {
		return 0
	}
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}
	out := talib.Atr(highs, lows, closes, period)
	if len(out) == 0 {
		return 0
	}
	return out[len(out)-1]
}
