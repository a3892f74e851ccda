package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgreementEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Agreement(nil))
	assert.Equal(t, 0.0, Agreement([]Signal{}))
}

func TestAgreementMeanThenClamp(t *testing.T) {
	signals := []Signal{
		{Confidence: 0.2},
		{Confidence: 0.8},
		{Confidence: 1.1}, // upstream is expected to clamp, mean still caps at 1
	}
	assert.InDelta(t, (0.2+0.8+1.1)/3, Agreement(signals), 1e-9)

	all := []Signal{{Confidence: 1.0}, {Confidence: 1.5}}
	assert.Equal(t, 1.0, Agreement(all))
}

func TestEnsembleProducers(t *testing.T) {
	features := Features{
		"trend_alignment":      0.9,
		"gap_pct":              -0.3,
		"volatility_expansion": 1.4,
	}
	signals := Ensemble(features)
	assert.Len(t, signals, 3)

	assert.Equal(t, "momentum_breakout", signals[0].Name)
	assert.InDelta(t, 0.9, signals[0].Confidence, 1e-9)
	assert.Equal(t, Long, signals[0].Direction)

	assert.Equal(t, "mean_reversion", signals[1].Name)
	assert.InDelta(t, 0.7, signals[1].Confidence, 1e-9)

	// Confidence clamps into [0,1] even when the feature overshoots.
	assert.Equal(t, 1.0, signals[2].Confidence)
}

func TestEnsembleMissingFeatures(t *testing.T) {
	signals := Ensemble(nil)
	assert.Equal(t, 0.0, signals[0].Confidence)
	assert.Equal(t, 1.0, signals[1].Confidence) // 1 - |0|
	assert.Equal(t, 0.0, signals[2].Confidence)
}
