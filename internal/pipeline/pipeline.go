// Package pipeline runs the per-candidate evaluation chain: ensemble signals,
// certainty score, risk gate, then the execution path for whatever survives.
// Candidates are independent, so they are scored concurrently; the shared rate
// limiter downstream is what serializes broker access.
package pipeline

import (
	"context"

	"marlin/internal/broker"
	"marlin/internal/certainty"
	"marlin/internal/executor"
	"marlin/internal/indicator"
	"marlin/internal/logger"
	"marlin/internal/metrics"
	"marlin/internal/risk"
	"marlin/internal/signal"

	"golang.org/x/sync/errgroup"
)

// Candidate is one ticker handed in by the scanning subsystem, with the
// externally computed model inputs attached.
type Candidate struct {
	Symbol   string           `json:"symbol"`
	Features signal.Features  `json:"features"`
	Inputs   certainty.Inputs `json:"inputs"`
	Entry    float64          `json:"entry"`
	// ATR may be zero; the runner then derives it from Candles.
	ATR     float64            `json:"atr"`
	Candles []indicator.Candle `json:"candles,omitempty"`
}

// Outcome is the evaluated (and possibly executed) fate of one candidate.
type Outcome struct {
	Symbol    string
	Certainty float64
	Decision  risk.Decision
	// Execution is nil when the risk gate denied the trade.
	Execution *executor.Result
}

// ExecutionPath is the slice of the executor the runner drives.
type ExecutionPath interface {
	PlaceOrder(ctx context.Context, order broker.Order, pf executor.Portfolio) executor.Result
	FlattenAll(ctx context.Context) executor.Result
}

// Runner evaluates candidate batches against one shared risk config and
// execution path.
type Runner struct {
	riskCfg        risk.Config
	exec           ExecutionPath
	metrics        *metrics.Metrics
	maxConcurrency int
}

// NewRunner builds a Runner. maxConcurrency bounds parallel evaluations.
func NewRunner(riskCfg risk.Config, exec ExecutionPath, m *metrics.Metrics, maxConcurrency int) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if m == nil {
		m = metrics.New()
	}
	return &Runner{riskCfg: riskCfg, exec: exec, metrics: m, maxConcurrency: maxConcurrency}
}

// Run evaluates every candidate. A tripped breaker halts the whole batch and
// flattens open positions instead of evaluating anything.
func (r *Runner) Run(ctx context.Context, equity float64, pf executor.Portfolio, candidates []Candidate) ([]Outcome, error) {
	if state := risk.CheckCircuitBreaker(pf.DailyLoss, pf.Drawdown, r.riskCfg); state.Tripped {
		r.metrics.BreakerTrips.WithLabelValues(state.Reason).Inc()
		logger.Warnf("pipeline: trading halted (%s), flattening positions", state.Reason)
		res := r.exec.FlattenAll(ctx)
		if res.Status == executor.StatusError {
			logger.Errorf("pipeline: flatten during halt failed: %s", res.Message)
		}
		return nil, nil
	}

	outcomes := make([]Outcome, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.maxConcurrency)
	for i, cand := range candidates {
		group.Go(func() error {
			outcomes[i] = r.evaluate(groupCtx, equity, pf, cand)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *Runner) evaluate(ctx context.Context, equity float64, pf executor.Portfolio, cand Candidate) Outcome {
	signals := signal.Ensemble(cand.Features)
	score := certainty.Score(signals, cand.Inputs)
	r.metrics.CertaintyScore.Observe(score)

	atr := cand.ATR
	if atr <= 0 {
		atr = indicator.ATR(cand.Candles, indicator.DefaultATRPeriod)
	}

	decision := risk.EvaluateTrade(equity, cand.Entry, atr, score, r.riskCfg)
	out := Outcome{Symbol: cand.Symbol, Certainty: score, Decision: decision}
	if !decision.Allowed {
		r.metrics.OrdersRejected.WithLabelValues(decision.Rationale).Inc()
		logger.Debugf("pipeline: %s denied (%s) certainty=%.3f", cand.Symbol, decision.Rationale, score)
		return out
	}

	order := broker.BuildBracketOrder(cand.Symbol, decision.Qty, cand.Entry, decision.Stop, decision.Target)
	res := r.exec.PlaceOrder(ctx, order, pf)
	out.Execution = &res
	return out
}
