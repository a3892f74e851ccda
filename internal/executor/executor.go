// Package executor is the boundary every broker call crosses. It composes the
// circuit breaker veto, the idempotency ledger, the shared rate limiter and
// the retry budget into one normalized submission path; nothing reaches the
// broker around it, account reads included.
package executor

import (
	"context"
	"fmt"

	"marlin/internal/broker"
	"marlin/internal/logger"
	"marlin/internal/metrics"
	"marlin/internal/ratelimit"
	"marlin/internal/retry"
	"marlin/internal/risk"
	storemodel "marlin/internal/store/model"

	"github.com/google/uuid"
)

// Result statuses. Rejected means policy said no before the broker was ever
// contacted; error means the broker path failed after the retry budget.
const (
	StatusSubmitted = "submitted"
	StatusRejected  = "rejected"
	StatusError     = "error"
)

// Result is the terminal, never-mutated outcome of one submission.
type Result struct {
	OrderID string
	Status  string
	Message string
}

// Portfolio carries the externally computed loss figures the breaker reads.
// They are re-fetched per submission, never cached here.
type Portfolio struct {
	DailyLoss float64 `json:"daily_loss"`
	Drawdown  float64 `json:"drawdown"`
}

// BrokerAPI is the slice of the broker client the executor drives.
type BrokerAPI interface {
	SubmitOrder(ctx context.Context, order broker.Order, clientOrderID string) (string, error)
	CloseAllPositions(ctx context.Context) error
	GetAccount(ctx context.Context) (broker.Account, error)
}

// Ledger records submissions by idempotency key for restart-safe dedup.
type Ledger interface {
	Lookup(ctx context.Context, key string) (*storemodel.SubmissionModel, error)
	RecordPending(ctx context.Context, key, symbol, side string, qty int) error
	MarkSubmitted(ctx context.Context, key, brokerOrderID string) error
	MarkFailed(ctx context.Context, key, message string) error
}

type Executor struct {
	riskCfg   risk.Config
	bucket    *ratelimit.Bucket
	broker    BrokerAPI
	ledger    Ledger
	metrics   *metrics.Metrics
	retryOpts retry.Options
}

// New wires the executor. All collaborators are required except the ledger;
// without one, dedup rests on the broker-side client order id alone.
func New(riskCfg risk.Config, bucket *ratelimit.Bucket, b BrokerAPI, ledger Ledger, m *metrics.Metrics, retryOpts retry.Options) *Executor {
	if m == nil {
		m = metrics.New()
	}
	return &Executor{
		riskCfg:   riskCfg,
		bucket:    bucket,
		broker:    b,
		ledger:    ledger,
		metrics:   m,
		retryOpts: retryOpts,
	}
}

// PlaceOrder runs the full gated submission: breaker re-check, idempotency
// key attachment, ledger dedup, rate-limit admission, retried broker call.
// It never panics or leaks an error past the normalized Result.
func (e *Executor) PlaceOrder(ctx context.Context, order broker.Order, pf Portfolio) Result {
	attemptID := uuid.NewString()

	// The breaker is consulted immediately before every submission, no
	// matter how the trade scored upstream.
	if state := risk.CheckCircuitBreaker(pf.DailyLoss, pf.Drawdown, e.riskCfg); state.Tripped {
		e.metrics.BreakerTrips.WithLabelValues(state.Reason).Inc()
		logger.Warnf("executor: breaker veto for %s (%s) attempt=%s", order.Symbol, state.Reason, attemptID)
		return Result{Status: StatusRejected, Message: state.Reason}
	}

	key := broker.BuildIdempotencyKey(order)

	if e.ledger != nil {
		prior, err := e.ledger.Lookup(ctx, key)
		if err != nil {
			logger.Warnf("executor: ledger lookup failed for %s: %v", order.Symbol, err)
		} else if prior != nil && prior.Status == storemodel.SubmissionStatusSubmitted {
			logger.Infof("executor: duplicate submission of %s collapsed to order %s", order.Symbol, prior.BrokerOrderID)
			return Result{OrderID: prior.BrokerOrderID, Status: StatusSubmitted, Message: "duplicate submission collapsed"}
		}
		if err := e.ledger.RecordPending(ctx, key, order.Symbol, order.Side, order.Qty); err != nil {
			logger.Warnf("executor: recording pending submission failed for %s: %v", order.Symbol, err)
		}
	}

	if err := e.admit(ctx); err != nil {
		return e.fail(ctx, key, fmt.Sprintf("rate limit wait aborted: %v", err))
	}

	attempts := 0
	orderID, err := retry.DoValue(ctx, e.retryOpts, func() (string, error) {
		attempts++
		if attempts > 1 {
			e.metrics.RetryAttempts.Inc()
		}
		return e.broker.SubmitOrder(ctx, order, key)
	})
	if err != nil {
		return e.fail(ctx, key, err.Error())
	}

	if e.ledger != nil {
		if err := e.ledger.MarkSubmitted(ctx, key, orderID); err != nil {
			logger.Warnf("executor: recording broker ack failed for %s: %v", order.Symbol, err)
		}
	}
	e.metrics.OrdersSubmitted.WithLabelValues(order.Symbol).Inc()
	logger.Infof("executor: submitted %s qty=%d order=%s attempt=%s", order.Symbol, order.Qty, orderID, attemptID)
	return Result{OrderID: orderID, Status: StatusSubmitted, Message: "ok"}
}

// FlattenAll liquidates every open position through the same rate-limited,
// retried path. The breaker halt action calls this, so a tripped breaker does
// not veto it.
func (e *Executor) FlattenAll(ctx context.Context) Result {
	if err := e.admit(ctx); err != nil {
		return Result{Status: StatusError, Message: fmt.Sprintf("rate limit wait aborted: %v", err)}
	}
	err := retry.Do(ctx, e.retryOpts, func() error {
		return e.broker.CloseAllPositions(ctx)
	})
	if err != nil {
		e.metrics.OrdersErrored.Inc()
		logger.Errorf("executor: flatten all failed: %v", err)
		return Result{Status: StatusError, Message: err.Error()}
	}
	logger.Warnf("executor: flattened all open positions")
	return Result{Status: StatusSubmitted, Message: "flattened"}
}

// FetchAccount reads the live account snapshot through the same rate-limited,
// retried path as every other broker call.
func (e *Executor) FetchAccount(ctx context.Context) (broker.Account, error) {
	if err := e.admit(ctx); err != nil {
		return broker.Account{}, fmt.Errorf("rate limit wait aborted: %w", err)
	}
	return retry.DoValue(ctx, e.retryOpts, func() (broker.Account, error) {
		return e.broker.GetAccount(ctx)
	})
}

func (e *Executor) admit(ctx context.Context) error {
	res := e.bucket.Acquire()
	if res.Allowed {
		return nil
	}
	e.metrics.RateLimitWaits.Inc()
	logger.Debugf("executor: rate limited, advised wait %s", res.Wait)
	return e.bucket.Wait(ctx)
}

func (e *Executor) fail(ctx context.Context, key, message string) Result {
	e.metrics.OrdersErrored.Inc()
	if e.ledger != nil {
		if err := e.ledger.MarkFailed(ctx, key, message); err != nil {
			logger.Warnf("executor: recording failure failed: %v", err)
		}
	}
	return Result{Status: StatusError, Message: message}
}
