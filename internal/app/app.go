// Package app wires the execution core together from configuration and runs
// candidate batches against it.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"marlin/internal/broker"
	"marlin/internal/config"
	"marlin/internal/executor"
	"marlin/internal/logger"
	"marlin/internal/metrics"
	"marlin/internal/pipeline"
	"marlin/internal/ratelimit"
	"marlin/internal/retry"
	"marlin/internal/risk"
	"marlin/internal/store/sqlite"
)

// App owns the process-lifetime singletons: config, rate limiter, broker
// transport, ledger and metrics registry.
type App struct {
	cfg     *config.Config
	store   *sqlite.Store
	runner  *pipeline.Runner
	exec    *executor.Executor
	metrics *metrics.Metrics
}

// Batch is the externally supplied evaluation request: live portfolio loss
// figures plus the candidates the scanning subsystem produced.
type Batch struct {
	Portfolio  executor.Portfolio   `json:"portfolio"`
	Candidates []pipeline.Candidate `json:"candidates"`
}

// NewApp builds the full object graph. Construction errors abort startup;
// nothing else in the process should.
func NewApp(cfg *config.Config) (*App, error) {
	client, err := broker.NewClient(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("building broker client failed: %w", err)
	}
	ledger, err := sqlite.NewStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening submission ledger failed: %w", err)
	}

	riskCfg := risk.Config{
		BaseRisk:            cfg.Risk.BaseRisk,
		CMin:                cfg.Risk.CMin,
		MaxPositions:        cfg.Risk.MaxPositions,
		MaxGrossExposure:    cfg.Risk.MaxGrossExposure,
		SectorConcentration: cfg.Risk.SectorConcentration,
		DailyMaxLoss:        cfg.Risk.DailyMaxLoss,
		DrawdownMax:         cfg.Risk.DrawdownMax,
	}
	m := metrics.New()
	bucket := ratelimit.NewBucket(cfg.Broker.RatePerMinute)
	retryOpts := retry.Options{
		Retries: cfg.Retry.Retries,
		Backoff: time.Duration(cfg.Retry.BackoffMs) * time.Millisecond,
	}
	exec := executor.New(riskCfg, bucket, client, ledger, m, retryOpts)
	runner := pipeline.NewRunner(riskCfg, exec, m, cfg.Worker.MaxConcurrency)

	return &App{
		cfg:     cfg,
		store:   ledger,
		runner:  runner,
		exec:    exec,
		metrics: m,
	}, nil
}

// Metrics exposes the registry for the embedding process to serve.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// RunBatchFile evaluates the batch document at path.
func (a *App) RunBatchFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading batch file failed: %w", err)
	}
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parsing batch file failed: %w", err)
	}
	return a.RunBatch(ctx, batch)
}

// RunBatch fetches live equity and pushes the candidates through the
// pipeline, logging every outcome. The account read goes through the executor
// so it draws from the same rate-limit budget as the submissions it precedes.
func (a *App) RunBatch(ctx context.Context, batch Batch) error {
	account, err := a.exec.FetchAccount(ctx)
	if err != nil {
		return fmt.Errorf("fetching account failed: %w", err)
	}
	logger.Infof("app: evaluating %d candidates (equity=%.2f daily_loss=%.4f drawdown=%.4f)",
		len(batch.Candidates), account.Equity, batch.Portfolio.DailyLoss, batch.Portfolio.Drawdown)

	outcomes, err := a.runner.Run(ctx, account.Equity, batch.Portfolio, batch.Candidates)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		switch {
		case o.Execution == nil:
			logger.Infof("app: %s denied (%s) certainty=%.3f", o.Symbol, o.Decision.Rationale, o.Certainty)
		case o.Execution.Status == executor.StatusSubmitted:
			logger.Infof("app: %s submitted order=%s qty=%d stop=%.2f target=%.2f",
				o.Symbol, o.Execution.OrderID, o.Decision.Qty, o.Decision.Stop, o.Decision.Target)
		default:
			logger.Errorf("app: %s failed: %s", o.Symbol, o.Execution.Message)
		}
	}
	return nil
}

// Close releases the ledger.
func (a *App) Close() error {
	return a.store.Close()
}
