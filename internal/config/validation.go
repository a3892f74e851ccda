package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate rejects configurations the process must not start with. This is the
// only abort path in the system; everything past startup degrades instead.
func validate(c *Config) error {
	if err := c.Broker.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Retry.validate(); err != nil {
		return err
	}
	if c.Worker.MaxConcurrency <= 0 {
		return fmt.Errorf("worker.max_concurrency must be > 0")
	}
	return nil
}

func (b *BrokerConfig) validate() error {
	raw := strings.TrimSpace(b.BaseURL)
	if raw == "" {
		return fmt.Errorf("broker.base_url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("broker.base_url is not a valid URL: %s", raw)
	}
	if b.TimeoutSeconds <= 0 {
		return fmt.Errorf("broker.timeout_seconds must be > 0")
	}
	if b.RatePerMinute <= 0 {
		return fmt.Errorf("broker.rate_per_minute must be > 0")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.BaseRisk <= 0 || r.BaseRisk >= 1 {
		return fmt.Errorf("risk.base_risk must be in (0, 1)")
	}
	if r.CMin < 0 || r.CMin > 1 {
		return fmt.Errorf("risk.c_min must be in [0, 1]")
	}
	if r.MaxPositions <= 0 {
		return fmt.Errorf("risk.max_positions must be > 0")
	}
	if r.DailyMaxLoss <= 0 {
		return fmt.Errorf("risk.daily_max_loss must be > 0")
	}
	if r.DrawdownMax <= 0 {
		return fmt.Errorf("risk.drawdown_max must be > 0")
	}
	return nil
}

func (r *RetryConfig) validate() error {
	if r.Retries < 0 {
		return fmt.Errorf("retry.retries must be >= 0")
	}
	if r.BackoffMs <= 0 {
		return fmt.Errorf("retry.backoff_ms must be > 0")
	}
	return nil
}
