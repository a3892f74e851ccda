package config

import "github.com/spf13/viper"

const (
	defaultAppEnv        = "paper"
	defaultAppLogLevel   = "info"
	defaultBrokerBaseURL = "https://paper-api.alpaca.markets"
	defaultBrokerTimeout = 10
	defaultBrokerRPM     = 200
	defaultBaseRisk      = 0.0025
	defaultCMin          = 0.55
	defaultMaxPositions  = 10
	defaultMaxGross      = 1.5
	defaultSectorConc    = 0.25
	defaultDailyMaxLoss  = 0.03
	defaultDrawdownMax   = 0.1
	defaultRetries       = 3
	defaultBackoffMs     = 500
	defaultStorePath     = "data/marlin.db"
	defaultConcurrency   = 4
)

// applyDefaults registers every recognized key with viper. Registering the full
// key set is also what lets MARLIN_* environment overrides reach Unmarshal.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.env", defaultAppEnv)
	v.SetDefault("app.log_level", defaultAppLogLevel)
	v.SetDefault("app.log_path", "")
	v.SetDefault("broker.base_url", defaultBrokerBaseURL)
	v.SetDefault("broker.api_key", "")
	v.SetDefault("broker.api_secret", "")
	v.SetDefault("broker.timeout_seconds", defaultBrokerTimeout)
	v.SetDefault("broker.rate_per_minute", defaultBrokerRPM)
	v.SetDefault("risk.base_risk", defaultBaseRisk)
	v.SetDefault("risk.c_min", defaultCMin)
	v.SetDefault("risk.max_positions", defaultMaxPositions)
	v.SetDefault("risk.max_gross_exposure", defaultMaxGross)
	v.SetDefault("risk.sector_concentration", defaultSectorConc)
	v.SetDefault("risk.daily_max_loss", defaultDailyMaxLoss)
	v.SetDefault("risk.drawdown_max", defaultDrawdownMax)
	v.SetDefault("retry.retries", defaultRetries)
	v.SetDefault("retry.backoff_ms", defaultBackoffMs)
	v.SetDefault("store.path", defaultStorePath)
	v.SetDefault("worker.max_concurrency", defaultConcurrency)
}
