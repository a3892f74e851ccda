package config

// Config is the process-wide configuration. It is loaded once at startup and
// never mutated afterwards; every component receives the slice of it it needs.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Broker BrokerConfig `mapstructure:"broker"`
	Risk   RiskConfig   `mapstructure:"risk"`
	Retry  RetryConfig  `mapstructure:"retry"`
	Store  StoreConfig  `mapstructure:"store"`
	Worker WorkerConfig `mapstructure:"worker"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

// BrokerConfig describes the outbound broker endpoint.
type BrokerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	APISecret      string `mapstructure:"api_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// RatePerMinute caps all outbound broker calls, shared across every
	// concurrent submission.
	RatePerMinute int `mapstructure:"rate_per_minute"`
}

// RiskConfig carries the portfolio risk limits. Immutable for the process
// lifetime.
type RiskConfig struct {
	BaseRisk            float64 `mapstructure:"base_risk"`
	CMin                float64 `mapstructure:"c_min"`
	MaxPositions        int     `mapstructure:"max_positions"`
	MaxGrossExposure    float64 `mapstructure:"max_gross_exposure"`
	SectorConcentration float64 `mapstructure:"sector_concentration"`
	DailyMaxLoss        float64 `mapstructure:"daily_max_loss"`
	DrawdownMax         float64 `mapstructure:"drawdown_max"`
}

type RetryConfig struct {
	Retries   int `mapstructure:"retries"`
	BackoffMs int `mapstructure:"backoff_ms"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type WorkerConfig struct {
	// MaxConcurrency bounds how many candidates are evaluated in parallel.
	MaxConcurrency int `mapstructure:"max_concurrency"`
}
