// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Provider  ProviderConfig  `yaml:"provider" mapstructure:"provider"`
	Benchmark BenchmarkConfig `yaml:"benchmark" mapstructure:"benchmark"`
	DCF       DCFConfig       `yaml:"dcf" mapstructure:"dcf"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProviderConfig configures the fundamentals data provider chain.
type ProviderConfig struct {
	FMPBaseURL   string  `yaml:"fmp_base_url" mapstructure:"fmp_base_url"`
	FMPKey       string  `yaml:"fmp_api_key" mapstructure:"fmp_api_key"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxPeers     int     `yaml:"max_peers" mapstructure:"max_peers"`
	HistoryYears int     `yaml:"history_years" mapstructure:"history_years"`
	BenchmarkURL string  `yaml:"benchmark_url" mapstructure:"benchmark_url"` // optional file/http/ftp CSV source
}

// BenchmarkConfig holds the CAPM fallbacks used when the provider returns
// no benchmark scalars.
type BenchmarkConfig struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate" mapstructure:"risk_free_rate"`
	MarketRiskPremium float64 `yaml:"market_risk_premium" mapstructure:"market_risk_premium"`
}

// DCFConfig holds the fixed valuation assumptions. These are configuration
// constants, not tuning knobs: the defaults pin the model's documented
// behavior.
type DCFConfig struct {
	Beta               float64 `yaml:"beta" mapstructure:"beta"`
	PreTaxCostOfDebt   float64 `yaml:"pre_tax_cost_of_debt" mapstructure:"pre_tax_cost_of_debt"`
	TaxRate            float64 `yaml:"tax_rate" mapstructure:"tax_rate"`
	TerminalGrowth     float64 `yaml:"terminal_growth" mapstructure:"terminal_growth"`
	ProjectionYears    int     `yaml:"projection_years" mapstructure:"projection_years"`
	FallbackTVMultiple float64 `yaml:"fallback_tv_multiple" mapstructure:"fallback_tv_multiple"`
}

// ScoringConfig holds the underperformance scorer thresholds.
type ScoringConfig struct {
	SevereAlpha      float64 `yaml:"severe_alpha" mapstructure:"severe_alpha"`             // -0.05
	PeerDeviationPct float64 `yaml:"peer_deviation_pct" mapstructure:"peer_deviation_pct"` // 15
	DCFUpside        float64 `yaml:"dcf_upside" mapstructure:"dcf_upside"`                 // 0.15
	PriceToTargetBuy float64 `yaml:"price_to_target_buy" mapstructure:"price_to_target_buy"`
}

// BatchConfig configures concurrent batch analysis.
type BatchConfig struct {
	MaxConcurrentTickers int `yaml:"max_concurrent_tickers" mapstructure:"max_concurrent_tickers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EQUITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_tickers", 5)
	v.SetDefault("provider.fmp_base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("provider.fmp_api_key", "demo")
	v.SetDefault("provider.user_agent", "equity-cli/1.0")
	v.SetDefault("provider.timeout_secs", 30)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.rate_per_sec", 5)
	v.SetDefault("provider.max_peers", 5)
	v.SetDefault("provider.history_years", 3)
	v.SetDefault("benchmark.risk_free_rate", 0.035)
	v.SetDefault("benchmark.market_risk_premium", 0.055)
	v.SetDefault("dcf.beta", 1.2)
	v.SetDefault("dcf.pre_tax_cost_of_debt", 0.05)
	v.SetDefault("dcf.tax_rate", 0.25)
	v.SetDefault("dcf.terminal_growth", 0.03)
	v.SetDefault("dcf.projection_years", 5)
	v.SetDefault("dcf.fallback_tv_multiple", 20)
	v.SetDefault("scoring.severe_alpha", -0.05)
	v.SetDefault("scoring.peer_deviation_pct", 15)
	v.SetDefault("scoring.dcf_upside", 0.15)
	v.SetDefault("scoring.price_to_target_buy", 0.8)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
