package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentTickers)
	assert.Equal(t, "https://financialmodelingprep.com/api/v3", cfg.Provider.FMPBaseURL)
	assert.Equal(t, "demo", cfg.Provider.FMPKey)
	assert.Equal(t, 30, cfg.Provider.TimeoutSecs)
	assert.Equal(t, 3, cfg.Provider.MaxRetries)
	assert.Equal(t, 5, cfg.Provider.MaxPeers)
	assert.Equal(t, 3, cfg.Provider.HistoryYears)
	assert.InDelta(t, 0.035, cfg.Benchmark.RiskFreeRate, 0.0001)
	assert.InDelta(t, 0.055, cfg.Benchmark.MarketRiskPremium, 0.0001)
	assert.InDelta(t, 1.2, cfg.DCF.Beta, 0.001)
	assert.InDelta(t, 0.05, cfg.DCF.PreTaxCostOfDebt, 0.0001)
	assert.InDelta(t, 0.25, cfg.DCF.TaxRate, 0.0001)
	assert.InDelta(t, 0.03, cfg.DCF.TerminalGrowth, 0.0001)
	assert.Equal(t, 5, cfg.DCF.ProjectionYears)
	assert.InDelta(t, 20, cfg.DCF.FallbackTVMultiple, 0.001)
	assert.InDelta(t, -0.05, cfg.Scoring.SevereAlpha, 0.0001)
	assert.InDelta(t, 15, cfg.Scoring.PeerDeviationPct, 0.001)
	assert.InDelta(t, 0.15, cfg.Scoring.DCFUpside, 0.0001)
	assert.InDelta(t, 0.8, cfg.Scoring.PriceToTargetBuy, 0.0001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/equity
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent_tickers: 10
scoring:
  severe_alpha: -0.08
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/equity", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrentTickers)
	assert.InDelta(t, -0.08, cfg.Scoring.SevereAlpha, 0.0001)
	// Untouched knobs keep their defaults.
	assert.InDelta(t, 1.2, cfg.DCF.Beta, 0.001)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("EQUITY_STORE_DRIVER", "postgres")
	t.Setenv("EQUITY_PROVIDER_FMP_API_KEY", "live-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "live-key", cfg.Provider.FMPKey)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
}
