package main

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/equity-cli/internal/analysis"
	"github.com/sells-group/equity-cli/internal/config"
	"github.com/sells-group/equity-cli/internal/fetcher"
	"github.com/sells-group/equity-cli/internal/model"
	"github.com/sells-group/equity-cli/internal/provider"
	"github.com/sells-group/equity-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "equity.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newProvider builds the provider chain: an optional local snapshot file
// first, then the Financial Modeling Prep API.
func newProvider(snapshotPath string) provider.Provider {
	limiters := fetcher.DefaultRateLimiters()
	if cfg.Provider.RatePerSec > 0 {
		for host := range limiters {
			limiters[host] = rate.NewLimiter(rate.Limit(cfg.Provider.RatePerSec), int(math.Ceil(cfg.Provider.RatePerSec)))
		}
	}

	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Provider.UserAgent,
		Timeout:      time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.Provider.MaxRetries,
		RateLimiters: limiters,
	})

	var providers []provider.Provider
	if snapshotPath != "" {
		providers = append(providers, provider.NewFileProvider(snapshotPath))
	}
	providers = append(providers, provider.NewFMPClient(provider.FMPOptions{
		BaseURL:      cfg.Provider.FMPBaseURL,
		APIKey:       cfg.Provider.FMPKey,
		MaxPeers:     cfg.Provider.MaxPeers,
		HistoryYears: cfg.Provider.HistoryYears,
		HTTP:         httpFetcher,
	}))

	return provider.NewChain(providers...)
}

func analyzerFromConfig(c *config.Config) *analysis.Analyzer {
	assumptions := analysis.Assumptions{
		Beta:               c.DCF.Beta,
		PreTaxCostOfDebt:   c.DCF.PreTaxCostOfDebt,
		TaxRate:            c.DCF.TaxRate,
		TerminalGrowth:     c.DCF.TerminalGrowth,
		ProjectionYears:    c.DCF.ProjectionYears,
		FallbackTVMultiple: c.DCF.FallbackTVMultiple,
	}
	thresholds := analysis.Thresholds{
		SevereAlpha:      c.Scoring.SevereAlpha,
		PeerDeviationPct: c.Scoring.PeerDeviationPct,
		DCFUpside:        c.Scoring.DCFUpside,
		PriceToTargetBuy: c.Scoring.PriceToTargetBuy,
	}
	return analysis.New(assumptions, thresholds)
}

// applyBenchmarkConfig layers configured benchmark data over what the
// provider returned: an external CSV series replaces the index returns, and
// operator-set CAPM scalars win over provider values.
func applyBenchmarkConfig(ctx context.Context, b *model.BenchmarkSeries) {
	if cfg.Provider.BenchmarkURL != "" {
		series, err := provider.LoadBenchmarkCSV(ctx, cfg.Provider.BenchmarkURL)
		if err != nil {
			zap.L().Warn("load benchmark series",
				zap.String("source", cfg.Provider.BenchmarkURL),
				zap.Error(err),
			)
		} else {
			series.RiskFreeRate = b.RiskFreeRate
			series.MarketRiskPremium = b.MarketRiskPremium
			*b = series
		}
	}
	if cfg.Benchmark.RiskFreeRate != 0 && cfg.Benchmark.RiskFreeRate != model.DefaultRiskFreeRate {
		b.RiskFreeRate = cfg.Benchmark.RiskFreeRate
	}
	if cfg.Benchmark.MarketRiskPremium != 0 && cfg.Benchmark.MarketRiskPremium != model.DefaultMarketRiskPremium {
		b.MarketRiskPremium = cfg.Benchmark.MarketRiskPremium
	}
}

// runAnalysis executes the full collect, analyze, persist cycle for one
// ticker. Analysis failures are recorded on the run before being returned.
func runAnalysis(ctx context.Context, st store.Store, prov provider.Provider, ticker string) (*model.Run, *provider.Snapshot, error) {
	snap := provider.Collect(ctx, prov, ticker)
	applyBenchmarkConfig(ctx, &snap.Benchmark)

	run, err := st.CreateRun(ctx, snap.Profile)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create run")
	}

	engine := analyzerFromConfig(cfg)
	result, err := engine.Run(ctx, analysis.Input{
		Financials: snap.Financials,
		Estimates:  snap.Estimates,
		Benchmark:  snap.Benchmark,
		Peers:      snap.Peers,
	})
	if err != nil {
		if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			zap.L().Warn("record failed run", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		return run, snap, err
	}

	rec := analysis.RecommendationForScore(result.Underperformance.Score)
	if err := st.CompleteRun(ctx, run.ID, result, rec); err != nil {
		return run, snap, eris.Wrap(err, "complete run")
	}

	run.Status = model.RunStatusComplete
	run.Result = result
	run.Recommendation = rec
	return run, snap, nil
}

// currentPrice is the latest stock price in a most-recent-first financials
// sequence, 0 when no data exists.
func currentPrice(financials []model.YearlyFinancials) float64 {
	if len(financials) == 0 {
		return 0
	}
	return financials[0].StockPrice
}
