// Package provider retrieves the inputs the analysis engine needs: company
// profiles, yearly financials, analyst estimates, benchmark returns, and
// peer ratio snapshots. Providers are composable; the Chain tries them in
// order and the collector degrades missing data to zero values instead of
// failing the run.
package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/equity-cli/internal/model"
)

// Snapshot bundles every input for a single company analysis.
type Snapshot struct {
	Profile    model.CompanyProfile     `json:"profile" yaml:"profile"`
	Financials []model.YearlyFinancials `json:"financials" yaml:"financials"`
	Estimates  model.Estimates          `json:"estimates" yaml:"estimates"`
	Benchmark  model.BenchmarkSeries    `json:"benchmark" yaml:"benchmark"`
	Peers      []model.PeerRecord       `json:"peers" yaml:"peers"`
}

// Provider is a single data backend.
type Provider interface {
	Name() string
	Available() bool
	Profile(ctx context.Context, ticker string) (model.CompanyProfile, error)
	Financials(ctx context.Context, ticker string) ([]model.YearlyFinancials, error)
	Estimates(ctx context.Context, ticker string) (model.Estimates, error)
	Benchmark(ctx context.Context) (model.BenchmarkSeries, error)
	Peers(ctx context.Context, ticker string) ([]model.PeerRecord, error)
}

// Collect gathers a full snapshot from the provider. Individual failures
// degrade to zero-valued data rather than aborting: a missing benchmark
// falls back to the long-run defaults, missing peers or estimates leave
// those sections empty, and a failed profile lookup yields a minimal
// ticker-only profile. Empty financials are surfaced by the analysis
// layer, not here.
func Collect(ctx context.Context, p Provider, ticker string) *Snapshot {
	snap := &Snapshot{}

	profile, err := p.Profile(ctx, ticker)
	if err != nil {
		zap.L().Warn("provider: profile lookup failed",
			zap.String("provider", p.Name()),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		profile = model.CompanyProfile{Name: ticker, Ticker: ticker, Sector: "Unknown", Industry: "Unknown"}
	}
	snap.Profile = profile

	financials, err := p.Financials(ctx, ticker)
	if err != nil {
		zap.L().Warn("provider: financials lookup failed",
			zap.String("provider", p.Name()),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	}
	snap.Financials = financials

	estimates, err := p.Estimates(ctx, ticker)
	if err != nil {
		zap.L().Warn("provider: estimates lookup failed",
			zap.String("provider", p.Name()),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	}
	snap.Estimates = estimates.Normalize()

	benchmark, err := p.Benchmark(ctx)
	if err != nil {
		zap.L().Warn("provider: benchmark lookup failed",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
	}
	snap.Benchmark = benchmark.Normalize()

	peers, err := p.Peers(ctx, ticker)
	if err != nil {
		zap.L().Warn("provider: peer lookup failed",
			zap.String("provider", p.Name()),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	}
	snap.Peers = peers

	return snap
}
