package provider

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-cli/internal/model"
)

// stubProvider returns canned data, or errors on everything when failing
// is set.
type stubProvider struct {
	name      string
	available bool
	failing   bool
	snap      Snapshot
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }

func (s *stubProvider) Profile(context.Context, string) (model.CompanyProfile, error) {
	if s.failing {
		return model.CompanyProfile{}, eris.New("stub: down")
	}
	return s.snap.Profile, nil
}

func (s *stubProvider) Financials(context.Context, string) ([]model.YearlyFinancials, error) {
	if s.failing {
		return nil, eris.New("stub: down")
	}
	return s.snap.Financials, nil
}

func (s *stubProvider) Estimates(context.Context, string) (model.Estimates, error) {
	if s.failing {
		return model.Estimates{}, eris.New("stub: down")
	}
	return s.snap.Estimates, nil
}

func (s *stubProvider) Benchmark(context.Context) (model.BenchmarkSeries, error) {
	if s.failing {
		return model.BenchmarkSeries{}, eris.New("stub: down")
	}
	return s.snap.Benchmark, nil
}

func (s *stubProvider) Peers(context.Context, string) ([]model.PeerRecord, error) {
	if s.failing {
		return nil, eris.New("stub: down")
	}
	return s.snap.Peers, nil
}

func healthyStub(name string) *stubProvider {
	return &stubProvider{
		name:      name,
		available: true,
		snap: Snapshot{
			Profile:    model.CompanyProfile{Name: "Acme Corp", Ticker: "ACME"},
			Financials: []model.YearlyFinancials{{Year: 2023, Revenue: 1000}},
			Estimates:  model.Estimates{TargetPrice: 60},
			Benchmark: model.BenchmarkSeries{
				MarketIndex: []model.BenchmarkYear{{Year: 2023, Return: 0.1}},
			},
			Peers: []model.PeerRecord{{Ticker: "PEER1"}},
		},
	}
}

func TestChainFallsThroughToHealthyProvider(t *testing.T) {
	chain := NewChain(
		&stubProvider{name: "down", available: true, failing: true},
		&stubProvider{name: "off", available: false},
		healthyStub("good"),
	)

	profile, err := chain.Profile(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.Name)

	financials, err := chain.Financials(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, financials, 1)

	benchmark, err := chain.Benchmark(context.Background())
	require.NoError(t, err)
	assert.Len(t, benchmark.MarketIndex, 1)
}

func TestChainAllProvidersFail(t *testing.T) {
	chain := NewChain(&stubProvider{name: "down", available: true, failing: true})

	_, err := chain.Profile(context.Background(), "ACME")
	require.Error(t, err)
}

func TestChainNoAvailableProviders(t *testing.T) {
	chain := NewChain(&stubProvider{name: "off", available: false})

	assert.False(t, chain.Available())
	_, err := chain.Peers(context.Background(), "ACME")
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestChainSkipsEmptyResults(t *testing.T) {
	empty := healthyStub("empty")
	empty.snap.Financials = nil
	empty.snap.Peers = nil

	chain := NewChain(empty, healthyStub("full"))

	financials, err := chain.Financials(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Len(t, financials, 1)

	peers, err := chain.Peers(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Len(t, peers, 1)
}

func TestCollectDegradesFailures(t *testing.T) {
	snap := Collect(context.Background(), &stubProvider{name: "down", available: true, failing: true}, "ACME")

	assert.Equal(t, "ACME", snap.Profile.Ticker)
	assert.Equal(t, "Unknown", snap.Profile.Sector)
	assert.Empty(t, snap.Financials)
	assert.Empty(t, snap.Peers)
	// CAPM scalars fall back to the long-run defaults.
	assert.InDelta(t, model.DefaultRiskFreeRate, snap.Benchmark.RiskFreeRate, 1e-9)
	assert.InDelta(t, model.DefaultMarketRiskPremium, snap.Benchmark.MarketRiskPremium, 1e-9)
	assert.InDelta(t, model.DefaultGrowthRate, snap.Estimates.LongTermGrowthRate, 1e-9)
}

func TestCollectPassesThroughData(t *testing.T) {
	snap := Collect(context.Background(), healthyStub("good"), "ACME")

	assert.Equal(t, "Acme Corp", snap.Profile.Name)
	require.Len(t, snap.Financials, 1)
	assert.InDelta(t, 60.0, snap.Estimates.TargetPrice, 1e-9)
	require.Len(t, snap.Peers, 1)
}
