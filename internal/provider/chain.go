package provider

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/equity-cli/internal/model"
)

// ErrNoProvider is returned when every provider in a chain is unavailable
// or fails.
var ErrNoProvider = eris.New("provider: no provider could serve the request")

// Chain tries providers in order and returns the first success. A provider
// that is unavailable or errors is skipped, not fatal.
type Chain struct {
	providers []Provider
}

// NewChain creates a Chain over the given providers, in priority order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Name implements Provider.
func (c *Chain) Name() string { return "chain" }

// Available implements Provider. A chain is available when any member is.
func (c *Chain) Available() bool {
	for _, p := range c.providers {
		if p.Available() {
			return true
		}
	}
	return false
}

// each runs fn against every available provider in order and stops at the
// first success.
func (c *Chain) each(op string, fn func(p Provider) error) error {
	var lastErr error
	for _, p := range c.providers {
		if !p.Available() {
			continue
		}
		err := fn(p)
		if err == nil {
			return nil
		}
		zap.L().Debug("chain: provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.String("op", op),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr != nil {
		return lastErr
	}
	return ErrNoProvider
}

// Profile implements Provider.
func (c *Chain) Profile(ctx context.Context, ticker string) (model.CompanyProfile, error) {
	var out model.CompanyProfile
	err := c.each("profile", func(p Provider) error {
		var pErr error
		out, pErr = p.Profile(ctx, ticker)
		return pErr
	})
	return out, err
}

// Financials implements Provider.
func (c *Chain) Financials(ctx context.Context, ticker string) ([]model.YearlyFinancials, error) {
	var out []model.YearlyFinancials
	err := c.each("financials", func(p Provider) error {
		var pErr error
		out, pErr = p.Financials(ctx, ticker)
		if pErr == nil && len(out) == 0 {
			return eris.Errorf("no financials for %s", ticker)
		}
		return pErr
	})
	return out, err
}

// Estimates implements Provider.
func (c *Chain) Estimates(ctx context.Context, ticker string) (model.Estimates, error) {
	var out model.Estimates
	err := c.each("estimates", func(p Provider) error {
		var pErr error
		out, pErr = p.Estimates(ctx, ticker)
		return pErr
	})
	return out, err
}

// Benchmark implements Provider.
func (c *Chain) Benchmark(ctx context.Context) (model.BenchmarkSeries, error) {
	var out model.BenchmarkSeries
	err := c.each("benchmark", func(p Provider) error {
		var pErr error
		out, pErr = p.Benchmark(ctx)
		if pErr == nil && len(out.MarketIndex) == 0 {
			return eris.New("empty benchmark series")
		}
		return pErr
	})
	return out, err
}

// Peers implements Provider.
func (c *Chain) Peers(ctx context.Context, ticker string) ([]model.PeerRecord, error) {
	var out []model.PeerRecord
	err := c.each("peers", func(p Provider) error {
		var pErr error
		out, pErr = p.Peers(ctx, ticker)
		if pErr == nil && len(out) == 0 {
			return eris.Errorf("no peers for %s", ticker)
		}
		return pErr
	})
	return out, err
}
