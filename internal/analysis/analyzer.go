package analysis

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/equity-cli/internal/model"
)

// Input is the immutable snapshot an analysis runs on. Providers assemble
// it; the engine never mutates it.
type Input struct {
	Financials []model.YearlyFinancials
	Estimates  model.Estimates
	Benchmark  model.BenchmarkSeries
	Peers      []model.PeerRecord
}

// Analyzer composes the engine components into the single analysis entry
// point. Analyzers are stateless and safe for concurrent use; each Run
// works only on its own inputs and returns a fresh result.
type Analyzer struct {
	assumptions Assumptions
	thresholds  Thresholds
}

// New creates an Analyzer with the given model constants.
func New(assumptions Assumptions, thresholds Thresholds) *Analyzer {
	return &Analyzer{assumptions: assumptions, thresholds: thresholds}
}

// NewDefault creates an Analyzer with the standard constants.
func NewDefault() *Analyzer {
	return New(DefaultAssumptions(), DefaultThresholds())
}

// Run executes the full analysis: ratio derivation first (the scorer and
// peer comparison need it), then returns/alpha, peer benchmarking, and DCF
// concurrently, then the underperformance scorer over all four outputs.
func (a *Analyzer) Run(ctx context.Context, in Input) (*model.AnalysisResult, error) {
	metrics, err := FinancialMetrics(in.Financials, in.Estimates)
	if err != nil {
		return nil, err
	}

	var (
		returns        []model.StockReturn
		alpha          []model.AlphaYear
		peerComparison map[string]model.MetricComparison
		dcf            model.DCFValuation
	)

	// The three remaining upstream computations share only the immutable
	// input snapshot and the finished metrics map.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		returns = StockReturns(in.Financials)
		alpha = Alpha(returns, in.Benchmark)
		return nil
	})
	g.Go(func() error {
		peerComparison = CompareToPeers(metrics, in.Peers)
		return nil
	})
	g.Go(func() error {
		dcf = DiscountedCashFlow(in.Financials[0], in.Benchmark, in.Estimates, a.assumptions)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assessment := AssessUnderperformance(alpha, peerComparison, dcf, metrics, a.thresholds)

	zap.L().Debug("analysis complete",
		zap.Int("years", len(in.Financials)),
		zap.Int("peers", len(in.Peers)),
		zap.Int("score", assessment.Score),
		zap.String("assessment", assessment.Assessment),
	)

	return &model.AnalysisResult{
		CompanyMetrics:   metrics,
		StockReturns:     returns,
		AlphaAnalysis:    alpha,
		PeerComparison:   peerComparison,
		DCFValuation:     dcf,
		Underperformance: assessment,
	}, nil
}
