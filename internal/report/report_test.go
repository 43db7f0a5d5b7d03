package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-cli/internal/model"
)

func sampleData() Data {
	return Data{
		Profile: model.CompanyProfile{
			Name:     "Acme Corp",
			Ticker:   "ACME",
			Sector:   "Industrials",
			Industry: "Machinery",
		},
		CurrentPrice: 50,
		Peers: []model.PeerRecord{
			{Name: "Peer One", Ticker: "PEER1"},
		},
		Result: &model.AnalysisResult{
			CompanyMetrics: model.CompanyMetrics{
				"pe_ratio":         20.0,
				"forward_pe":       16.67,
				"peg_ratio":        2.0,
				"return_on_equity": 0.1875,
				"net_margin":       0.15,
				"revenue_growth":   0.2,
				"debt_to_equity":   0.5,
				"dividend_yield":   0.01,
			},
			StockReturns: []model.StockReturn{
				{Year: 2023, TotalReturn: 0.1211},
			},
			AlphaAnalysis: []model.AlphaYear{
				{Year: 2023, Alpha: -0.0289},
			},
			PeerComparison: map[string]model.MetricComparison{
				"peRatio":        {CompanyValue: 20, PeerMedian: 18, PercentDifference: 11.11},
				"returnOnEquity": {CompanyValue: 0.1875, PeerMedian: 0.15, PercentDifference: 25},
			},
			DCFValuation: model.DCFValuation{
				WACC:               0.101,
				ProjectedCashFlows: []float64{110e6, 119.9e6},
				TerminalValue:      2.1e9,
				EnterpriseValue:    2.5e9,
				EquityValue:        2.2e9,
				ImpliedSharePrice:  44,
				Upside:             -0.12,
			},
			Underperformance: model.Assessment{
				Assessment: "Slightly underperforming",
				Score:      1,
				Factors:    []string{"Mild underperformance vs market (alpha: -2.89%)"},
			},
		},
	}
}

func TestTextReportSections(t *testing.T) {
	out := Text(sampleData())

	for _, section := range []string{
		"INVESTMENT ANALYSIS REPORT: Acme Corp (ACME)",
		"EXECUTIVE SUMMARY",
		"COMPANY OVERVIEW",
		"FINANCIAL METRICS",
		"STOCK RETURNS",
		"MARKET-ADJUSTED PERFORMANCE (ALPHA)",
		"DISCOUNTED CASH FLOW VALUATION",
		"PEER COMPARISON",
		"INVESTMENT CONCLUSION",
		"DISCLAIMER",
	} {
		assert.Contains(t, out, section)
	}
}

func TestTextReportContent(t *testing.T) {
	out := Text(sampleData())

	assert.Contains(t, out, "Recommendation: HOLD/WATCH")
	assert.Contains(t, out, "Performance Assessment: Slightly underperforming")
	assert.Contains(t, out, "Underperformance Score: 1")
	assert.Contains(t, out, "The stock is slightly underperforming but not significantly concerning.")
	assert.Contains(t, out, "- Mild underperformance vs market (alpha: -2.89%)")
	assert.Contains(t, out, "P/E Ratio: 20.00")
	assert.Contains(t, out, "Return on Equity: 18.75%")
	assert.Contains(t, out, "Year 2023: 12.11% total return")
	assert.Contains(t, out, "Year 2023: -2.89% excess return vs market")
	assert.Contains(t, out, "WACC: 10.10%")
	assert.Contains(t, out, "Year 1: $110.00M")
	assert.Contains(t, out, "Terminal Value: $2.10B")
	assert.Contains(t, out, "Implied Share Price: $44.00")
	assert.Contains(t, out, "Current Price: $50.00")
	assert.Contains(t, out, "Upside/Downside: -12.00%")
	assert.Contains(t, out, "- Peer One (PEER1)")
	assert.Contains(t, out, "peRatio: 20.00 (Peer median: 18.00, Diff: 11.11%)")
	assert.Contains(t, out, "returnOnEquity: 0.19 (Peer median: 0.15, Diff: 25.00%)")
}

func TestTextReportRecommendationBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{-3, "Recommendation: BUY"},
		{-1, "Recommendation: HOLD/ACCUMULATE"},
		{1, "Recommendation: HOLD/WATCH"},
		{3, "Recommendation: REDUCE"},
		{5, "Recommendation: SELL/AVOID"},
	}
	for _, tt := range tests {
		d := sampleData()
		d.Result.Underperformance.Score = tt.score
		assert.Contains(t, Text(d), tt.want)
	}
}

func TestTextReportSkipsEmptySections(t *testing.T) {
	d := sampleData()
	d.Result.StockReturns = nil
	d.Result.AlphaAnalysis = nil
	d.Result.PeerComparison = nil
	d.Peers = nil
	d.Result.Underperformance.Factors = nil

	out := Text(d)
	assert.NotContains(t, out, "Key Performance Factors:")
	assert.NotContains(t, out, "Peer Companies:")
	assert.NotContains(t, out, "Valuation Metrics vs Peers:")
}

func TestSummary(t *testing.T) {
	out := Summary(sampleData())

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 80)))
	assert.Contains(t, out, "STOCK PERFORMANCE ANALYSIS: ACME")
	assert.Contains(t, out, "--- KEY FINANCIAL METRICS ---")
	assert.Contains(t, out, "--- STOCK RETURNS ---")
	assert.Contains(t, out, "--- ALPHA ANALYSIS ---")
	assert.Contains(t, out, "--- DCF VALUATION ---")
	assert.Contains(t, out, "--- PEER COMPARISON HIGHLIGHTS ---")
	assert.Contains(t, out, "--- UNDERPERFORMANCE ASSESSMENT ---")
	assert.Contains(t, out, "--- SUMMARY RECOMMENDATION ---")
	assert.Contains(t, out, "HOLD/WATCH: The stock is slightly underperforming but not significantly concerning.")

	require.NotContains(t, out, "DISCLAIMER")
}
