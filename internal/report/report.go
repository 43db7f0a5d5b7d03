// Package report renders analysis results as investor-facing text.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/equity-cli/internal/analysis"
	"github.com/sells-group/equity-cli/internal/model"
)

const ruleWidth = 80

// Data bundles everything the renderer needs for one company.
type Data struct {
	Profile      model.CompanyProfile
	Result       *model.AnalysisResult
	Peers        []model.PeerRecord
	CurrentPrice float64
}

// valuationMetrics and profitabilityMetrics fix the presentation order of
// the peer comparison sections.
var (
	valuationMetrics     = []string{"peRatio", "priceToSales", "priceToBook", "evToEbitda"}
	profitabilityMetrics = []string{"returnOnEquity", "returnOnAssets", "netMargin", "revenueGrowth"}
)

// rationale explains the action bucket in one sentence.
func rationale(rec model.Recommendation) string {
	switch rec {
	case model.RecommendationBuy:
		return "The stock is outperforming expectations and shows strong potential."
	case model.RecommendationAccumulate:
		return "The stock is performing in line with expectations with some positive indicators."
	case model.RecommendationWatch:
		return "The stock is slightly underperforming but not significantly concerning."
	case model.RecommendationReduce:
		return "The stock is moderately underperforming and may warrant caution."
	default:
		return "The stock is significantly underperforming across multiple metrics."
	}
}

// Text renders the full sectioned investment report.
func Text(d Data) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	r := d.Result

	rec := analysis.RecommendationForScore(r.Underperformance.Score)

	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteByte('\n')
	}
	rule := func(ch string) { line("%s", strings.Repeat(ch, ruleWidth)) }
	section := func(title string) {
		line("%s", title)
		rule("-")
	}

	rule("=")
	line("INVESTMENT ANALYSIS REPORT: %s (%s)", d.Profile.Name, d.Profile.Ticker)
	rule("=")
	line("")

	section("EXECUTIVE SUMMARY")
	line("Recommendation: %s", string(rec))
	line("Performance Assessment: %s", r.Underperformance.Assessment)
	line("Underperformance Score: %d", r.Underperformance.Score)
	line("")
	line("%s", rationale(rec))
	line("")
	if len(r.Underperformance.Factors) > 0 {
		line("Key Performance Factors:")
		for _, factor := range r.Underperformance.Factors {
			line("- %s", factor)
		}
		line("")
	}

	section("COMPANY OVERVIEW")
	line("Company: %s (%s)", d.Profile.Name, d.Profile.Ticker)
	line("Sector: %s", d.Profile.Sector)
	line("Industry: %s", d.Profile.Industry)
	line("")

	section("FINANCIAL METRICS")
	if len(r.CompanyMetrics) > 0 {
		m := r.CompanyMetrics
		line("P/E Ratio: %.2f", m["pe_ratio"])
		line("Forward P/E: %.2f", m["forward_pe"])
		line("PEG Ratio: %.2f", m["peg_ratio"])
		line("Return on Equity: %.2f%%", m["return_on_equity"]*100)
		line("Net Margin: %.2f%%", m["net_margin"]*100)
		line("Revenue Growth: %.2f%%", m["revenue_growth"]*100)
		line("Debt to Equity: %.2f", m["debt_to_equity"])
		line("Dividend Yield: %.2f%%", m["dividend_yield"]*100)
		line("")
	}

	section("STOCK RETURNS")
	for _, ret := range r.StockReturns {
		line("Year %d: %.2f%% total return", ret.Year, ret.TotalReturn*100)
	}
	if len(r.StockReturns) > 0 {
		line("")
	}

	section("MARKET-ADJUSTED PERFORMANCE (ALPHA)")
	for _, alpha := range r.AlphaAnalysis {
		line("Year %d: %.2f%% excess return vs market", alpha.Year, alpha.Alpha*100)
	}
	if len(r.AlphaAnalysis) > 0 {
		line("")
	}

	section("DISCOUNTED CASH FLOW VALUATION")
	dcf := r.DCFValuation
	line("WACC: %.2f%%", dcf.WACC*100)
	if len(dcf.ProjectedCashFlows) > 0 {
		line("Projected Cash Flows:")
		for i, cf := range dcf.ProjectedCashFlows {
			line("  Year %d: $%.2fM", i+1, cf/1e6)
		}
	}
	line("Terminal Value: $%.2fB", dcf.TerminalValue/1e9)
	line("Enterprise Value: $%.2fB", dcf.EnterpriseValue/1e9)
	line("Equity Value: $%.2fB", dcf.EquityValue/1e9)
	line("Implied Share Price: $%.2f", dcf.ImpliedSharePrice)
	line("Current Price: $%.2f", d.CurrentPrice)
	line("Upside/Downside: %.2f%%", dcf.Upside*100)
	line("")

	section("PEER COMPARISON")
	if len(d.Peers) > 0 {
		line("Peer Companies:")
		for _, peer := range d.Peers {
			line("- %s (%s)", peer.Name, peer.Ticker)
		}
		line("")
	}
	if len(r.PeerComparison) > 0 {
		line("Valuation Metrics vs Peers:")
		writeComparisons(line, r.PeerComparison, valuationMetrics)
		line("")
		line("Profitability Metrics vs Peers:")
		writeComparisons(line, r.PeerComparison, profitabilityMetrics)
		line("")
	}

	section("INVESTMENT CONCLUSION")
	line("Recommendation: %s", string(rec))
	line("Assessment: %s", r.Underperformance.Assessment)
	line("")
	line("%s", rationale(rec))
	line("")
	if len(r.Underperformance.Factors) > 0 {
		line("Key Factors Influencing This Recommendation:")
		for _, factor := range r.Underperformance.Factors {
			line("- %s", factor)
		}
	}

	line("")
	rule("=")
	line("DISCLAIMER")
	line("This report is for informational purposes only and does not constitute investment advice.")
	line("Always conduct your own research and consult with a financial advisor before making investment decisions.")
	rule("=")

	return b.String()
}

// writeComparisons prints the named comparisons in order, skipping metrics
// that were not compared.
func writeComparisons(line func(string, ...any), comparisons map[string]model.MetricComparison, order []string) {
	for _, metric := range order {
		c, ok := comparisons[metric]
		if !ok {
			continue
		}
		line("%s: %.2f (Peer median: %.2f, Diff: %.2f%%)",
			metric, c.CompanyValue, c.PeerMedian, c.PercentDifference)
	}
}

// Summary renders the short console form.
func Summary(d Data) string {
	var b strings.Builder
	r := d.Result
	rec := analysis.RecommendationForScore(r.Underperformance.Score)

	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", ruleWidth))
	fmt.Fprintf(&b, "STOCK PERFORMANCE ANALYSIS: %s\n", d.Profile.Ticker)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", ruleWidth))
	fmt.Fprintf(&b, "\nCompany: %s (%s)\n", d.Profile.Name, d.Profile.Ticker)
	fmt.Fprintf(&b, "Sector: %s\n", d.Profile.Sector)
	fmt.Fprintf(&b, "Industry: %s\n", d.Profile.Industry)

	fmt.Fprintf(&b, "\n--- KEY FINANCIAL METRICS ---\n")
	if len(r.CompanyMetrics) > 0 {
		m := r.CompanyMetrics
		fmt.Fprintf(&b, "P/E Ratio: %.2f\n", m["pe_ratio"])
		fmt.Fprintf(&b, "Forward P/E: %.2f\n", m["forward_pe"])
		fmt.Fprintf(&b, "PEG Ratio: %.2f\n", m["peg_ratio"])
		fmt.Fprintf(&b, "Return on Equity: %.2f%%\n", m["return_on_equity"]*100)
		fmt.Fprintf(&b, "Net Margin: %.2f%%\n", m["net_margin"]*100)
		fmt.Fprintf(&b, "Revenue Growth: %.2f%%\n", m["revenue_growth"]*100)
		fmt.Fprintf(&b, "Debt to Equity: %.2f\n", m["debt_to_equity"])
	}

	fmt.Fprintf(&b, "\n--- STOCK RETURNS ---\n")
	for _, ret := range r.StockReturns {
		fmt.Fprintf(&b, "Year %d: %.2f%% total return\n", ret.Year, ret.TotalReturn*100)
	}

	fmt.Fprintf(&b, "\n--- ALPHA ANALYSIS ---\n")
	for _, alpha := range r.AlphaAnalysis {
		fmt.Fprintf(&b, "Year %d: %.2f%% excess return vs market\n", alpha.Year, alpha.Alpha*100)
	}

	fmt.Fprintf(&b, "\n--- DCF VALUATION ---\n")
	fmt.Fprintf(&b, "WACC: %.2f%%\n", r.DCFValuation.WACC*100)
	fmt.Fprintf(&b, "Implied Share Price: $%.2f\n", r.DCFValuation.ImpliedSharePrice)
	fmt.Fprintf(&b, "Current Price: $%.2f\n", d.CurrentPrice)
	fmt.Fprintf(&b, "Upside/Downside: %.2f%%\n", r.DCFValuation.Upside*100)

	fmt.Fprintf(&b, "\n--- PEER COMPARISON HIGHLIGHTS ---\n")
	for _, metric := range valuationMetrics {
		c, ok := r.PeerComparison[metric]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %.2f (Peer median: %.2f, Diff: %.2f%%)\n",
			metric, c.CompanyValue, c.PeerMedian, c.PercentDifference)
	}

	fmt.Fprintf(&b, "\n--- UNDERPERFORMANCE ASSESSMENT ---\n")
	fmt.Fprintf(&b, "Overall Assessment: %s\n", r.Underperformance.Assessment)
	fmt.Fprintf(&b, "Underperformance Score: %d\n", r.Underperformance.Score)
	for _, factor := range r.Underperformance.Factors {
		fmt.Fprintf(&b, "- %s\n", factor)
	}

	fmt.Fprintf(&b, "\n--- SUMMARY RECOMMENDATION ---\n")
	fmt.Fprintf(&b, "%s: %s\n", string(rec), rationale(rec))

	return b.String()
}
