// Package analysis implements the valuation and scoring engine: ratio
// derivation, yearly returns and alpha, peer-median benchmarking, DCF
// valuation, and the rule-based underperformance scorer.
//
// Every function is pure and deterministic given its inputs. Missing or
// zero inputs degrade the affected metric to a safe default instead of
// raising an error; the only hard failure is an empty financials sequence.
package analysis

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-cli/internal/model"
)

// ErrNoFinancials is returned when the financials sequence is empty and
// nothing can be computed.
var ErrNoFinancials = eris.New("analysis: no financial data available")

// FinancialMetrics derives the named company ratios from the most recent
// year (and the prior year, for growth) of statement data plus analyst
// estimates. Each ratio guards against division by zero by falling back to
// 0, except current_price_to_target which defaults to 1 (parity).
func FinancialMetrics(financials []model.YearlyFinancials, estimates model.Estimates) (model.CompanyMetrics, error) {
	if len(financials) == 0 {
		return nil, ErrNoFinancials
	}

	current := financials[0]
	var previous model.YearlyFinancials
	hasPrevious := len(financials) > 1
	if hasPrevious {
		previous = financials[1]
	}
	estimates = estimates.Normalize()

	m := make(model.CompanyMetrics, 17)

	// Profitability
	m["net_margin"] = safeRatio(current.NetIncome, current.Revenue)
	m["return_on_equity"] = safeRatio(current.NetIncome, current.TotalEquity)
	m["return_on_assets"] = safeRatio(current.NetIncome, current.TotalAssets)

	// Growth: requires a prior year with a positive base.
	m["revenue_growth"] = 0
	m["net_income_growth"] = 0
	if hasPrevious && previous.Revenue > 0 {
		m["revenue_growth"] = (current.Revenue - previous.Revenue) / previous.Revenue
	}
	if hasPrevious && previous.NetIncome > 0 {
		m["net_income_growth"] = (current.NetIncome - previous.NetIncome) / previous.NetIncome
	}

	// Valuation
	m["pe_ratio"] = 0
	if current.SharesOutstanding > 0 && current.NetIncome != 0 {
		m["pe_ratio"] = current.StockPrice / (current.NetIncome / current.SharesOutstanding)
	}
	m["price_to_sales"] = safeRatio(current.MarketCap(), current.Revenue)
	m["price_to_book"] = safeRatio(current.MarketCap(), current.TotalEquity)

	// Enterprise value is always computed; EV/EBITDA guards on EBITDA.
	m["enterprise_value"] = current.MarketCap() + current.TotalDebt
	m["ev_to_ebitda"] = safeRatio(m["enterprise_value"], current.EBITDA)

	// Financial health
	m["debt_to_equity"] = safeRatio(current.TotalDebt, current.TotalEquity)

	// Price vs analyst target: parity when no target is known.
	if estimates.TargetPrice > 0 {
		m["current_price_to_target"] = current.StockPrice / estimates.TargetPrice
	} else {
		m["current_price_to_target"] = 1
	}

	// Dividends
	m["dividend_yield"] = safeRatio(current.DividendPerShare, current.StockPrice)
	m["payout_ratio"] = 0
	if current.NetIncome > 0 && current.SharesOutstanding > 0 {
		m["payout_ratio"] = current.DividendPerShare * current.SharesOutstanding / current.NetIncome
	}

	// Per-share and forward measures
	m["earnings_per_share"] = safeRatio(current.NetIncome, current.SharesOutstanding)
	m["forward_pe"] = safeRatio(current.StockPrice, estimates.NextYearEPS)

	// PEG divides P/E by growth expressed in percentage points, the one
	// place growth is not a decimal.
	m["peg_ratio"] = 0
	if m["pe_ratio"] > 0 && estimates.LongTermGrowthRate > 0 {
		m["peg_ratio"] = m["pe_ratio"] / (estimates.LongTermGrowthRate * 100)
	}

	return m, nil
}

// safeRatio returns num/den, or 0 when den is not positive.
func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
