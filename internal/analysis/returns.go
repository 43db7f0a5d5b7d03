package analysis

import "github.com/sells-group/equity-cli/internal/model"

// StockReturns computes yearly total shareholder returns from consecutive
// pairs of the most-recent-first financials sequence. Fewer than two years
// of data yields an empty slice, not an error.
func StockReturns(financials []model.YearlyFinancials) []model.StockReturn {
	if len(financials) < 2 {
		return nil
	}

	returns := make([]model.StockReturn, 0, len(financials)-1)
	for i := 0; i < len(financials)-1; i++ {
		current := financials[i]
		previous := financials[i+1]

		var priceReturn, dividendReturn float64
		if previous.StockPrice > 0 {
			priceReturn = (current.StockPrice - previous.StockPrice) / previous.StockPrice
			dividendReturn = current.DividendPerShare / previous.StockPrice
		}

		returns = append(returns, model.StockReturn{
			Year:           current.Year,
			PriceReturn:    priceReturn,
			DividendReturn: dividendReturn,
			TotalReturn:    priceReturn + dividendReturn,
		})
	}

	return returns
}

// Alpha computes market-adjusted excess returns. Years with no matching
// benchmark entry are dropped; an empty benchmark series yields an empty
// result for any input.
func Alpha(returns []model.StockReturn, benchmark model.BenchmarkSeries) []model.AlphaYear {
	var alpha []model.AlphaYear
	for _, r := range returns {
		marketReturn, ok := benchmark.ReturnForYear(r.Year)
		if !ok {
			continue
		}
		alpha = append(alpha, model.AlphaYear{
			Year:  r.Year,
			Alpha: r.TotalReturn - marketReturn,
		})
	}
	return alpha
}
