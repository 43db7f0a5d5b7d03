// Package model defines the domain types shared across the analysis engine,
// data providers, and persistence.
package model

// Default benchmark assumptions used when a provider returns no data.
const (
	DefaultRiskFreeRate      = 0.035
	DefaultMarketRiskPremium = 0.055
	DefaultGrowthRate        = 0.10
)

// YearlyFinancials holds one fiscal year of combined statement data for a
// company. Fields missing at the source are zero, never an error; the
// analysis layer degrades the affected ratios instead.
type YearlyFinancials struct {
	Year              int     `json:"year" yaml:"year"`
	StockPrice        float64 `json:"stock_price" yaml:"stock_price"`
	SharesOutstanding float64 `json:"shares_outstanding" yaml:"shares_outstanding"`
	DividendPerShare  float64 `json:"dividend_per_share" yaml:"dividend_per_share"`
	Revenue           float64 `json:"revenue" yaml:"revenue"`
	NetIncome         float64 `json:"net_income" yaml:"net_income"`
	EBITDA            float64 `json:"ebitda" yaml:"ebitda"`
	TotalAssets       float64 `json:"total_assets" yaml:"total_assets"`
	TotalEquity       float64 `json:"total_equity" yaml:"total_equity"`
	TotalDebt         float64 `json:"total_debt" yaml:"total_debt"`
	OperatingCashFlow float64 `json:"operating_cash_flow" yaml:"operating_cash_flow"`
}

// MarketCap is stock price times shares outstanding.
func (y YearlyFinancials) MarketCap() float64 {
	return y.StockPrice * y.SharesOutstanding
}

// Estimates holds consensus analyst estimates for a company.
type Estimates struct {
	NextYearEPS        float64 `json:"next_year_eps" yaml:"next_year_eps"`
	LongTermGrowthRate float64 `json:"long_term_growth_rate" yaml:"long_term_growth_rate"` // decimal, 0.10 = 10%
	TargetPrice        float64 `json:"target_price" yaml:"target_price"`
}

// Normalize returns a copy with the default growth assumption filled in
// when the provider supplied none.
func (e Estimates) Normalize() Estimates {
	if e.LongTermGrowthRate == 0 {
		e.LongTermGrowthRate = DefaultGrowthRate
	}
	return e
}

// BenchmarkYear is one year of market index return.
type BenchmarkYear struct {
	Year   int     `json:"year" yaml:"year"`
	Return float64 `json:"return" yaml:"return"` // decimal
}

// BenchmarkSeries holds market index returns by year plus the CAPM scalars.
type BenchmarkSeries struct {
	MarketIndex       []BenchmarkYear `json:"market_index" yaml:"market_index"`
	RiskFreeRate      float64         `json:"risk_free_rate" yaml:"risk_free_rate"`
	MarketRiskPremium float64         `json:"market_risk_premium" yaml:"market_risk_premium"`
}

// Normalize returns a copy with zero CAPM scalars replaced by the
// long-run defaults.
func (b BenchmarkSeries) Normalize() BenchmarkSeries {
	if b.RiskFreeRate == 0 {
		b.RiskFreeRate = DefaultRiskFreeRate
	}
	if b.MarketRiskPremium == 0 {
		b.MarketRiskPremium = DefaultMarketRiskPremium
	}
	return b
}

// ReturnForYear looks up the benchmark return for the given year.
func (b BenchmarkSeries) ReturnForYear(year int) (float64, bool) {
	for _, y := range b.MarketIndex {
		if y.Year == year {
			return y.Return, true
		}
	}
	return 0, false
}

// PeerRecord holds a comparable company and its current ratio snapshot.
// The metric key set is peer-supplied, not fixed.
type PeerRecord struct {
	Name           string             `json:"name" yaml:"name"`
	Ticker         string             `json:"ticker" yaml:"ticker"`
	CurrentMetrics map[string]float64 `json:"current_metrics" yaml:"current_metrics"`
}

// CompanyProfile identifies the company under analysis.
type CompanyProfile struct {
	Name     string `json:"name" yaml:"name"`
	Ticker   string `json:"ticker" yaml:"ticker"`
	Sector   string `json:"sector" yaml:"sector"`
	Industry string `json:"industry" yaml:"industry"`
}
