package model

import "time"

// CompanyMetrics maps ratio names (snake_case) to derived values. Owned and
// regenerated by the metrics calculator on every run; never mutated
// elsewhere.
type CompanyMetrics map[string]float64

// StockReturn is one year of total shareholder return.
type StockReturn struct {
	Year           int     `json:"year"`
	PriceReturn    float64 `json:"price_return"`
	DividendReturn float64 `json:"dividend_return"`
	TotalReturn    float64 `json:"total_return"`
}

// AlphaYear is the stock's excess return over the benchmark for one year.
type AlphaYear struct {
	Year  int     `json:"year"`
	Alpha float64 `json:"alpha"`
}

// MetricComparison relates a company metric to its peer median.
type MetricComparison struct {
	CompanyValue      float64 `json:"company_value"`
	PeerMedian        float64 `json:"peer_median"`
	PercentDifference float64 `json:"percent_difference"`
}

// DCFValuation is the output of the discounted cash flow engine. A zeroed
// value (aside from WACC) means no positive base cash flow could be
// derived and the valuation is undefined.
type DCFValuation struct {
	WACC               float64   `json:"wacc"`
	ProjectedCashFlows []float64 `json:"projected_cash_flows"`
	PresentValueCFs    []float64 `json:"present_value_cfs"`
	TerminalValue      float64   `json:"terminal_value"`
	PresentValueTV     float64   `json:"present_value_tv"`
	EnterpriseValue    float64   `json:"enterprise_value"`
	EquityValue        float64   `json:"equity_value"`
	ImpliedSharePrice  float64   `json:"implied_share_price"`
	Upside             float64   `json:"upside"`
}

// Assessment is the scorer output: a signed score, its categorical band,
// and the ordered human-readable factors that produced it.
type Assessment struct {
	Assessment string   `json:"assessment"`
	Score      int      `json:"score"`
	Factors    []string `json:"factors"`
}

// Recommendation is the action bucket derived from the assessment score.
type Recommendation string

const (
	RecommendationBuy        Recommendation = "BUY"
	RecommendationAccumulate Recommendation = "HOLD/ACCUMULATE"
	RecommendationWatch      Recommendation = "HOLD/WATCH"
	RecommendationReduce     Recommendation = "REDUCE"
	RecommendationSell       Recommendation = "SELL/AVOID"
)

// AnalysisResult is the terminal artifact of one analysis run. Assembled
// once, immutable thereafter, consumed by the report renderer.
type AnalysisResult struct {
	CompanyMetrics   CompanyMetrics              `json:"company_metrics"`
	StockReturns     []StockReturn               `json:"stock_returns"`
	AlphaAnalysis    []AlphaYear                 `json:"alpha_analysis"`
	PeerComparison   map[string]MetricComparison `json:"peer_comparison"`
	DCFValuation     DCFValuation                `json:"dcf_valuation"`
	Underperformance Assessment                  `json:"underperformance_assessment"`
}

// RunStatus represents the state of a persisted analysis run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is a persisted analysis run for one ticker.
type Run struct {
	ID             string          `json:"id"`
	Ticker         string          `json:"ticker"`
	Profile        CompanyProfile  `json:"profile"`
	Status         RunStatus       `json:"status"`
	Result         *AnalysisResult `json:"result,omitempty"`
	Recommendation Recommendation  `json:"recommendation,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
