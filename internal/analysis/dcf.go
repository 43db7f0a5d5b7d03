package analysis

import (
	"math"

	"github.com/sells-group/equity-cli/internal/model"
)

// Assumptions holds the fixed DCF model constants. They parameterize the
// model for configuration purposes but are not expected to vary per run.
type Assumptions struct {
	Beta               float64 // CAPM beta
	PreTaxCostOfDebt   float64
	TaxRate            float64
	TerminalGrowth     float64
	ProjectionYears    int
	FallbackTVMultiple float64 // terminal value multiple when WACC <= terminal growth
}

// DefaultAssumptions returns the standard model constants.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Beta:               1.2,
		PreTaxCostOfDebt:   0.05,
		TaxRate:            0.25,
		TerminalGrowth:     0.03,
		ProjectionYears:    5,
		FallbackTVMultiple: 20,
	}
}

// growthDecayStep is the per-year linear decay applied to the analyst
// growth rate over the projection window.
const growthDecayStep = 0.1

// DiscountedCashFlow values the company from projected cash flows
// discounted at WACC. The base cash flow is taken from operating cash
// flow, else net income grossed up 10%, else 10% of revenue; with no
// positive base the valuation is undefined and a zeroed result (WACC
// aside) is returned.
//
// Projection compounds each year's decayed growth rate onto the running
// cash flow rather than the original base; downstream upside figures
// depend on that compounding.
func DiscountedCashFlow(current model.YearlyFinancials, benchmark model.BenchmarkSeries, estimates model.Estimates, a Assumptions) model.DCFValuation {
	benchmark = benchmark.Normalize()
	estimates = estimates.Normalize()

	// Capital structure weights.
	equityValue := current.MarketCap()
	totalCapital := equityValue + current.TotalDebt
	equityWeight, debtWeight := 1.0, 0.0
	if totalCapital > 0 {
		equityWeight = equityValue / totalCapital
		debtWeight = 1 - equityWeight
	}

	// CAPM cost of equity, after-tax cost of debt, blended WACC.
	costOfEquity := benchmark.RiskFreeRate + a.Beta*benchmark.MarketRiskPremium
	costOfDebt := a.PreTaxCostOfDebt * (1 - a.TaxRate)
	wacc := equityWeight*costOfEquity + debtWeight*costOfDebt

	baseCashFlow := current.OperatingCashFlow
	if baseCashFlow <= 0 {
		baseCashFlow = current.NetIncome * 1.1
	}
	if baseCashFlow <= 0 && current.Revenue > 0 {
		baseCashFlow = current.Revenue * 0.1
	}
	if baseCashFlow <= 0 {
		return model.DCFValuation{WACC: wacc}
	}

	// Project forward with linearly decaying growth, compounding on the
	// running cash flow.
	projected := make([]float64, 0, a.ProjectionYears)
	cashFlow := baseCashFlow
	for year := 1; year <= a.ProjectionYears; year++ {
		growthRate := estimates.LongTermGrowthRate * (1 - float64(year-1)*growthDecayStep)
		cashFlow *= 1 + growthRate
		projected = append(projected, cashFlow)
	}

	presentValues := make([]float64, len(projected))
	var pvSum float64
	for i, cf := range projected {
		presentValues[i] = cf / math.Pow(1+wacc, float64(i+1))
		pvSum += presentValues[i]
	}

	// Gordon Growth terminal value, with a multiple fallback when WACC
	// does not exceed the terminal growth rate.
	finalCF := projected[len(projected)-1]
	var terminalValue float64
	if wacc > a.TerminalGrowth {
		terminalValue = finalCF * (1 + a.TerminalGrowth) / (wacc - a.TerminalGrowth)
	} else {
		terminalValue = finalCF * a.FallbackTVMultiple
	}
	presentValueTV := terminalValue / math.Pow(1+wacc, float64(a.ProjectionYears))

	enterpriseValue := pvSum + presentValueTV
	netEquityValue := enterpriseValue - current.TotalDebt

	var impliedSharePrice float64
	if current.SharesOutstanding > 0 {
		impliedSharePrice = netEquityValue / current.SharesOutstanding
	}
	var upside float64
	if current.StockPrice > 0 {
		upside = (impliedSharePrice - current.StockPrice) / current.StockPrice
	}

	return model.DCFValuation{
		WACC:               wacc,
		ProjectedCashFlows: projected,
		PresentValueCFs:    presentValues,
		TerminalValue:      terminalValue,
		PresentValueTV:     presentValueTV,
		EnterpriseValue:    enterpriseValue,
		EquityValue:        netEquityValue,
		ImpliedSharePrice:  impliedSharePrice,
		Upside:             upside,
	}
}
