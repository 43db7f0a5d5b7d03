package analysis

import (
	"fmt"
	"math"

	"github.com/sells-group/equity-cli/internal/model"
)

// Thresholds holds the scorer's fixed decision boundaries. All comparisons
// are strict, so a deviation of exactly the threshold does not trigger.
type Thresholds struct {
	SevereAlpha      float64 // most-recent alpha below this scores +2
	PeerDeviationPct float64 // percent deviation from peer median that counts
	DCFUpside        float64 // DCF upside magnitude that counts
	PriceToTargetBuy float64 // price/target below this is a positive signal
}

// DefaultThresholds returns the standard scoring boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SevereAlpha:      -0.05,
		PeerDeviationPct: 15,
		DCFUpside:        0.15,
		PriceToTargetBuy: 0.8,
	}
}

// Peer metric groups checked by the scorer, under the peer-data naming
// convention the comparison map is keyed by.
var (
	valuationMetrics     = []string{"peRatio", "priceToSales", "priceToBook", "evToEbitda"}
	profitabilityMetrics = []string{"returnOnEquity", "returnOnAssets", "netMargin"}
	growthMetrics        = []string{"revenueGrowth"}
)

// AssessUnderperformance combines alpha, peer deviations, DCF upside, and
// price-to-target into a signed score and an ordered list of explanatory
// factors. Higher scores are worse; contributions are additive, so the
// rule order affects presentation only.
func AssessUnderperformance(
	alpha []model.AlphaYear,
	peerComparison map[string]model.MetricComparison,
	dcf model.DCFValuation,
	metrics model.CompanyMetrics,
	th Thresholds,
) model.Assessment {
	score := 0
	var factors []string

	// Most recent year vs market.
	if len(alpha) > 0 {
		recentAlpha := alpha[0].Alpha
		if recentAlpha < th.SevereAlpha {
			factors = append(factors, fmt.Sprintf(
				"Stock has underperformed the market by %.2f%% in the most recent year", -recentAlpha*100))
			score += 2
		} else if recentAlpha < 0 {
			factors = append(factors, fmt.Sprintf(
				"Stock has slightly underperformed the market by %.2f%% in the most recent year", -recentAlpha*100))
			score++
		}
	}

	// Valuation multiples vs peers: cheap is a positive signal, rich a
	// negative one.
	for _, metric := range valuationMetrics {
		cmp, ok := peerComparison[metric]
		if !ok {
			continue
		}
		if cmp.PercentDifference < -th.PeerDeviationPct {
			factors = append(factors, fmt.Sprintf(
				"%s is %.2f%% below peer median, potentially indicating undervaluation",
				metric, math.Abs(cmp.PercentDifference)))
			score--
		} else if cmp.PercentDifference > th.PeerDeviationPct {
			factors = append(factors, fmt.Sprintf(
				"%s is %.2f%% above peer median, potentially indicating overvaluation",
				metric, cmp.PercentDifference))
			score++
		}
	}

	// Profitability vs peers: below median is worse.
	for _, metric := range profitabilityMetrics {
		cmp, ok := peerComparison[metric]
		if !ok {
			continue
		}
		if cmp.PercentDifference < -th.PeerDeviationPct {
			factors = append(factors, fmt.Sprintf(
				"%s is %.2f%% below peer median", metric, math.Abs(cmp.PercentDifference)))
			score++
		}
	}

	// Growth vs peers: below median is worse.
	for _, metric := range growthMetrics {
		cmp, ok := peerComparison[metric]
		if !ok {
			continue
		}
		if cmp.PercentDifference < -th.PeerDeviationPct {
			factors = append(factors, fmt.Sprintf(
				"%s is %.2f%% below peer median", metric, math.Abs(cmp.PercentDifference)))
			score++
		}
	}

	// Intrinsic value vs price.
	if dcf.Upside > th.DCFUpside {
		factors = append(factors, fmt.Sprintf(
			"DCF analysis suggests stock is undervalued by %.2f%%", dcf.Upside*100))
		score -= 2
	} else if dcf.Upside < -th.DCFUpside {
		factors = append(factors, fmt.Sprintf(
			"DCF analysis suggests stock is overvalued by %.2f%%", -dcf.Upside*100))
		score += 2
	}

	// Price vs analyst target: trading well below target is a positive
	// signal for future returns.
	if priceToTarget, ok := metrics["current_price_to_target"]; ok && priceToTarget < th.PriceToTargetBuy {
		factors = append(factors, fmt.Sprintf(
			"Current price is %.2f%% below analyst target price", (1-priceToTarget)*100))
		score--
	}

	return model.Assessment{
		Assessment: assessmentForScore(score),
		Score:      score,
		Factors:    factors,
	}
}

// assessmentForScore maps the signed score to its categorical band.
func assessmentForScore(score int) string {
	switch {
	case score >= 4:
		return "Significantly underperforming"
	case score >= 2:
		return "Moderately underperforming"
	case score >= 0:
		return "Slightly underperforming"
	case score >= -2:
		return "Performing in line with expectations"
	default:
		return "Outperforming expectations"
	}
}

// RecommendationForScore maps the assessment score to the action bucket
// used by the reporter.
func RecommendationForScore(score int) model.Recommendation {
	switch {
	case score < -2:
		return model.RecommendationBuy
	case score < 0:
		return model.RecommendationAccumulate
	case score < 2:
		return model.RecommendationWatch
	case score < 4:
		return model.RecommendationReduce
	default:
		return model.RecommendationSell
	}
}
