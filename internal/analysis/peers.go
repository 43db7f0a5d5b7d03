package analysis

import (
	"sort"

	"github.com/sells-group/equity-cli/internal/model"
)

// metricNamePair relates the peer-data naming convention (camelCase, as
// delivered by ratio APIs) to the internal metric key (snake_case). The
// table is fixed; anything outside it compares under the peer's own key.
type metricNamePair struct {
	internal string
	peer     string
}

var metricNameTable = [...]metricNamePair{
	{"pe_ratio", "peRatio"},
	{"price_to_sales", "priceToSales"},
	{"price_to_book", "priceToBook"},
	{"ev_to_ebitda", "evToEbitda"},
	{"debt_to_equity", "debtToEquity"},
	{"return_on_equity", "returnOnEquity"},
	{"return_on_assets", "returnOnAssets"},
	{"net_margin", "netMargin"},
	{"revenue_growth", "revenueGrowth"},
}

// internalMetricKey maps a peer metric key to the internal company-metric
// key via the fixed name table. Keys outside the table pass through
// unchanged.
func internalMetricKey(key string) string {
	for _, pair := range metricNameTable {
		if key == pair.peer {
			return pair.internal
		}
		if key == pair.internal {
			return key
		}
	}
	return key
}

// CompareToPeers computes, for each metric present on the first peer, the
// cross-sectional peer median and the company's percentage deviation from
// it. An empty peer list yields an empty comparison.
func CompareToPeers(metrics model.CompanyMetrics, peers []model.PeerRecord) map[string]model.MetricComparison {
	comparison := make(map[string]model.MetricComparison)
	if len(peers) == 0 {
		return comparison
	}

	// The first peer's key set defines which metrics are compared; peers
	// missing a key contribute 0.
	for metric := range peers[0].CurrentMetrics {
		values := make([]float64, 0, len(peers))
		for _, peer := range peers {
			values = append(values, peer.CurrentMetrics[metric])
		}
		sort.Float64s(values)
		peerMedian := median(values)

		companyValue := metrics[internalMetricKey(metric)]

		var percentDifference float64
		if peerMedian != 0 {
			percentDifference = (companyValue - peerMedian) / peerMedian * 100
		}

		comparison[metric] = model.MetricComparison{
			CompanyValue:      companyValue,
			PeerMedian:        peerMedian,
			PercentDifference: percentDifference,
		}
	}

	return comparison
}

// median of an ascending-sorted, non-empty slice: the middle element for
// odd counts, the mean of the two middle elements for even counts.
func median(sorted []float64) float64 {
	middle := len(sorted) / 2
	if len(sorted)%2 == 0 && len(sorted) > 1 {
		return (sorted[middle-1] + sorted[middle]) / 2
	}
	return sorted[middle]
}
