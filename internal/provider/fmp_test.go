package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFMPServer serves canned responses for the endpoints the client hits.
func newFMPServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.URL.Query().Get("apikey"))
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func newTestClient(srv *httptest.Server) *FMPClient {
	return NewFMPClient(FMPOptions{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestFMPAvailable(t *testing.T) {
	assert.True(t, NewFMPClient(FMPOptions{APIKey: "k"}).Available())
	assert.False(t, NewFMPClient(FMPOptions{}).Available())
}

func TestFMPProfile(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/profile/ACME": `[{"symbol":"ACME","companyName":"Acme Corp","sector":"Industrials","industry":"Machinery","price":100.0}]`,
	})
	defer srv.Close()

	profile, err := newTestClient(srv).Profile(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.Name)
	assert.Equal(t, "ACME", profile.Ticker)
	assert.Equal(t, "Industrials", profile.Sector)
	assert.Equal(t, "Machinery", profile.Industry)
}

func TestFMPProfileEmpty(t *testing.T) {
	srv := newFMPServer(t, map[string]string{"/profile/ACME": `[]`})
	defer srv.Close()

	_, err := newTestClient(srv).Profile(context.Background(), "ACME")
	require.Error(t, err)
}

func TestFMPFinancials(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/income-statement/ACME": `[
			{"date":"2023-12-31","revenue":1000,"netIncome":100,"ebitda":200,"weightedAverageShsOut":50},
			{"date":"2022-12-31","revenue":900,"netIncome":80,"ebitda":180,"weightedAverageShsOut":50}
		]`,
		"/balance-sheet-statement/ACME": `[
			{"date":"2023-12-31","totalAssets":2000,"totalEquity":800,"shortTermDebt":100,"longTermDebt":300},
			{"date":"2022-12-31","totalAssets":1800,"totalEquity":700,"shortTermDebt":80,"longTermDebt":320}
		]`,
		"/cash-flow-statement/ACME": `[
			{"date":"2023-12-31","operatingCashFlow":150},
			{"date":"2022-12-31","operatingCashFlow":120}
		]`,
		"/historical-price-full/ACME": `{"symbol":"ACME","historical":[
			{"date":"2023-12-29","close":55.0},
			{"date":"2023-01-03","close":42.0},
			{"date":"2022-12-30","close":40.0}
		]}`,
		"/historical-price-full/stock_dividend/ACME": `{"historical":[
			{"date":"2023-06-15","dividend":0.25},
			{"date":"2023-12-15","dividend":0.30},
			{"date":"2022-06-15","dividend":0.20}
		]}`,
	})
	defer srv.Close()

	financials, err := newTestClient(srv).Financials(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, financials, 2)

	latest := financials[0]
	assert.Equal(t, 2023, latest.Year)
	assert.InDelta(t, 55.0, latest.StockPrice, 1e-9) // newest close wins
	assert.InDelta(t, 50.0, latest.SharesOutstanding, 1e-9)
	assert.InDelta(t, 0.55, latest.DividendPerShare, 1e-9) // summed for the year
	assert.InDelta(t, 1000.0, latest.Revenue, 1e-9)
	assert.InDelta(t, 400.0, latest.TotalDebt, 1e-9) // short + long
	assert.InDelta(t, 150.0, latest.OperatingCashFlow, 1e-9)

	prior := financials[1]
	assert.Equal(t, 2022, prior.Year)
	assert.InDelta(t, 40.0, prior.StockPrice, 1e-9)
	assert.InDelta(t, 0.20, prior.DividendPerShare, 1e-9)
}

func TestFMPFinancialsMissingStatementYear(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/income-statement/ACME":                     `[{"date":"2023-12-31","revenue":1000,"netIncome":100,"ebitda":200,"weightedAverageShsOut":50}]`,
		"/balance-sheet-statement/ACME":              `[]`,
		"/cash-flow-statement/ACME":                  `[]`,
		"/historical-price-full/ACME":                `{"symbol":"ACME","historical":[]}`,
		"/historical-price-full/stock_dividend/ACME": `{"historical":[]}`,
	})
	defer srv.Close()

	financials, err := newTestClient(srv).Financials(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, financials, 1)
	assert.Zero(t, financials[0].TotalAssets)
	assert.Zero(t, financials[0].StockPrice)
	assert.InDelta(t, 1000.0, financials[0].Revenue, 1e-9)
}

func TestFMPFinancialsNoIncome(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/income-statement/ACME":                     `[]`,
		"/balance-sheet-statement/ACME":              `[]`,
		"/cash-flow-statement/ACME":                  `[]`,
		"/historical-price-full/ACME":                `{"historical":[]}`,
		"/historical-price-full/stock_dividend/ACME": `{"historical":[]}`,
	})
	defer srv.Close()

	_, err := newTestClient(srv).Financials(context.Background(), "ACME")
	require.Error(t, err)
}

func TestFMPEstimatesConvertsGrowthToDecimal(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/analyst-estimates/ACME": `[{"estimatedEpsAvg":3.5,"estimatedGrowthRate":12.0,"targetPriceAvg":72.0}]`,
	})
	defer srv.Close()

	estimates, err := newTestClient(srv).Estimates(context.Background(), "ACME")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, estimates.NextYearEPS, 1e-9)
	assert.InDelta(t, 0.12, estimates.LongTermGrowthRate, 1e-9)
	assert.InDelta(t, 72.0, estimates.TargetPrice, 1e-9)
}

func TestFMPBenchmark(t *testing.T) {
	// Newest first; 2021 has a single observation and is dropped.
	srv := newFMPServer(t, map[string]string{
		"/historical-price-full/^GSPC": `{"symbol":"^GSPC","historical":[
			{"date":"2023-12-29","close":4770},
			{"date":"2023-01-03","close":3824},
			{"date":"2022-12-30","close":3839},
			{"date":"2022-01-03","close":4796},
			{"date":"2021-12-31","close":4766}
		]}`,
	})
	defer srv.Close()

	series, err := newTestClient(srv).Benchmark(context.Background())
	require.NoError(t, err)
	require.Len(t, series.MarketIndex, 2)

	assert.Equal(t, 2023, series.MarketIndex[0].Year)
	assert.InDelta(t, (4770.0-3824.0)/3824.0, series.MarketIndex[0].Return, 1e-9)
	assert.Equal(t, 2022, series.MarketIndex[1].Year)
	assert.InDelta(t, (3839.0-4796.0)/4796.0, series.MarketIndex[1].Return, 1e-9)
}

func TestFMPPeers(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/stock-peers":      `[{"symbol":"ACME","peersList":["PEER1","PEER2"]}]`,
		"/profile/PEER1":    `[{"symbol":"PEER1","companyName":"Peer One Inc"}]`,
		"/profile/PEER2":    `[]`,
		"/ratios-ttm/PEER1": `[{"priceEarningsRatioTTM":18.5,"priceSalesRatioTTM":2.1,"priceToBookRatioTTM":3.0,"enterpriseValueMultipleTTM":12.0,"debtEquityRatioTTM":0.5,"returnOnEquityTTM":0.15,"returnOnAssetsTTM":0.07,"netProfitMarginTTM":0.11,"revenueGrowthTTMYoy":0.08}]`,
		"/ratios-ttm/PEER2": `[{"priceEarningsRatioTTM":22.0}]`,
	})
	defer srv.Close()

	peers, err := newTestClient(srv).Peers(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, peers, 2)

	byTicker := map[string]string{}
	for _, p := range peers {
		byTicker[p.Ticker] = p.Name
	}
	assert.Equal(t, "Peer One Inc", byTicker["PEER1"])
	assert.Equal(t, "PEER2", byTicker["PEER2"]) // profile miss falls back to the symbol

	for _, p := range peers {
		if p.Ticker != "PEER1" {
			continue
		}
		assert.InDelta(t, 18.5, p.CurrentMetrics["peRatio"], 1e-9)
		assert.InDelta(t, 12.0, p.CurrentMetrics["evToEbitda"], 1e-9)
		assert.InDelta(t, 0.08, p.CurrentMetrics["revenueGrowth"], 1e-9)
		assert.Len(t, p.CurrentMetrics, 9)
	}
}

func TestFMPPeersSkipsFailingPeer(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/stock-peers":      `[{"symbol":"ACME","peersList":["PEER1","DEAD"]}]`,
		"/profile/PEER1":    `[{"symbol":"PEER1","companyName":"Peer One Inc"}]`,
		"/ratios-ttm/PEER1": `[{"priceEarningsRatioTTM":18.5}]`,
	})
	defer srv.Close()

	peers, err := newTestClient(srv).Peers(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "PEER1", peers[0].Ticker)
}

func TestFMPPeersLimited(t *testing.T) {
	srv := newFMPServer(t, map[string]string{
		"/stock-peers":      `[{"symbol":"ACME","peersList":["PEER1","PEER2","PEER3"]}]`,
		"/profile/PEER1":    `[]`,
		"/ratios-ttm/PEER1": `[{"priceEarningsRatioTTM":10}]`,
	})
	defer srv.Close()

	client := NewFMPClient(FMPOptions{BaseURL: srv.URL, APIKey: "test-key", MaxPeers: 1})
	peers, err := client.Peers(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, peers, 1)
}
