package provider

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/equity-cli/internal/fetcher"
	"github.com/sells-group/equity-cli/internal/model"
)

// DefaultFMPBaseURL is the Financial Modeling Prep v3 API root.
const DefaultFMPBaseURL = "https://financialmodelingprep.com/api/v3"

// benchmarkSymbol is the S&P 500 index symbol on FMP.
const benchmarkSymbol = "^GSPC"

// FMPOptions configures the Financial Modeling Prep client.
type FMPOptions struct {
	BaseURL      string
	APIKey       string
	MaxPeers     int // peers fetched per company, default 5
	HistoryYears int // fiscal years of statements, default 3
	HTTP         *fetcher.HTTPFetcher
}

// FMPClient retrieves company data from the Financial Modeling Prep API.
type FMPClient struct {
	http    *fetcher.HTTPFetcher
	baseURL string
	apiKey  string
	peers   int
	years   int
}

// NewFMPClient creates a Financial Modeling Prep provider.
func NewFMPClient(opts FMPOptions) *FMPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultFMPBaseURL
	}
	if opts.MaxPeers == 0 {
		opts.MaxPeers = 5
	}
	if opts.HistoryYears == 0 {
		opts.HistoryYears = 3
	}
	if opts.HTTP == nil {
		opts.HTTP = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
	}
	return &FMPClient{
		http:    opts.HTTP,
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		peers:   opts.MaxPeers,
		years:   opts.HistoryYears,
	}
}

// Name implements Provider.
func (c *FMPClient) Name() string { return "fmp" }

// Available implements Provider. The client needs an API key.
func (c *FMPClient) Available() bool { return c.apiKey != "" }

// endpoint builds a v3 API URL with the api key attached.
func (c *FMPClient) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
}

type fmpProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	Price       float64 `json:"price"`
}

type fmpIncome struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	NetIncome   float64 `json:"netIncome"`
	EBITDA      float64 `json:"ebitda"`
	WeightedShs float64 `json:"weightedAverageShsOut"`
}

type fmpBalance struct {
	Date          string  `json:"date"`
	TotalAssets   float64 `json:"totalAssets"`
	TotalEquity   float64 `json:"totalEquity"`
	ShortTermDebt float64 `json:"shortTermDebt"`
	LongTermDebt  float64 `json:"longTermDebt"`
}

type fmpCashFlow struct {
	Date              string  `json:"date"`
	OperatingCashFlow float64 `json:"operatingCashFlow"`
}

type fmpPriceHistory struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"historical"`
}

type fmpDividendHistory struct {
	Historical []struct {
		Date     string  `json:"date"`
		Dividend float64 `json:"dividend"`
	} `json:"historical"`
}

type fmpEstimate struct {
	EstimatedEpsAvg     float64 `json:"estimatedEpsAvg"`
	EstimatedGrowthRate float64 `json:"estimatedGrowthRate"` // percent
	TargetPriceAvg      float64 `json:"targetPriceAvg"`
}

type fmpPeers struct {
	Symbol    string   `json:"symbol"`
	PeersList []string `json:"peersList"`
}

type fmpRatiosTTM struct {
	PriceEarningsRatioTTM      float64 `json:"priceEarningsRatioTTM"`
	PriceSalesRatioTTM         float64 `json:"priceSalesRatioTTM"`
	PriceToBookRatioTTM        float64 `json:"priceToBookRatioTTM"`
	EnterpriseValueMultipleTTM float64 `json:"enterpriseValueMultipleTTM"`
	DebtEquityRatioTTM         float64 `json:"debtEquityRatioTTM"`
	ReturnOnEquityTTM          float64 `json:"returnOnEquityTTM"`
	ReturnOnAssetsTTM          float64 `json:"returnOnAssetsTTM"`
	NetProfitMarginTTM         float64 `json:"netProfitMarginTTM"`
	RevenueGrowthTTMYoy        float64 `json:"revenueGrowthTTMYoy"`
}

// dateYear parses the fiscal year from an FMP date string (YYYY-MM-DD).
func dateYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// Profile implements Provider.
func (c *FMPClient) Profile(ctx context.Context, ticker string) (model.CompanyProfile, error) {
	var profiles []fmpProfile
	if err := c.http.GetJSON(ctx, c.endpoint("profile/"+url.PathEscape(ticker), nil), &profiles); err != nil {
		return model.CompanyProfile{}, eris.Wrap(err, "fmp: fetch profile")
	}
	if len(profiles) == 0 {
		return model.CompanyProfile{}, eris.Errorf("fmp: no profile for %s", ticker)
	}
	p := profiles[0]
	return model.CompanyProfile{
		Name:     p.CompanyName,
		Ticker:   p.Symbol,
		Sector:   p.Sector,
		Industry: p.Industry,
	}, nil
}

// Financials implements Provider. The three statements plus price and
// dividend history are fetched concurrently and merged into one record per
// fiscal year, most recent first. A statement missing for a given year
// contributes zeros for its fields.
func (c *FMPClient) Financials(ctx context.Context, ticker string) ([]model.YearlyFinancials, error) {
	limit := url.Values{"limit": {strconv.Itoa(c.years)}}

	var (
		income    []fmpIncome
		balance   []fmpBalance
		cashFlow  []fmpCashFlow
		prices    fmpPriceHistory
		dividends fmpDividendHistory
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return c.http.GetJSON(gCtx, c.endpoint("income-statement/"+url.PathEscape(ticker), limit), &income)
	})
	eg.Go(func() error {
		return c.http.GetJSON(gCtx, c.endpoint("balance-sheet-statement/"+url.PathEscape(ticker), limit), &balance)
	})
	eg.Go(func() error {
		return c.http.GetJSON(gCtx, c.endpoint("cash-flow-statement/"+url.PathEscape(ticker), limit), &cashFlow)
	})
	eg.Go(func() error {
		params := url.Values{"serietype": {"line"}}
		return c.http.GetJSON(gCtx, c.endpoint("historical-price-full/"+url.PathEscape(ticker), params), &prices)
	})
	eg.Go(func() error {
		return c.http.GetJSON(gCtx, c.endpoint("historical-price-full/stock_dividend/"+url.PathEscape(ticker), nil), &dividends)
	})
	if err := eg.Wait(); err != nil {
		return nil, eris.Wrap(err, "fmp: fetch financials")
	}

	if len(income) == 0 {
		return nil, eris.Errorf("fmp: no income statements for %s", ticker)
	}

	balanceByYear := make(map[int]fmpBalance, len(balance))
	for _, b := range balance {
		balanceByYear[dateYear(b.Date)] = b
	}
	cashFlowByYear := make(map[int]fmpCashFlow, len(cashFlow))
	for _, cf := range cashFlow {
		cashFlowByYear[dateYear(cf.Date)] = cf
	}

	// Close prices arrive newest first; keep the latest close per year.
	priceByYear := make(map[int]float64)
	for _, p := range prices.Historical {
		year := dateYear(p.Date)
		if _, ok := priceByYear[year]; !ok {
			priceByYear[year] = p.Close
		}
	}
	dividendByYear := make(map[int]float64)
	for _, d := range dividends.Historical {
		dividendByYear[dateYear(d.Date)] += d.Dividend
	}

	financials := make([]model.YearlyFinancials, 0, len(income))
	for _, inc := range income {
		year := dateYear(inc.Date)
		b := balanceByYear[year]
		cf := cashFlowByYear[year]
		financials = append(financials, model.YearlyFinancials{
			Year:              year,
			StockPrice:        priceByYear[year],
			SharesOutstanding: inc.WeightedShs,
			DividendPerShare:  dividendByYear[year],
			Revenue:           inc.Revenue,
			NetIncome:         inc.NetIncome,
			EBITDA:            inc.EBITDA,
			TotalAssets:       b.TotalAssets,
			TotalEquity:       b.TotalEquity,
			TotalDebt:         b.ShortTermDebt + b.LongTermDebt,
			OperatingCashFlow: cf.OperatingCashFlow,
		})
	}

	// Most recent fiscal year first.
	sort.Slice(financials, func(i, j int) bool { return financials[i].Year > financials[j].Year })

	zap.L().Debug("fmp: merged financials",
		zap.String("ticker", ticker),
		zap.Int("years", len(financials)),
	)
	return financials, nil
}

// Estimates implements Provider. FMP reports growth in percent; it is
// converted to a decimal here.
func (c *FMPClient) Estimates(ctx context.Context, ticker string) (model.Estimates, error) {
	var estimates []fmpEstimate
	if err := c.http.GetJSON(ctx, c.endpoint("analyst-estimates/"+url.PathEscape(ticker), nil), &estimates); err != nil {
		return model.Estimates{}, eris.Wrap(err, "fmp: fetch estimates")
	}
	if len(estimates) == 0 {
		return model.Estimates{}, eris.Errorf("fmp: no estimates for %s", ticker)
	}
	e := estimates[0]
	return model.Estimates{
		NextYearEPS:        e.EstimatedEpsAvg,
		LongTermGrowthRate: e.EstimatedGrowthRate / 100,
		TargetPrice:        e.TargetPriceAvg,
	}, nil
}

// Benchmark implements Provider. Yearly index returns are computed from
// the first and last close within each calendar year; years with a single
// observation are skipped. The CAPM scalars are left for Normalize.
func (c *FMPClient) Benchmark(ctx context.Context) (model.BenchmarkSeries, error) {
	var history fmpPriceHistory
	params := url.Values{"serietype": {"line"}}
	if err := c.http.GetJSON(ctx, c.endpoint("historical-price-full/"+url.PathEscape(benchmarkSymbol), params), &history); err != nil {
		return model.BenchmarkSeries{}, eris.Wrap(err, "fmp: fetch benchmark")
	}

	type span struct {
		first, last float64 // earliest and latest close in the year
		count       int
	}
	spans := make(map[int]*span)
	// History arrives newest first, so the first close seen per year is
	// the latest and the final one is the earliest.
	for _, p := range history.Historical {
		year := dateYear(p.Date)
		s, ok := spans[year]
		if !ok {
			s = &span{last: p.Close}
			spans[year] = s
		}
		s.first = p.Close
		s.count++
	}

	years := make([]int, 0, len(spans))
	for year := range spans {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if len(years) > c.years {
		years = years[:c.years]
	}

	var series model.BenchmarkSeries
	for _, year := range years {
		s := spans[year]
		if s.count < 2 || s.first == 0 {
			continue
		}
		series.MarketIndex = append(series.MarketIndex, model.BenchmarkYear{
			Year:   year,
			Return: (s.last - s.first) / s.first,
		})
	}
	return series, nil
}

// Peers implements Provider. The peer list comes from the stock-peers
// endpoint; each peer's ratio snapshot is fetched concurrently from
// ratios-ttm. Peers whose lookups fail are skipped.
func (c *FMPClient) Peers(ctx context.Context, ticker string) ([]model.PeerRecord, error) {
	var peers []fmpPeers
	params := url.Values{"symbol": {ticker}}
	if err := c.http.GetJSON(ctx, c.endpoint("stock-peers", params), &peers); err != nil {
		return nil, eris.Wrap(err, "fmp: fetch peer list")
	}
	if len(peers) == 0 || len(peers[0].PeersList) == 0 {
		return nil, eris.Errorf("fmp: no peers for %s", ticker)
	}

	symbols := peers[0].PeersList
	if len(symbols) > c.peers {
		symbols = symbols[:c.peers]
	}

	records := make([]model.PeerRecord, len(symbols))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, symbol := range symbols {
		eg.Go(func() error {
			record, err := c.peerRecord(gCtx, symbol)
			if err != nil {
				zap.L().Debug("fmp: skipping peer",
					zap.String("peer", symbol),
					zap.Error(err),
				)
				return nil
			}
			records[i] = record
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]model.PeerRecord, 0, len(records))
	for _, r := range records {
		if r.Ticker != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, eris.Errorf("fmp: no peer metrics for %s", ticker)
	}
	return out, nil
}

// peerRecord fetches one peer's name and TTM ratio snapshot.
func (c *FMPClient) peerRecord(ctx context.Context, symbol string) (model.PeerRecord, error) {
	name := symbol
	var profiles []fmpProfile
	if err := c.http.GetJSON(ctx, c.endpoint("profile/"+url.PathEscape(symbol), nil), &profiles); err == nil && len(profiles) > 0 {
		name = profiles[0].CompanyName
	}

	var ratios []fmpRatiosTTM
	if err := c.http.GetJSON(ctx, c.endpoint("ratios-ttm/"+url.PathEscape(symbol), nil), &ratios); err != nil {
		return model.PeerRecord{}, eris.Wrap(err, "fmp: fetch peer ratios")
	}
	if len(ratios) == 0 {
		return model.PeerRecord{}, eris.Errorf("fmp: no ratios for %s", symbol)
	}
	r := ratios[0]

	return model.PeerRecord{
		Name:   name,
		Ticker: symbol,
		CurrentMetrics: map[string]float64{
			"peRatio":        r.PriceEarningsRatioTTM,
			"priceToSales":   r.PriceSalesRatioTTM,
			"priceToBook":    r.PriceToBookRatioTTM,
			"evToEbitda":     r.EnterpriseValueMultipleTTM,
			"debtToEquity":   r.DebtEquityRatioTTM,
			"returnOnEquity": r.ReturnOnEquityTTM,
			"returnOnAssets": r.ReturnOnAssetsTTM,
			"netMargin":      r.NetProfitMarginTTM,
			"revenueGrowth":  r.RevenueGrowthTTMYoy,
		},
	}, nil
}
