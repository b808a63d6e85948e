package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
)

const (
	yahooChartBase   = "https://query1.finance.yahoo.com"
	yahooSummaryBase = "https://query2.finance.yahoo.com"
	yahooModules     = "price,summaryProfile,summaryDetail,defaultKeyStatistics,financialData"
)

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	ChartURL   string
	SummaryURL string
	SymbolMap  map[string]string // maps internal symbol to Yahoo ticker
	http       *httpClient
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts HTTPOptions, m *metrics.Metrics) *YahooFetcher {
	return &YahooFetcher{
		ChartURL:   yahooChartBase,
		SummaryURL: yahooSummaryBase,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX100": "^NDX",
			"DJI":    "^DJI",
		},
		http: newHTTPClient(opts, m),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// FetchDailyBars loads daily bars from the chart API. Null bars are skipped,
// bars are sorted ascending and a repeated trading day keeps its last entry.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, rng Range) ([]model.OHLCV, error) {
	if !rng.Valid() {
		rng = Range1Y
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.ChartURL, url.PathEscape(f.yahooSymbol(symbol)), rng)

	body, err := f.http.get(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", classifyStatus(err))
	}
	bars, err := parseYahooChart(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	return bars, nil
}

func parseYahooChart(body []byte) ([]model.OHLCV, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if desc := root.Get("chart.error.description"); desc.Exists() && desc.String() != "" {
		if strings.Contains(strings.ToLower(desc.String()), "no data found") {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, desc.String())
		}
		return nil, fmt.Errorf("api error: %s", desc.String())
	}

	result := root.Get("chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("%w: no data returned", ErrUnknownSymbol)
	}
	offset := result.Get("meta.gmtoffset").Int()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	at := func(values []gjson.Result, i int) (float64, bool) {
		if i >= len(values) || values[i].Type != gjson.Number {
			return 0, false
		}
		v := values[i].Float()
		return v, v > 0 && !math.IsInf(v, 0)
	}

	byDay := make(map[time.Time]model.OHLCV, len(timestamps))
	for i, ts := range timestamps {
		o, ok1 := at(opens, i)
		h, ok2 := at(highs, i)
		l, ok3 := at(lows, i)
		c, ok4 := at(closes, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // skip null bars (holidays etc.)
		}
		var vol int64
		if i < len(volumes) && volumes[i].Type == gjson.Number {
			vol = max(volumes[i].Int(), 0)
		}
		day := tradingDay(ts.Int(), offset)
		byDay[day] = normalizeBar(model.OHLCV{Time: day, Open: o, High: h, Low: l, Close: c, Volume: vol})
	}
	if len(byDay) == 0 {
		return nil, fmt.Errorf("%w: only null bars returned", ErrUnknownSymbol)
	}

	bars := make([]model.OHLCV, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// tradingDay maps a bar timestamp to midnight UTC of its exchange-local date.
func tradingDay(unix, gmtOffset int64) time.Time {
	t := time.Unix(unix+gmtOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// normalizeBar widens high/low to contain open and close; providers
// occasionally report adjusted closes just outside the raw range.
func normalizeBar(b model.OHLCV) model.OHLCV {
	b.High = math.Max(b.High, math.Max(b.Open, b.Close))
	b.Low = math.Min(b.Low, math.Min(b.Open, b.Close))
	return b
}

// FetchFundamentals loads the company profile and ratios from quoteSummary.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		f.SummaryURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(yahooModules))

	body, err := f.http.get(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo fundamentals: %w", classifyStatus(err))
	}
	fund, err := parseYahooSummary(symbol, body)
	if err != nil {
		return nil, fmt.Errorf("yahoo fundamentals %s: %w", symbol, err)
	}
	return fund, nil
}

func parseYahooSummary(symbol string, body []byte) (*model.Fundamentals, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if desc := root.Get("quoteSummary.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, desc.String())
	}
	res := root.Get("quoteSummary.result.0")
	if !res.Exists() {
		return nil, fmt.Errorf("%w: empty quoteSummary", ErrUnknownSymbol)
	}

	f := &model.Fundamentals{
		Symbol:   symbol,
		LongName: optString(res, "price.longName", "price.shortName"),
		Currency: optString(res, "price.currency", "financialData.financialCurrency"),
		Sector:   optString(res, "summaryProfile.sector"),
		Industry: optString(res, "summaryProfile.industry"),
		Country:  optString(res, "summaryProfile.country"),
		Website:  optString(res, "summaryProfile.website"),
		Summary:  optString(res, "summaryProfile.longBusinessSummary"),

		CurrentPrice:     optFloat(res, "financialData.currentPrice", "price.regularMarketPrice"),
		PreviousClose:    optFloat(res, "summaryDetail.previousClose"),
		Open:             optFloat(res, "summaryDetail.open"),
		DayLow:           optFloat(res, "summaryDetail.dayLow"),
		DayHigh:          optFloat(res, "summaryDetail.dayHigh"),
		FiftyTwoWeekLow:  optFloat(res, "summaryDetail.fiftyTwoWeekLow"),
		FiftyTwoWeekHigh: optFloat(res, "summaryDetail.fiftyTwoWeekHigh"),
		MarketCap:        optFloat(res, "summaryDetail.marketCap", "price.marketCap"),
		Beta:             optFloat(res, "summaryDetail.beta", "defaultKeyStatistics.beta"),

		TrailingPE:     optFloat(res, "summaryDetail.trailingPE"),
		ForwardPE:      optFloat(res, "summaryDetail.forwardPE", "defaultKeyStatistics.forwardPE"),
		PriceToSales:   optFloat(res, "summaryDetail.priceToSalesTrailing12Months"),
		PriceToBook:    optFloat(res, "defaultKeyStatistics.priceToBook"),
		ReturnOnEquity: optFloat(res, "financialData.returnOnEquity"),
		ReturnOnAssets: optFloat(res, "financialData.returnOnAssets"),
		CurrentRatio:   optFloat(res, "financialData.currentRatio"),
		QuickRatio:     optFloat(res, "financialData.quickRatio"),
		TrailingEPS:    optFloat(res, "defaultKeyStatistics.trailingEps"),
		RevenueGrowth:  optFloat(res, "financialData.revenueGrowth"),
		DividendYield:  optFloat(res, "summaryDetail.dividendYield"),
		PayoutRatio:    optFloat(res, "summaryDetail.payoutRatio"),
		FreeCashflow:   optFloat(res, "financialData.freeCashflow"),
	}
	// Yahoo reports debt/equity as a percentage.
	if de := optFloat(res, "financialData.debtToEquity"); de != nil {
		f.DebtToEquity = model.Float(*de / 100)
	}
	return f, nil
}

// optFloat returns the first numeric value among paths. Yahoo wraps numbers
// as {"raw": 1.2, "fmt": "1.20"}; plain numbers are accepted too.
func optFloat(res gjson.Result, paths ...string) *float64 {
	for _, p := range paths {
		v := res.Get(p)
		if v.IsObject() {
			v = v.Get("raw")
		}
		if v.Type == gjson.Number {
			f := v.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			return &f
		}
	}
	return nil
}

func optString(res gjson.Result, paths ...string) *string {
	for _, p := range paths {
		if v := res.Get(p); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			s := strings.TrimSpace(v.String())
			return &s
		}
	}
	return nil
}

// classifyStatus maps a 404 to ErrUnknownSymbol.
func classifyStatus(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrUnknownSymbol, err)
	}
	return err
}
