package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON bar API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	http    *httpClient
}

// NewRESTFetcher creates a fetcher for {baseURL}/api/v1/bars/daily.
func NewRESTFetcher(baseURL, apiKey string, opts HTTPOptions, m *metrics.Metrics) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		http:    newHTTPClient(opts, m),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, rng Range) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("limit", fmt.Sprint(rng.TradingDays()))
	endpoint := f.BaseURL + "/api/v1/bars/daily?" + q.Encode()

	header := http.Header{}
	if f.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.APIKey)
	}
	body, err := f.http.get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", classifyStatus(err))
	}

	var raw []restBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("fetch bars: %w: empty response for %s", ErrUnknownSymbol, symbol)
	}

	byDay := make(map[time.Time]model.OHLCV, len(raw))
	for _, rb := range raw {
		day := tradingDay(rb.Timestamp, 0)
		byDay[day] = normalizeBar(model.OHLCV{
			Time:   day,
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: int64(rb.Volume),
		})
	}
	bars := make([]model.OHLCV, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// FetchFundamentals is not offered by the bar API.
func (f *RESTFetcher) FetchFundamentals(_ context.Context, symbol string) (*model.Fundamentals, error) {
	return nil, fmt.Errorf("rest fundamentals for %s: %w", symbol, ErrNotSupported)
}
