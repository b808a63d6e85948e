package collector

import (
	"context"
	"math"
	"sync"
	"time"

	"TickerLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price        float64
	End          time.Time // last bar date; zero means today
	DailyData    []model.OHLCV
	Fundamentals *model.Fundamentals
	BarsErr      error
	FundErr      error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, _ string, rng Range) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return generateMockBars(m.Price, rng.TradingDays(), end), nil
}

func (m *MockFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FundErr != nil {
		return nil, m.FundErr
	}
	if m.Fundamentals != nil {
		f := *m.Fundamentals
		return &f, nil
	}
	return &model.Fundamentals{
		Symbol:        symbol,
		LongName:      model.String(symbol + " Holdings Inc."),
		Sector:        model.String("Technology"),
		Industry:      model.String("Software"),
		Currency:      model.String("USD"),
		CurrentPrice:  model.Float(m.Price),
		PreviousClose: model.Float(m.Price * 0.99),
		MarketCap:     model.Float(m.Price * 1e9),
		Beta:          model.Float(1.1),
		TrailingPE:    model.Float(18),
		PriceToBook:   model.Float(2.2),
		DebtToEquity:  model.Float(0.4),
		TrailingEPS:   model.Float(m.Price / 18),
		FreeCashflow:  model.Float(5e9),
	}, nil
}

// MockNewsFetcher returns fixed headlines and records the queries it served.
type MockNewsFetcher struct {
	Articles []model.Article // nil means a built-in mixed set
	Err      error

	mu      sync.Mutex
	queries []string
}

func (m *MockNewsFetcher) Name() string { return "mock" }

func (m *MockNewsFetcher) FetchHeadlines(ctx context.Context, query string) ([]model.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Articles != nil {
		return append([]model.Article(nil), m.Articles...), nil
	}
	return []model.Article{
		{Title: query + " shares rally after excellent quarterly results", URL: "https://news.example.com/1", Source: "Example Wire"},
		{Title: query + " faces lawsuit over product delays", URL: "https://news.example.com/2", Source: "Example Wire"},
		{Title: query + " to hold annual meeting in May", URL: "https://news.example.com/3", Source: "Example Daily"},
	}, nil
}

// Queries returns the queries served so far.
func (m *MockNewsFetcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// generateMockBars draws a gentle uptrend with a sine wave on top so every
// indicator has something to react to. Output depends only on the arguments.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.03*math.Sin(float64(i)/9))
		o := p * (1 - 0.004*math.Cos(float64(i)/3))
		bars[i] = model.OHLCV{
			Time:   last.AddDate(0, 0, -(count - 1 - i)),
			Open:   o,
			High:   math.Max(o, p) * 1.005,
			Low:    math.Min(o, p) * 0.995,
			Close:  p,
			Volume: 1000000 + int64(i%10)*25000,
		}
	}
	return bars
}
