package collector

import (
	"context"
	"errors"

	"TickerLens/internal/model"
)

var (
	// ErrNotSupported is returned when a provider cannot serve a request kind.
	ErrNotSupported = errors.New("not supported by provider")
	// ErrUnknownSymbol is returned when the provider has no data for a symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrProvider wraps every failure to obtain price history from a provider.
	ErrProvider = errors.New("data provider error")
	// ErrInvalidSymbol is returned for an empty or malformed ticker.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, rng Range) ([]model.OHLCV, error)
	FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
	Name() string
}

// Range is a lookback window for daily history, in provider notation.
type Range string

const (
	Range1M Range = "1mo"
	Range3M Range = "3mo"
	Range6M Range = "6mo"
	Range1Y Range = "1y"
	Range2Y Range = "2y"
	Range5Y Range = "5y"
)

var rangeDays = map[Range]int{
	Range1M: 22,
	Range3M: 66,
	Range6M: 126,
	Range1Y: 252,
	Range2Y: 504,
	Range5Y: 1260,
}

// Valid reports whether r is one of the known ranges.
func (r Range) Valid() bool {
	_, ok := rangeDays[r]
	return ok
}

// TradingDays approximates the number of daily bars the range covers.
func (r Range) TradingDays() int {
	if d, ok := rangeDays[r]; ok {
		return d
	}
	return rangeDays[Range1Y]
}
