package calculator

import (
	"errors"
	"fmt"
	"math"

	"TickerLens/internal/model"
)

const (
	TradingDaysPerYear  = 252
	TradingDaysPerMonth = 22
)

// TrailingRange scans the most recent bars and returns the highest high and
// lowest low. Shorter series are scanned in full.
func TrailingRange(series model.PriceSeries, bars int) (high, low float64, err error) {
	if err := checkWindow("range length", bars); err != nil {
		return 0, 0, err
	}
	if len(series.Bars) == 0 {
		return 0, 0, fmt.Errorf("%w: no daily bars provided", ErrInvalidInput)
	}
	n := len(series.Bars)
	start := max(n-bars, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		high = math.Max(high, series.Bars[i].High)
		low = math.Min(low, series.Bars[i].Low)
	}
	return high, low, nil
}

// Calculate52WeekRange returns the high and low of the last 252 trading days.
func Calculate52WeekRange(series model.PriceSeries) (high, low float64, err error) {
	return TrailingRange(series, TradingDaysPerYear)
}

// Calculate30DayRange returns the high and low of the last 22 trading days.
func Calculate30DayRange(series model.PriceSeries) (high, low float64, err error) {
	return TrailingRange(series, TradingDaysPerMonth)
}

// CalculatePosition returns where current sits within [low, high] (0.0~1.0).
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
