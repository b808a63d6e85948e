package calculator

import (
	"fmt"
	"math"

	"TickerLens/internal/model"
)

// BollingerResult holds the upper, middle and lower bands.
type BollingerResult struct {
	Upper  model.IndicatorSeries
	Middle model.IndicatorSeries
	Lower  model.IndicatorSeries
}

// BollingerBands computes SMA(window) +/- k population standard deviations.
// Bands are undefined wherever the SMA is.
func BollingerBands(series model.PriceSeries, window int, k float64) (BollingerResult, error) {
	if err := checkWindow("Bollinger window", window); err != nil {
		return BollingerResult{}, err
	}
	if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
		return BollingerResult{}, fmt.Errorf("%w: Bollinger multiplier must be a non-negative number, got %v", ErrInvalidParameter, k)
	}
	middle, err := SMA(series, window)
	if err != nil {
		return BollingerResult{}, err
	}

	times := series.Times()
	suffix := fmt.Sprintf("%d_%g", window, k)
	middle.Name = "BB_MIDDLE_" + suffix
	upper := model.NewIndicatorSeries("BB_UPPER_"+suffix, times)
	lower := model.NewIndicatorSeries("BB_LOWER_"+suffix, times)

	closes := series.Closes()
	for i, mean := range middle.Values {
		if math.IsNaN(mean) {
			continue
		}
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		width := k * math.Sqrt(variance/float64(window))
		upper.Values[i] = mean + width
		lower.Values[i] = mean - width
	}
	return BollingerResult{Upper: upper, Middle: middle, Lower: lower}, nil
}

// PercentB returns where price sits between the bands: 0 at the lower band,
// 1 at the upper. Collapsed bands give 0.5.
func PercentB(price, upper, lower float64) float64 {
	if math.IsNaN(upper) || math.IsNaN(lower) {
		return math.NaN()
	}
	if upper == lower {
		return 0.5
	}
	return (price - lower) / (upper - lower)
}
