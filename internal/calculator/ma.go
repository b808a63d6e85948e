package calculator

import (
	"fmt"

	"TickerLens/internal/model"
)

// SMA computes the simple moving average of closing prices over window.
// A window longer than the series yields an all-NaN series rather than an error.
func SMA(series model.PriceSeries, window int) (model.IndicatorSeries, error) {
	if err := checkWindow("SMA window", window); err != nil {
		return model.IndicatorSeries{}, err
	}
	if err := Validate(series); err != nil {
		return model.IndicatorSeries{}, err
	}
	out := model.NewIndicatorSeries(fmt.Sprintf("SMA_%d", window), series.Times())
	if window > series.Len() {
		return out, nil
	}
	out.Values = rollingMean(series.Closes(), window)
	return out, nil
}

// EMA computes the exponential moving average of closing prices.
// The first value equals the first close, so the series has no undefined prefix.
func EMA(series model.PriceSeries, span int) (model.IndicatorSeries, error) {
	if err := checkWindow("EMA span", span); err != nil {
		return model.IndicatorSeries{}, err
	}
	if err := Validate(series); err != nil {
		return model.IndicatorSeries{}, err
	}
	return model.IndicatorSeries{
		Name:   fmt.Sprintf("EMA_%d", span),
		Times:  series.Times(),
		Values: emaValues(series.Closes(), span),
	}, nil
}
