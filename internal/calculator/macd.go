package calculator

import (
	"fmt"

	"TickerLens/internal/model"
)

// MACDResult holds the three aligned MACD series.
type MACDResult struct {
	MACD      model.IndicatorSeries
	Signal    model.IndicatorSeries
	Histogram model.IndicatorSeries
}

// MACD computes EMA(fast) - EMA(slow), its signal EMA and the histogram.
// All three are defined from the first bar.
func MACD(series model.PriceSeries, fast, slow, signal int) (MACDResult, error) {
	for _, p := range []struct {
		name string
		v    int
	}{{"MACD fast span", fast}, {"MACD slow span", slow}, {"MACD signal span", signal}} {
		if err := checkWindow(p.name, p.v); err != nil {
			return MACDResult{}, err
		}
	}
	if fast >= slow {
		return MACDResult{}, fmt.Errorf("%w: MACD fast span %d must be shorter than slow span %d", ErrInvalidParameter, fast, slow)
	}
	if err := Validate(series); err != nil {
		return MACDResult{}, err
	}

	closes := series.Closes()
	fastEMA := emaValues(closes, fast)
	slowEMA := emaValues(closes, slow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := emaValues(line, signal)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}

	times := series.Times()
	suffix := fmt.Sprintf("%d_%d_%d", fast, slow, signal)
	return MACDResult{
		MACD:      model.IndicatorSeries{Name: "MACD_" + suffix, Times: times, Values: line},
		Signal:    model.IndicatorSeries{Name: "MACD_SIGNAL_" + suffix, Times: times, Values: sig},
		Histogram: model.IndicatorSeries{Name: "MACD_HIST_" + suffix, Times: times, Values: hist},
	}, nil
}
