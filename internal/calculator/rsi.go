package calculator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"TickerLens/internal/model"
)

// RSI computes the relative strength index from simple rolling means of the
// last window gains and losses. The first window bars are undefined.
// A window with losses but no gains gives 0, gains but no losses gives 100,
// and a flat window gives 50.
func RSI(series model.PriceSeries, window int) (model.IndicatorSeries, error) {
	if err := checkWindow("RSI window", window); err != nil {
		return model.IndicatorSeries{}, err
	}
	if err := Validate(series); err != nil {
		return model.IndicatorSeries{}, err
	}
	out := model.NewIndicatorSeries(fmt.Sprintf("RSI_%d", window), series.Times())
	closes := series.Closes()
	for i := window; i < len(closes); i++ {
		var gain, loss float64
		for j := i - window + 1; j <= i; j++ {
			delta := closes[j] - closes[j-1]
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}
		out.Values[i] = rsiFromAverages(gain/float64(window), loss/float64(window))
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// WilderRSI computes RSI with Wilder's smoothing using TA-Lib. Output is
// aligned to the input with the first window bars undefined, and a series
// with no price movement so far reads 50. The window must be at least 2.
func WilderRSI(series model.PriceSeries, window int) (model.IndicatorSeries, error) {
	if window < 2 {
		return model.IndicatorSeries{}, fmt.Errorf("%w: Wilder RSI window must be at least 2, got %d", ErrInvalidParameter, window)
	}
	if err := Validate(series); err != nil {
		return model.IndicatorSeries{}, err
	}
	out := model.NewIndicatorSeries(fmt.Sprintf("WILDER_RSI_%d", window), series.Times())
	closes := series.Closes()
	if len(closes) <= window {
		return out, nil
	}

	raw := talib.Rsi(closes, window)
	flat := true
	for i := 1; i < len(closes); i++ {
		if closes[i] != closes[i-1] {
			flat = false
		}
		if i < window {
			continue
		}
		v := raw[i]
		if flat {
			v = 50
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Values[i] = v
	}
	return out, nil
}
