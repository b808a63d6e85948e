package calculator

import (
	"fmt"
	"math"

	"TickerLens/internal/model"
)

// StochasticResult holds %K and its smoothed %D.
type StochasticResult struct {
	K model.IndicatorSeries
	D model.IndicatorSeries
}

// Stochastic computes the stochastic oscillator over window bars. %K is
// undefined for the first window-1 bars and a flat range reads 50. %D is the
// simple moving average of %K over smoothing bars.
func Stochastic(series model.PriceSeries, window, smoothing int) (StochasticResult, error) {
	if err := checkWindow("stochastic window", window); err != nil {
		return StochasticResult{}, err
	}
	if err := checkWindow("stochastic smoothing", smoothing); err != nil {
		return StochasticResult{}, err
	}
	if err := Validate(series); err != nil {
		return StochasticResult{}, err
	}

	times := series.Times()
	k := model.NewIndicatorSeries(fmt.Sprintf("STOCH_K_%d", window), times)
	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()
	for i := window - 1; i < len(closes); i++ {
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - window + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			k.Values[i] = 50
			continue
		}
		k.Values[i] = 100 * (closes[i] - lo) / (hi - lo)
	}

	d := model.IndicatorSeries{
		Name:   fmt.Sprintf("STOCH_D_%d_%d", window, smoothing),
		Times:  times,
		Values: rollingMean(k.Values, smoothing),
	}
	return StochasticResult{K: k, D: d}, nil
}
