package calculator

import (
	"errors"
	"fmt"
	"math"

	"TickerLens/internal/model"
)

var (
	// ErrInvalidInput reports an empty or malformed price series.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidParameter reports a non-positive or nonsensical window, span or multiplier.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Validate checks that the series is non-empty, strictly ascending in time
// and that every bar holds finite, positive, self-consistent prices.
func Validate(series model.PriceSeries) error {
	if len(series.Bars) == 0 {
		return fmt.Errorf("%w: empty price series", ErrInvalidInput)
	}
	for i, b := range series.Bars {
		if i > 0 && !b.Time.After(series.Bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d at %s does not follow %s", ErrInvalidInput,
				i, b.Time.Format("2006-01-02"), series.Bars[i-1].Time.Format("2006-01-02"))
		}
		for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return fmt.Errorf("%w: bar %d has non-positive or non-finite price", ErrInvalidInput, i)
			}
		}
		if b.Low > math.Min(b.Open, b.Close) || b.High < math.Max(b.Open, b.Close) {
			return fmt.Errorf("%w: bar %d low/high do not bound open/close", ErrInvalidInput, i)
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: bar %d has negative volume", ErrInvalidInput, i)
		}
	}
	return nil
}

func checkWindow(name string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParameter, name, n)
	}
	return nil
}

// rollingMean returns the trailing mean of values over window. Positions
// before the first full window, or whose window contains NaN, are NaN.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// emaValues applies exponential weighting with alpha = 2/(span+1), seeded
// with the first value.
func emaValues(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
