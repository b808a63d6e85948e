package calculator

import (
	"fmt"
	"math"

	"TickerLens/internal/model"
)

// Params holds the window sizes used when computing a full indicator set.
type Params struct {
	SMAFast        int     `yaml:"sma_fast" json:"sma_fast"`
	SMASlow        int     `yaml:"sma_slow" json:"sma_slow"`
	EMASpan        int     `yaml:"ema_span" json:"ema_span"`
	RSIWindow      int     `yaml:"rsi_window" json:"rsi_window"`
	MACDFast       int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow       int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal     int     `yaml:"macd_signal" json:"macd_signal"`
	BBWindow       int     `yaml:"bb_window" json:"bb_window"`
	BBStdDev       float64 `yaml:"bb_stddev" json:"bb_stddev"`
	StochWindow    int     `yaml:"stoch_window" json:"stoch_window"`
	StochSmoothing int     `yaml:"stoch_smoothing" json:"stoch_smoothing"`
	RSIMethod      string  `yaml:"rsi_method" json:"rsi_method"` // simple or wilder
}

// RSI averaging methods.
const (
	RSISimple = "simple"
	RSIWilder = "wilder"
)

// DefaultParams returns the conventional settings: SMA 50/200, EMA 20,
// RSI 14, MACD 12/26/9, Bollinger 20/2 and Stochastic 14/3.
func DefaultParams() Params {
	return Params{
		SMAFast:        50,
		SMASlow:        200,
		EMASpan:        20,
		RSIWindow:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		BBWindow:       20,
		BBStdDev:       2,
		StochWindow:    14,
		StochSmoothing: 3,
		RSIMethod:      RSISimple,
	}
}

// Validate reports the first parameter that no indicator function would accept.
func (p Params) Validate() error {
	windows := []struct {
		name string
		v    int
	}{
		{"sma_fast", p.SMAFast},
		{"sma_slow", p.SMASlow},
		{"ema_span", p.EMASpan},
		{"rsi_window", p.RSIWindow},
		{"macd_fast", p.MACDFast},
		{"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal},
		{"bb_window", p.BBWindow},
		{"stoch_window", p.StochWindow},
		{"stoch_smoothing", p.StochSmoothing},
	}
	for _, w := range windows {
		if err := checkWindow(w.name, w.v); err != nil {
			return err
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("%w: macd_fast (%d) must be less than macd_slow (%d)", ErrInvalidParameter, p.MACDFast, p.MACDSlow)
	}
	if math.IsNaN(p.BBStdDev) || math.IsInf(p.BBStdDev, 0) || p.BBStdDev < 0 {
		return fmt.Errorf("%w: bb_stddev must be a non-negative number, got %v", ErrInvalidParameter, p.BBStdDev)
	}
	switch p.RSIMethod {
	case "", RSISimple:
	case RSIWilder:
		if p.RSIWindow < 2 {
			return fmt.Errorf("%w: rsi_window must be at least 2 for the wilder method, got %d", ErrInvalidParameter, p.RSIWindow)
		}
	default:
		return fmt.Errorf("%w: rsi_method must be %q or %q, got %q", ErrInvalidParameter, RSISimple, RSIWilder, p.RSIMethod)
	}
	return nil
}

// ComputeRSI dispatches to RSI or WilderRSI according to RSIMethod.
func (p Params) ComputeRSI(series model.PriceSeries) (model.IndicatorSeries, error) {
	if p.RSIMethod == RSIWilder {
		return WilderRSI(series, p.RSIWindow)
	}
	return RSI(series, p.RSIWindow)
}
