package model

import (
	"encoding/json"
	"math"
	"time"
)

// IndicatorSeries is a derived series aligned one-to-one with a PriceSeries.
// Positions without enough history hold NaN.
type IndicatorSeries struct {
	Name   string
	Times  []time.Time
	Values []float64
}

// NewIndicatorSeries allocates an all-NaN series aligned with times.
func NewIndicatorSeries(name string, times []time.Time) IndicatorSeries {
	values := make([]float64, len(times))
	for i := range values {
		values[i] = math.NaN()
	}
	return IndicatorSeries{Name: name, Times: times, Values: values}
}

func (s IndicatorSeries) Len() int { return len(s.Values) }

// Defined reports whether index i holds a value.
func (s IndicatorSeries) Defined(i int) bool {
	return i >= 0 && i < len(s.Values) && !math.IsNaN(s.Values[i])
}

// Last returns the most recent defined value.
func (s IndicatorSeries) Last() (float64, bool) {
	for i := len(s.Values) - 1; i >= 0; i-- {
		if !math.IsNaN(s.Values[i]) {
			return s.Values[i], true
		}
	}
	return math.NaN(), false
}

type seriesPoint struct {
	Time  time.Time `json:"t"`
	Value *float64  `json:"v"`
}

// MarshalJSON writes undefined values as null.
func (s IndicatorSeries) MarshalJSON() ([]byte, error) {
	points := make([]seriesPoint, len(s.Values))
	for i, v := range s.Values {
		points[i].Time = s.Times[i]
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			val := v
			points[i].Value = &val
		}
	}
	return json.Marshal(struct {
		Name   string        `json:"name"`
		Points []seriesPoint `json:"points"`
	}{Name: s.Name, Points: points})
}

// IndicatorSet holds every series computed for one analysis.
type IndicatorSet struct {
	SMAFast     IndicatorSeries `json:"sma_fast"`
	SMASlow     IndicatorSeries `json:"sma_slow"`
	EMA         IndicatorSeries `json:"ema"`
	RSI         IndicatorSeries `json:"rsi"`
	MACD        IndicatorSeries `json:"macd"`
	MACDSignal  IndicatorSeries `json:"macd_signal"`
	MACDHist    IndicatorSeries `json:"macd_hist"`
	BBUpper     IndicatorSeries `json:"bb_upper"`
	BBMiddle    IndicatorSeries `json:"bb_middle"`
	BBLower     IndicatorSeries `json:"bb_lower"`
	StochasticK IndicatorSeries `json:"stoch_k"`
	StochasticD IndicatorSeries `json:"stoch_d"`
}

// TechnicalSnapshot holds the latest value of each indicator.
// Fields are NaN when the indicator has no defined value yet.
type TechnicalSnapshot struct {
	CurrentPrice float64 `json:"current_price"`
	SMAFast      float64 `json:"sma_fast"`
	SMASlow      float64 `json:"sma_slow"`
	EMA          float64 `json:"ema"`
	RSI          float64 `json:"rsi"`
	MACD         float64 `json:"macd"`
	MACDSignal   float64 `json:"macd_signal"`
	MACDHist     float64 `json:"macd_hist"`
	BBUpper      float64 `json:"bb_upper"`
	BBMiddle     float64 `json:"bb_middle"`
	BBLower      float64 `json:"bb_lower"`
	StochasticK  float64 `json:"stoch_k"`
	StochasticD  float64 `json:"stoch_d"`
	High52w      float64 `json:"high_52w"`
	Low52w       float64 `json:"low_52w"`
	High30d      float64 `json:"high_30d"`
	Low30d       float64 `json:"low_30d"`
	Position52w  float64 `json:"position_52w"` // 0.0 ~ 1.0
}

// MarshalJSON writes NaN fields as null.
func (s TechnicalSnapshot) MarshalJSON() ([]byte, error) {
	fields := map[string]float64{
		"current_price": s.CurrentPrice,
		"sma_fast":      s.SMAFast,
		"sma_slow":      s.SMASlow,
		"ema":           s.EMA,
		"rsi":           s.RSI,
		"macd":          s.MACD,
		"macd_signal":   s.MACDSignal,
		"macd_hist":     s.MACDHist,
		"bb_upper":      s.BBUpper,
		"bb_middle":     s.BBMiddle,
		"bb_lower":      s.BBLower,
		"stoch_k":       s.StochasticK,
		"stoch_d":       s.StochasticD,
		"high_52w":      s.High52w,
		"low_52w":       s.Low52w,
		"high_30d":      s.High30d,
		"low_30d":       s.Low30d,
		"position_52w":  s.Position52w,
	}
	out := make(map[string]*float64, len(fields))
	for k, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = nil
			continue
		}
		val := v
		out[k] = &val
	}
	return json.Marshal(out)
}

// Analysis is the result of one ticker request.
type Analysis struct {
	Symbol       string            `json:"symbol"`
	Source       string            `json:"source"`
	FetchedAt    time.Time         `json:"fetched_at"`
	Series       PriceSeries       `json:"-"`
	Fundamentals *Fundamentals     `json:"fundamentals,omitempty"`
	Indicators   IndicatorSet      `json:"indicators"`
	Snapshot     TechnicalSnapshot `json:"snapshot"`
	Warnings     []string          `json:"warnings,omitempty"`
}
