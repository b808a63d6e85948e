package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerLens/internal/model"
)

var epoch = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// seriesFromCloses builds bars whose open, high and low all equal the close.
func seriesFromCloses(closes ...float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   epoch.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return model.PriceSeries{Symbol: "TEST", Bars: bars}
}

// wavySeries produces bars with a real intraday range and mixed direction.
func wavySeries(n int) model.PriceSeries {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + 10*math.Sin(float64(i)/5) + float64(i%7)
		o := c - math.Cos(float64(i))
		bars[i] = model.OHLCV{
			Time:   epoch.AddDate(0, 0, i),
			Open:   o,
			High:   math.Max(o, c) + 1.5,
			Low:    math.Min(o, c) - 1.25,
			Close:  c,
			Volume: int64(1000 + i),
		}
	}
	return model.PriceSeries{Symbol: "WAVE", Bars: bars}
}

func linearSeries(n int) model.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	return seriesFromCloses(closes...)
}

func countNaNPrefix(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			break
		}
		n++
	}
	return n
}

func TestValidate(t *testing.T) {
	good := seriesFromCloses(1, 2, 3)
	require.NoError(t, Validate(good))

	tests := []struct {
		name   string
		mutate func(s *model.PriceSeries)
	}{
		{"empty", func(s *model.PriceSeries) { s.Bars = nil }},
		{"duplicate timestamp", func(s *model.PriceSeries) { s.Bars[1].Time = s.Bars[0].Time }},
		{"descending timestamp", func(s *model.PriceSeries) { s.Bars[2].Time = epoch.AddDate(0, 0, -1) }},
		{"NaN close", func(s *model.PriceSeries) { s.Bars[1].Close = math.NaN() }},
		{"infinite high", func(s *model.PriceSeries) { s.Bars[1].High = math.Inf(1) }},
		{"high below low", func(s *model.PriceSeries) { s.Bars[1].High = 1; s.Bars[1].Low = 3 }},
		{"zero price", func(s *model.PriceSeries) { s.Bars[0].Open = 0 }},
		{"negative volume", func(s *model.PriceSeries) { s.Bars[0].Volume = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seriesFromCloses(1, 2, 3)
			tt.mutate(&s)
			assert.ErrorIs(t, Validate(s), ErrInvalidInput)
		})
	}
}

func TestSMA_Scenario(t *testing.T) {
	s := seriesFromCloses(10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
	sma, err := SMA(s, 5)
	require.NoError(t, err)
	require.Equal(t, s.Len(), sma.Len())

	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(sma.Values[i]), "index %d should be undefined", i)
	}
	assert.Equal(t, 12.0, sma.Values[4])
	assert.Equal(t, 18.0, sma.Values[10])
	assert.Equal(t, s.Times(), sma.Times)
}

func TestSMA_WindowLongerThanSeries(t *testing.T) {
	s := seriesFromCloses(1, 2, 3)
	sma, err := SMA(s, 5)
	require.NoError(t, err)
	require.Equal(t, 3, sma.Len())
	for _, v := range sma.Values {
		assert.True(t, math.IsNaN(v))
	}
	_, ok := sma.Last()
	assert.False(t, ok)
}

func TestSMA_WindowOneIsIdentity(t *testing.T) {
	s := wavySeries(40)
	sma, err := SMA(s, 1)
	require.NoError(t, err)
	assert.Equal(t, s.Closes(), sma.Values)
}

func TestSMA_InvalidWindow(t *testing.T) {
	_, err := SMA(seriesFromCloses(1, 2), 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SMA(seriesFromCloses(1, 2), -3)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSMA_RejectsInvalidSeries(t *testing.T) {
	_, err := SMA(model.PriceSeries{}, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEMA_SeededWithFirstClose(t *testing.T) {
	s := seriesFromCloses(10, 20, 30)
	ema, err := EMA(s, 3)
	require.NoError(t, err)
	// alpha = 0.5
	assert.Equal(t, []float64{10, 15, 22.5}, ema.Values)

	_, err = EMA(s, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRSI_ConstantSeriesIsFifty(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	rsi, err := RSI(seriesFromCloses(closes...), 14)
	require.NoError(t, err)
	assert.Equal(t, 14, countNaNPrefix(rsi.Values))
	for i := 14; i < rsi.Len(); i++ {
		assert.Equal(t, 50.0, rsi.Values[i])
	}
}

func TestRSI_Extremes(t *testing.T) {
	up, err := RSI(linearSeries(20), 5)
	require.NoError(t, err)
	last, ok := up.Last()
	require.True(t, ok)
	assert.Equal(t, 100.0, last)

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(200 - i)
	}
	down, err := RSI(seriesFromCloses(closes...), 5)
	require.NoError(t, err)
	last, ok = down.Last()
	require.True(t, ok)
	assert.Equal(t, 0.0, last)
}

func TestRSI_KnownValue(t *testing.T) {
	// deltas: +2 -1 +2 -1, avg gain 1, avg loss 0.5, RS 2
	rsi, err := RSI(seriesFromCloses(10, 12, 11, 13, 12), 4)
	require.NoError(t, err)
	assert.InDelta(t, 100-100.0/3, rsi.Values[4], 1e-12)
}

func TestRSI_BoundedAndShortSeries(t *testing.T) {
	rsi, err := RSI(wavySeries(120), 14)
	require.NoError(t, err)
	for i := 14; i < rsi.Len(); i++ {
		assert.GreaterOrEqual(t, rsi.Values[i], 0.0)
		assert.LessOrEqual(t, rsi.Values[i], 100.0)
	}

	short, err := RSI(seriesFromCloses(1, 2, 3), 14)
	require.NoError(t, err)
	assert.Equal(t, 3, countNaNPrefix(short.Values))
}

func TestWilderRSI(t *testing.T) {
	s := wavySeries(80)
	rsi, err := WilderRSI(s, 14)
	require.NoError(t, err)
	require.Equal(t, s.Len(), rsi.Len())
	assert.Equal(t, 14, countNaNPrefix(rsi.Values))
	for i := 14; i < rsi.Len(); i++ {
		assert.GreaterOrEqual(t, rsi.Values[i], 0.0)
		assert.LessOrEqual(t, rsi.Values[i], 100.0)
	}

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 42
	}
	flatRSI, err := WilderRSI(seriesFromCloses(flat...), 5)
	require.NoError(t, err)
	last, ok := flatRSI.Last()
	require.True(t, ok)
	assert.Equal(t, 50.0, last)

	_, err = WilderRSI(s, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMACD_LinearUptrend(t *testing.T) {
	s := linearSeries(120)
	res, err := MACD(s, 12, 26, 9)
	require.NoError(t, err)

	for _, series := range []model.IndicatorSeries{res.MACD, res.Signal, res.Histogram} {
		require.Equal(t, s.Len(), series.Len())
		assert.Equal(t, 0, countNaNPrefix(series.Values), series.Name)
	}
	assert.Equal(t, 0.0, res.Histogram.Values[0])
	for i := 1; i < s.Len(); i++ {
		assert.Greater(t, res.Histogram.Values[i], 0.0, "histogram at %d", i)
		assert.Greater(t, res.MACD.Values[i], res.Signal.Values[i])
	}
	// Lag difference of the two EMAs on a unit slope: (26-1)/2 - (12-1)/2.
	assert.InDelta(t, 7.0, res.MACD.Values[119], 0.01)
	assert.Less(t, res.Histogram.Values[119], res.Histogram.Values[40])
}

func TestMACD_InvalidSpans(t *testing.T) {
	s := linearSeries(10)
	_, err := MACD(s, 26, 12, 9)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = MACD(s, 12, 12, 9)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = MACD(s, 12, 26, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBollingerBands(t *testing.T) {
	s := wavySeries(60)
	bb, err := BollingerBands(s, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, 19, countNaNPrefix(bb.Middle.Values))
	assert.Equal(t, 19, countNaNPrefix(bb.Upper.Values))
	assert.Equal(t, 19, countNaNPrefix(bb.Lower.Values))

	sma, err := SMA(s, 20)
	require.NoError(t, err)
	for i := 19; i < s.Len(); i++ {
		assert.Equal(t, sma.Values[i], bb.Middle.Values[i])
		assert.GreaterOrEqual(t, bb.Upper.Values[i], bb.Middle.Values[i])
		assert.GreaterOrEqual(t, bb.Middle.Values[i], bb.Lower.Values[i])
	}
}

func TestBollingerBands_PopulationStdDev(t *testing.T) {
	// mean 5, population std 2
	bb, err := BollingerBands(seriesFromCloses(2, 4, 4, 4, 5, 5, 7, 9), 8, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, bb.Middle.Values[7], 1e-12)
	assert.InDelta(t, 9.0, bb.Upper.Values[7], 1e-12)
	assert.InDelta(t, 1.0, bb.Lower.Values[7], 1e-12)
}

func TestBollingerBands_InvalidMultiplier(t *testing.T) {
	s := linearSeries(30)
	_, err := BollingerBands(s, 20, -1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = BollingerBands(s, 20, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = BollingerBands(s, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestStochastic(t *testing.T) {
	s := wavySeries(80)
	st, err := Stochastic(s, 14, 3)
	require.NoError(t, err)
	assert.Equal(t, 13, countNaNPrefix(st.K.Values))
	assert.Equal(t, 15, countNaNPrefix(st.D.Values))
	for i := 13; i < s.Len(); i++ {
		assert.GreaterOrEqual(t, st.K.Values[i], 0.0)
		assert.LessOrEqual(t, st.K.Values[i], 100.0)
	}
	for i := 15; i < s.Len(); i++ {
		want := (st.K.Values[i] + st.K.Values[i-1] + st.K.Values[i-2]) / 3
		assert.InDelta(t, want, st.D.Values[i], 1e-9)
	}
}

func TestStochastic_FlatRangeIsFifty(t *testing.T) {
	st, err := Stochastic(seriesFromCloses(5, 5, 5, 5, 5, 5), 3, 2)
	require.NoError(t, err)
	for i := 2; i < 6; i++ {
		assert.Equal(t, 50.0, st.K.Values[i])
	}
	assert.Equal(t, 50.0, st.D.Values[5])

	_, err = Stochastic(seriesFromCloses(5, 5), 3, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDefinedFromIndex(t *testing.T) {
	s := wavySeries(50)

	sma, err := SMA(s, 10)
	require.NoError(t, err)
	rsi, err := RSI(s, 10)
	require.NoError(t, err)
	macd, err := MACD(s, 5, 10, 4)
	require.NoError(t, err)
	bb, err := BollingerBands(s, 10, 2)
	require.NoError(t, err)
	st, err := Stochastic(s, 10, 3)
	require.NoError(t, err)

	assert.Equal(t, 9, countNaNPrefix(sma.Values))
	assert.Equal(t, 10, countNaNPrefix(rsi.Values))
	assert.Equal(t, 0, countNaNPrefix(macd.MACD.Values))
	assert.Equal(t, 9, countNaNPrefix(bb.Upper.Values))
	assert.Equal(t, 9, countNaNPrefix(st.K.Values))
}

func TestIndicatorsAreIdempotent(t *testing.T) {
	s := wavySeries(90)
	before := append([]model.OHLCV(nil), s.Bars...)

	bitsEqual := func(a, b []float64) {
		require.Equal(t, len(a), len(b))
		for i := range a {
			assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]), "index %d", i)
		}
	}

	sma1, _ := SMA(s, 20)
	sma2, _ := SMA(s, 20)
	bitsEqual(sma1.Values, sma2.Values)

	rsi1, _ := RSI(s, 14)
	rsi2, _ := RSI(s, 14)
	bitsEqual(rsi1.Values, rsi2.Values)

	m1, _ := MACD(s, 12, 26, 9)
	m2, _ := MACD(s, 12, 26, 9)
	bitsEqual(m1.Histogram.Values, m2.Histogram.Values)

	b1, _ := BollingerBands(s, 20, 2)
	b2, _ := BollingerBands(s, 20, 2)
	bitsEqual(b1.Upper.Values, b2.Upper.Values)

	st1, _ := Stochastic(s, 14, 3)
	st2, _ := Stochastic(s, 14, 3)
	bitsEqual(st1.D.Values, st2.D.Values)

	assert.Equal(t, before, s.Bars, "input must not be mutated")
}

func TestRanges(t *testing.T) {
	s := linearSeries(300)
	high, low, err := Calculate52WeekRange(s)
	require.NoError(t, err)
	assert.Equal(t, 399.0, high)
	assert.Equal(t, 148.0, low)

	high, low, err = Calculate30DayRange(s)
	require.NoError(t, err)
	assert.Equal(t, 399.0, high)
	assert.Equal(t, 378.0, low)

	short := seriesFromCloses(3, 1, 2)
	high, low, err = Calculate52WeekRange(short)
	require.NoError(t, err)
	assert.Equal(t, 3.0, high)
	assert.Equal(t, 1.0, low)

	_, _, err = Calculate30DayRange(model.PriceSeries{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculatePosition(t *testing.T) {
	pos, err := CalculatePosition(150, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	pos, err = CalculatePosition(250, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)

	pos, err = CalculatePosition(10, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	_, err = CalculatePosition(10, 50, 100)
	assert.Error(t, err)
}

func TestPercentB(t *testing.T) {
	assert.Equal(t, 0.5, PercentB(10, 12, 8))
	assert.Equal(t, 0.5, PercentB(10, 10, 10))
	assert.True(t, math.IsNaN(PercentB(10, math.NaN(), 8)))
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.MACDFast = 30
	assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)

	p = DefaultParams()
	p.StochSmoothing = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)

	p = DefaultParams()
	p.BBStdDev = -0.5
	assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
}

func TestParamsRSIMethod(t *testing.T) {
	p := DefaultParams()
	p.RSIMethod = "ema"
	assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)

	p = DefaultParams()
	p.RSIMethod = RSIWilder
	p.RSIWindow = 1
	assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)

	series := wavySeries(60)
	p = DefaultParams()
	simple, err := p.ComputeRSI(series)
	require.NoError(t, err)
	want, err := RSI(series, p.RSIWindow)
	require.NoError(t, err)
	assert.Equal(t, want.Name, simple.Name)

	p.RSIMethod = RSIWilder
	require.NoError(t, p.Validate())
	wilder, err := p.ComputeRSI(series)
	require.NoError(t, err)
	assert.Equal(t, "WILDER_RSI_14", wilder.Name)
	assert.NotEqual(t, simple.Values[59], wilder.Values[59])
}
