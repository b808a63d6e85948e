package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"TickerLens/internal/calculator"
	"TickerLens/internal/logger"
	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
)

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher    Fetcher
	NewsSource NewsFetcher // nil disables news
	Params     calculator.Params
	Range      Range
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params calculator.Params, rng Range, m *metrics.Metrics) *Collector {
	if !rng.Valid() {
		rng = Range1Y
	}
	return &Collector{
		Fetcher: fetcher,
		Params:  params,
		Range:   rng,
		metrics: m,
		logger:  logger.Component("collector"),
		now:     time.Now,
	}
}

// NormalizeSymbol upper-cases and trims a ticker and rejects anything that
// cannot be a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || len(s) > 15 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '^', r == '=':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
		}
	}
	return s, nil
}

// Collect fetches market data and computes all indicators with the
// collector's default parameters.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Analysis, error) {
	return c.CollectWithParams(ctx, symbol, c.Params)
}

// CollectWithParams fetches bars and fundamentals concurrently and computes
// the indicator set. A fundamentals failure only adds a warning.
func (c *Collector) CollectWithParams(ctx context.Context, symbol string, params calculator.Params) (*model.Analysis, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		bars     []model.OHLCV
		fund     *model.Fundamentals
		fundErr  error
		warnings []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		b, err := c.Fetcher.FetchDailyBars(gctx, sym, c.Range)
		c.metrics.ObserveFetch(c.Fetcher.Name(), "bars", start, err)
		if err != nil {
			return fmt.Errorf("%w: fetch daily bars from %s: %w", ErrProvider, c.Fetcher.Name(), err)
		}
		bars = b
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		fund, fundErr = c.Fetcher.FetchFundamentals(gctx, sym)
		c.metrics.ObserveFetch(c.Fetcher.Name(), "fundamentals", start, fundErr)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if fundErr != nil {
		if !errors.Is(fundErr, ErrNotSupported) {
			c.logger.Warn().Err(fundErr).Str("symbol", sym).Msg("Fundamentals unavailable")
		}
		warnings = append(warnings, "fundamentals unavailable: "+fundErr.Error())
	}

	series := model.PriceSeries{Symbol: sym, Bars: bars}
	if err := calculator.Validate(series); err != nil {
		return nil, fmt.Errorf("price history for %s: %w", sym, err)
	}

	start := time.Now()
	set, calcWarnings := c.computeIndicators(series, params)
	c.metrics.ObserveCompute(start)
	warnings = append(warnings, calcWarnings...)

	snapshot, snapWarnings := buildSnapshot(series, set)
	warnings = append(warnings, snapWarnings...)

	c.logger.Info().Str("symbol", sym).Int("bars", series.Len()).Int("warnings", len(warnings)).Msg("Analysis ready")
	return &model.Analysis{
		Symbol:       sym,
		Source:       c.Fetcher.Name(),
		FetchedAt:    c.now().UTC(),
		Series:       series,
		Fundamentals: fund,
		Indicators:   set,
		Snapshot:     snapshot,
		Warnings:     warnings,
	}, nil
}

// Fundamentals fetches only the company profile and ratios.
func (c *Collector) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	fund, err := c.Fetcher.FetchFundamentals(ctx, sym)
	c.metrics.ObserveFetch(c.Fetcher.Name(), "fundamentals", start, err)
	if err != nil {
		if errors.Is(err, ErrNotSupported) || errors.Is(err, ErrUnknownSymbol) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	return fund, nil
}

// computeIndicators fills every series of the set. A failed indicator is
// logged, reported as a warning and left undefined so charts still render.
func (c *Collector) computeIndicators(series model.PriceSeries, p calculator.Params) (model.IndicatorSet, []string) {
	var set model.IndicatorSet
	var warnings []string
	times := series.Times()

	fail := func(indicator string, err error) {
		c.logger.Warn().Err(err).Str("symbol", series.Symbol).Str("indicator", indicator).Msg("Indicator calculation failed")
		c.metrics.IncIndicatorFailure(indicator)
		warnings = append(warnings, fmt.Sprintf("%s: %v", indicator, err))
	}
	undefined := func(name string) model.IndicatorSeries {
		return model.NewIndicatorSeries(name, times)
	}

	// SMA fast / slow
	if s, err := calculator.SMA(series, p.SMAFast); err != nil {
		fail("sma_fast", err)
		set.SMAFast = undefined(fmt.Sprintf("SMA_%d", p.SMAFast))
	} else {
		set.SMAFast = s
	}
	if s, err := calculator.SMA(series, p.SMASlow); err != nil {
		fail("sma_slow", err)
		set.SMASlow = undefined(fmt.Sprintf("SMA_%d", p.SMASlow))
	} else {
		set.SMASlow = s
	}

	// EMA
	if s, err := calculator.EMA(series, p.EMASpan); err != nil {
		fail("ema", err)
		set.EMA = undefined(fmt.Sprintf("EMA_%d", p.EMASpan))
	} else {
		set.EMA = s
	}

	// RSI
	if s, err := p.ComputeRSI(series); err != nil {
		fail("rsi", err)
		set.RSI = undefined(fmt.Sprintf("RSI_%d", p.RSIWindow))
	} else {
		set.RSI = s
	}

	// MACD
	if m, err := calculator.MACD(series, p.MACDFast, p.MACDSlow, p.MACDSignal); err != nil {
		fail("macd", err)
		set.MACD, set.MACDSignal, set.MACDHist = undefined("MACD"), undefined("MACD_SIGNAL"), undefined("MACD_HIST")
	} else {
		set.MACD, set.MACDSignal, set.MACDHist = m.MACD, m.Signal, m.Histogram
	}

	// Bollinger Bands
	if bb, err := calculator.BollingerBands(series, p.BBWindow, p.BBStdDev); err != nil {
		fail("bollinger", err)
		set.BBUpper, set.BBMiddle, set.BBLower = undefined("BB_UPPER"), undefined("BB_MIDDLE"), undefined("BB_LOWER")
	} else {
		set.BBUpper, set.BBMiddle, set.BBLower = bb.Upper, bb.Middle, bb.Lower
	}

	// Stochastic
	if st, err := calculator.Stochastic(series, p.StochWindow, p.StochSmoothing); err != nil {
		fail("stochastic", err)
		set.StochasticK, set.StochasticD = undefined("STOCH_K"), undefined("STOCH_D")
	} else {
		set.StochasticK, set.StochasticD = st.K, st.D
	}

	if !set.SMASlow.Defined(series.Len() - 1) {
		warnings = append(warnings, fmt.Sprintf("only %d bars: SMA %d not yet defined", series.Len(), p.SMASlow))
	}
	return set, warnings
}

// buildSnapshot takes the value of each indicator at the last bar together
// with the 52-week and 30-day ranges.
func buildSnapshot(series model.PriceSeries, set model.IndicatorSet) (model.TechnicalSnapshot, []string) {
	var warnings []string
	last, _ := series.Last()
	at := func(s model.IndicatorSeries) float64 {
		if s.Len() == 0 {
			return math.NaN()
		}
		return s.Values[s.Len()-1]
	}

	snap := model.TechnicalSnapshot{
		CurrentPrice: last.Close,
		SMAFast:      at(set.SMAFast),
		SMASlow:      at(set.SMASlow),
		EMA:          at(set.EMA),
		RSI:          at(set.RSI),
		MACD:         at(set.MACD),
		MACDSignal:   at(set.MACDSignal),
		MACDHist:     at(set.MACDHist),
		BBUpper:      at(set.BBUpper),
		BBMiddle:     at(set.BBMiddle),
		BBLower:      at(set.BBLower),
		StochasticK:  at(set.StochasticK),
		StochasticD:  at(set.StochasticD),
	}

	// 52-week range
	if h, l, err := calculator.Calculate52WeekRange(series); err != nil {
		warnings = append(warnings, "52-week range: "+err.Error())
		snap.High52w, snap.Low52w = last.Close, last.Close
	} else {
		snap.High52w, snap.Low52w = h, l
	}

	// 30-day range
	if h, l, err := calculator.Calculate30DayRange(series); err != nil {
		warnings = append(warnings, "30-day range: "+err.Error())
		snap.High30d, snap.Low30d = last.Close, last.Close
	} else {
		snap.High30d, snap.Low30d = h, l
	}

	// 52-week position
	if pos, err := calculator.CalculatePosition(last.Close, snap.High52w, snap.Low52w); err != nil {
		warnings = append(warnings, "52-week position: "+err.Error())
		snap.Position52w = 0.5
	} else {
		snap.Position52w = pos
	}
	return snap, warnings
}
