package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"TickerLens/internal/model"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorSMAFast       = "#3b82f6"
	colorSMASlow       = "#f472b6"
	colorBand          = "#fbbf24"
	colorOscillator    = "#22d3ee"
	colorSignal        = "#fb7185"
	colorGuide         = "#6b7280"

	chartWidthPx   = 1200
	klineHeightPx  = 520
	panelHeightPx  = 240
	volumeHeightPx = 200
)

// Page writes an HTML page with the price, volume, RSI, MACD and Stochastic
// charts of one analysis. Undefined indicator values render as gaps.
func Page(w io.Writer, a *model.Analysis) error {
	if a == nil || a.Series.Len() == 0 {
		return errors.New("render: no price history")
	}
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s technical chart", a.Symbol)
	page.SetLayout(components.PageFlexLayout)

	xAxis := buildXAxis(a.Series)
	page.AddCharts(
		buildPriceChart(a, xAxis),
		buildVolumeChart(a.Series, xAxis),
		buildRSIChart(a.Indicators.RSI, xAxis),
		buildMACDChart(a.Indicators, xAxis),
		buildStochasticChart(a.Indicators, xAxis),
	)
	return page.Render(w)
}

func initOpts(height int) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Theme:           types.ThemeWesteros,
		Width:           fmt.Sprintf("%dpx", chartWidthPx),
		Height:          fmt.Sprintf("%dpx", height),
		BackgroundColor: colorBackground,
	})
}

func titleOpts(title, subtitle string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{
		Title:         title,
		Subtitle:      subtitle,
		Left:          "left",
		TitleStyle:    &opts.TextStyle{Color: colorTextPrimary},
		SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
	})
}

func commonOpts() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextSecondary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Color: colorTextSecondary}}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	}
}

func buildXAxis(series model.PriceSeries) []string {
	x := make([]string, series.Len())
	for i, b := range series.Bars {
		x[i] = b.Time.Format("2006-01-02")
	}
	return x
}

func buildPriceChart(a *model.Analysis, xAxis []string) *charts.Kline {
	kline := charts.NewKLine()
	subtitle := ""
	if a.Fundamentals != nil {
		subtitle = a.Fundamentals.Name()
	}
	kline.SetGlobalOptions(append(commonOpts(),
		initOpts(klineHeightPx),
		titleOpts(fmt.Sprintf("%s daily", a.Symbol), subtitle),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
	)...)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)

	data := make([]opts.KlineData, a.Series.Len())
	for i, b := range a.Series.Bars {
		data[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
	}
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", data)

	ind := a.Indicators
	overlay := newLine(xAxis)
	overlay.AddSeries(label(ind.SMAFast, "SMA fast"), toLineData(ind.SMAFast.Values), lineColor(colorSMAFast))
	overlay.AddSeries(label(ind.SMASlow, "SMA slow"), toLineData(ind.SMASlow.Values), lineColor(colorSMASlow))
	overlay.AddSeries("BB upper", toLineData(ind.BBUpper.Values), dashed(colorBand))
	overlay.AddSeries("BB lower", toLineData(ind.BBLower.Values), dashed(colorBand))
	kline.Overlap(overlay)
	return kline
}

func buildVolumeChart(series model.PriceSeries, xAxis []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(commonOpts(),
		initOpts(volumeHeightPx),
		titleOpts("Volume", ""),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)...)
	vols := make([]opts.BarData, series.Len())
	for i, b := range series.Bars {
		color := colorBear
		if b.Close >= b.Open {
			color = colorBull
		}
		vols[i] = opts.BarData{
			Value:     b.Volume,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.6)},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Volume", vols)
	return bar
}

func buildRSIChart(rsi model.IndicatorSeries, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(commonOpts(),
		initOpts(panelHeightPx),
		titleOpts("RSI", lastValue(rsi)),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, AxisLabel: &opts.AxisLabel{Color: colorTextSecondary}}),
	)...)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.SetXAxis(xAxis)
	line.AddSeries(label(rsi, "RSI"), toLineData(rsi.Values), lineColor(colorOscillator))
	line.AddSeries("Overbought (70)", constant(70, len(xAxis)), dashed(colorGuide))
	line.AddSeries("Oversold (30)", constant(30, len(xAxis)), dashed(colorGuide))
	return line
}

func buildMACDChart(ind model.IndicatorSet, xAxis []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(commonOpts(),
		initOpts(panelHeightPx),
		titleOpts("MACD", lastValue(ind.MACDHist)),
	)...)
	hist := make([]opts.BarData, len(ind.MACDHist.Values))
	for i, v := range ind.MACDHist.Values {
		if math.IsNaN(v) {
			hist[i] = opts.BarData{Value: nil}
			continue
		}
		color := colorBear
		if v >= 0 {
			color = colorBull
		}
		hist[i] = opts.BarData{Value: round(v, 4), ItemStyle: &opts.ItemStyle{Color: color}}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Histogram", hist)

	line := newLine(xAxis)
	line.AddSeries("MACD", toLineData(ind.MACD.Values), lineColor(colorOscillator))
	line.AddSeries("Signal", toLineData(ind.MACDSignal.Values), lineColor(colorSignal))
	bar.Overlap(line)
	return bar
}

func buildStochasticChart(ind model.IndicatorSet, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(commonOpts(),
		initOpts(panelHeightPx),
		titleOpts("Stochastic", lastValue(ind.StochasticK)),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, AxisLabel: &opts.AxisLabel{Color: colorTextSecondary}}),
	)...)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.SetXAxis(xAxis)
	line.AddSeries("%K", toLineData(ind.StochasticK.Values), lineColor(colorOscillator))
	line.AddSeries("%D", toLineData(ind.StochasticD.Values), lineColor(colorSignal))
	line.AddSeries("80", constant(80, len(xAxis)), dashed(colorGuide))
	line.AddSeries("20", constant(20, len(xAxis)), dashed(colorGuide))
	return line
}

func newLine(xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.SetXAxis(xAxis)
	return line
}

func lineColor(color string) charts.SeriesOpts {
	return charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2})
}

func dashed(color string) charts.SeriesOpts {
	return charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Type: "dashed"})
}

func label(s model.IndicatorSeries, fallback string) string {
	if s.Name != "" {
		return s.Name
	}
	return fallback
}

func lastValue(s model.IndicatorSeries) string {
	if v, ok := s.Last(); ok {
		return fmt.Sprintf("last %.2f", v)
	}
	return "not enough history"
}

// toLineData converts values to chart points, NaN becoming a gap.
func toLineData(values []float64) []opts.LineData {
	line := make([]opts.LineData, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			line[i] = opts.LineData{Value: nil}
			continue
		}
		line[i] = opts.LineData{Value: round(v, 4)}
	}
	return line
}

func constant(v float64, n int) []opts.LineData {
	line := make([]opts.LineData, n)
	for i := range line {
		line[i] = opts.LineData{Value: v}
	}
	return line
}

func round(val float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}
