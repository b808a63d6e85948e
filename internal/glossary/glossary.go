package glossary

import (
	"sort"
	"strings"
)

// Entry is one glossary term.
type Entry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

var entries = []Entry{
	{"P/E Ratio", "The price-to-earnings (P/E) ratio is a valuation metric calculated by dividing a company's stock price by its earnings per share (EPS)."},
	{"Market Capitalization", "The total value of a company's outstanding shares, calculated by multiplying the stock price by the number of shares."},
	{"ROE", "Return on Equity (ROE) is a measure of financial performance, calculated as net income divided by shareholders' equity."},
	{"Beta", "Beta is a measure of a stock's volatility relative to the overall market."},
	{"Dividend Yield", "The dividend yield is the annual dividend payment divided by the stock's current price, expressed as a percentage."},
	{"RSI", "The Relative Strength Index (RSI) is a momentum indicator that measures the speed and change of price movements. Readings above 70 suggest overbought conditions, below 30 oversold."},
	{"Moving Average", "A moving average smooths out price data to identify trends over a specific time frame."},
	{"SMA", "The Simple Moving Average (SMA) is the arithmetic mean of the closing prices over the last N periods."},
	{"EMA", "The Exponential Moving Average (EMA) weights recent prices more heavily, using a smoothing factor of 2/(span+1)."},
	{"MACD", "Moving Average Convergence Divergence (MACD) is the difference between a fast and a slow EMA. Its signal line is an EMA of the MACD, and the histogram is the gap between the two."},
	{"Bollinger Bands", "Bollinger Bands place an upper and lower band a multiple of the standard deviation above and below a simple moving average, widening as volatility rises."},
	{"Stochastic Oscillator", "The Stochastic Oscillator (%K) locates the close within the high-low range of the last N periods on a 0-100 scale; %D is its moving average."},
	{"P/B Ratio", "The price-to-book (P/B) ratio compares the share price to the book value per share."},
	{"D/E Ratio", "The debt-to-equity (D/E) ratio compares a company's total debt with its shareholders' equity."},
	{"Free Cash Flow", "Free cash flow (FCF) is the cash a company generates after capital expenditures."},
	{"EPS", "Earnings per share (EPS) is net income divided by the number of outstanding shares."},
}

// All returns every entry sorted by term.
func All() []Entry {
	return Search("")
}

// Search returns the entries whose term contains q, ignoring case, sorted by
// term. An empty query matches everything.
func Search(q string) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if q == "" || strings.Contains(strings.ToLower(e.Term), q) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Term) < strings.ToLower(out[j].Term)
	})
	return out
}

// About is the text of the about page.
const About = `This application is designed for beginners in investing. It offers tools for both technical analysis and fundamental analysis that help users:
- understand essential financial metrics and indicators;
- make informed decisions for short-term and long-term investments;
- gain practical knowledge to start their investment journey with confidence.`
