package strategy

import "TickerLens/internal/model"

// Statistic is one formatted row of a fundamentals table.
type Statistic struct {
	Metric      string `json:"metric"`
	Value       string `json:"value"`
	Explanation string `json:"explanation,omitempty"`
}

// Section is a titled group of statistics.
type Section struct {
	Title string      `json:"title"`
	Rows  []Statistic `json:"rows"`
}

// KeyStatistics builds the key statistics table.
func KeyStatistics(f *model.Fundamentals) []Statistic {
	if f == nil {
		f = &model.Fundamentals{}
	}
	return []Statistic{
		{"Current Price", FormatMoney(f.CurrentPrice), "The current trading price of the stock."},
		{"Market Cap", FormatBillions(f.MarketCap), "The total value of the company based on its stock price and shares outstanding."},
		{"52W Range", FormatRange(f.FiftyTwoWeekLow, f.FiftyTwoWeekHigh), "The range of the stock price over the last 52 weeks."},
		{"Previous Close", FormatMoney(f.PreviousClose), "The last recorded closing price of the stock."},
		{"Open", FormatMoney(f.Open), "The stock price at the start of the trading session."},
		{"Day's Range", FormatRange(f.DayLow, f.DayHigh), "The lowest and highest price during today's trading session."},
		{"Beta", FormatNumber(f.Beta), "A measure of the stock's volatility compared to the overall market."},
		{"P/E Ratio", FormatNumber(f.TrailingPE), "The price-to-earnings ratio, showing the price relative to earnings per share."},
		{"P/B Ratio", FormatNumber(f.PriceToBook), "The price-to-book ratio, showing the price relative to book value per share."},
		{"EPS", FormatNumber(f.TrailingEPS), "Earnings per share, showing profit allocated to each outstanding share."},
	}
}

// FundamentalSections groups the remaining ratios the way the fundamentals
// page presents them.
func FundamentalSections(f *model.Fundamentals) []Section {
	if f == nil {
		f = &model.Fundamentals{}
	}
	return []Section{
		{Title: "Valuation Metrics", Rows: []Statistic{
			{Metric: "Forward P/E", Value: FormatNumber(f.ForwardPE)},
			{Metric: "P/S Ratio", Value: FormatNumber(f.PriceToSales)},
			{Metric: "P/B Ratio", Value: FormatNumber(f.PriceToBook)},
		}},
		{Title: "Profitability Metrics", Rows: []Statistic{
			{Metric: "Return on Equity (ROE)", Value: FormatPercent(f.ReturnOnEquity)},
			{Metric: "Return on Assets (ROA)", Value: FormatPercent(f.ReturnOnAssets)},
		}},
		{Title: "Financial Health", Rows: []Statistic{
			{Metric: "Debt-to-Equity Ratio", Value: FormatNumber(f.DebtToEquity)},
			{Metric: "Current Ratio", Value: FormatNumber(f.CurrentRatio)},
			{Metric: "Quick Ratio", Value: FormatNumber(f.QuickRatio)},
		}},
		{Title: "Growth Metrics", Rows: []Statistic{
			{Metric: "Earnings Per Share (EPS)", Value: FormatNumber(f.TrailingEPS)},
			{Metric: "Revenue Growth (YoY)", Value: FormatPercent(f.RevenueGrowth)},
		}},
		{Title: "Dividends", Rows: []Statistic{
			{Metric: "Dividend Yield", Value: FormatPercent(f.DividendYield)},
			{Metric: "Dividend Payout Ratio", Value: FormatPercent(f.PayoutRatio)},
		}},
		{Title: "Risk Indicators", Rows: []Statistic{
			{Metric: "Beta", Value: FormatNumber(f.Beta)},
		}},
	}
}
