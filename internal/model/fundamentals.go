package model

// Fundamentals holds the company profile and ratios reported by a data
// provider. A nil field means the provider did not report it.
type Fundamentals struct {
	Symbol   string  `json:"symbol"`
	LongName *string `json:"long_name,omitempty"`
	Sector   *string `json:"sector,omitempty"`
	Industry *string `json:"industry,omitempty"`
	Country  *string `json:"country,omitempty"`
	Website  *string `json:"website,omitempty"`
	Summary  *string `json:"summary,omitempty"`
	Currency *string `json:"currency,omitempty"`

	CurrentPrice     *float64 `json:"current_price,omitempty"`
	PreviousClose    *float64 `json:"previous_close,omitempty"`
	Open             *float64 `json:"open,omitempty"`
	DayLow           *float64 `json:"day_low,omitempty"`
	DayHigh          *float64 `json:"day_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	MarketCap        *float64 `json:"market_cap,omitempty"`
	Beta             *float64 `json:"beta,omitempty"`

	TrailingPE     *float64 `json:"trailing_pe,omitempty"`
	ForwardPE      *float64 `json:"forward_pe,omitempty"`
	PriceToSales   *float64 `json:"price_to_sales,omitempty"`
	PriceToBook    *float64 `json:"price_to_book,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	ReturnOnAssets *float64 `json:"return_on_assets,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"` // ratio, e.g. 1.5 rather than 150%
	CurrentRatio   *float64 `json:"current_ratio,omitempty"`
	QuickRatio     *float64 `json:"quick_ratio,omitempty"`
	TrailingEPS    *float64 `json:"trailing_eps,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	DividendYield  *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio    *float64 `json:"payout_ratio,omitempty"`
	FreeCashflow   *float64 `json:"free_cashflow,omitempty"`
}

// Name returns the long company name, falling back to the symbol.
func (f *Fundamentals) Name() string {
	if f == nil {
		return ""
	}
	if f.LongName != nil && *f.LongName != "" {
		return *f.LongName
	}
	return f.Symbol
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
