package strategy

import "TickerLens/internal/model"

// Industry reference values shown next to each metric.
const (
	industryPE  = 20.0
	industryPB  = 2.5
	industryDE  = 0.7
	industryFCF = "Positive"
)

// RecommendValuation applies the threshold rules for P/E, P/B, D/E and free
// cash flow. A metric the provider did not report gets VerdictUnavailable.
func RecommendValuation(f *model.Fundamentals) []model.Recommendation {
	if f == nil {
		f = &model.Fundamentals{}
	}
	return []model.Recommendation{
		{
			Metric:        "P/E Ratio",
			Value:         f.TrailingPE,
			IndustryValue: FormatNumber(model.Float(industryPE)),
			Explanation: "The Price-to-Earnings (P/E) Ratio measures the stock price relative to its earnings. " +
				"A lower P/E indicates better value compared to earnings, but it can vary by industry.",
			Pros:    "Widely used; allows easy comparison with industry averages.",
			Cons:    "May be misleading for low-earning or high-growth companies.",
			Verdict: band(f.TrailingPE, 15, 25),
		},
		{
			Metric:        "P/B Ratio",
			Value:         f.PriceToBook,
			IndustryValue: FormatNumber(model.Float(industryPB)),
			Explanation: "The Price-to-Book (P/B) Ratio compares the stock price to the book value of the company. " +
				"Useful for determining undervalued or overvalued stocks in asset-heavy industries.",
			Pros:    "Effective for asset-heavy industries like real estate or manufacturing.",
			Cons:    "Less relevant for service-oriented or tech companies.",
			Verdict: band(f.PriceToBook, 1, 3),
		},
		{
			Metric:        "D/E Ratio",
			Value:         f.DebtToEquity,
			IndustryValue: FormatNumber(model.Float(industryDE)),
			Explanation: "The Debt-to-Equity (D/E) Ratio evaluates a company's financial leverage by comparing its total debt " +
				"to shareholders' equity. A lower ratio indicates less financial risk.",
			Pros:    "Highlights the financial stability and leverage of the company.",
			Cons:    "Varies significantly by industry; may not always reflect operational risk.",
			Verdict: band(f.DebtToEquity, 0.5, 1),
		},
		{
			Metric:        "Free Cash Flow (FCF)",
			Value:         f.FreeCashflow,
			IndustryValue: industryFCF,
			Explanation: "Free Cash Flow (FCF) measures the cash a company generates after accounting for capital expenditures. " +
				"It reflects financial health and ability to fund growth or return value to shareholders.",
			Pros:    "Indicates financial health and growth potential.",
			Cons:    "Can fluctuate significantly year to year, especially in cyclical industries.",
			Verdict: positive(f.FreeCashflow),
		},
	}
}

// band returns Buy below low, Hold within [low, high] and Sell above high.
func band(v *float64, low, high float64) model.Verdict {
	switch {
	case v == nil:
		return model.VerdictUnavailable
	case *v < low:
		return model.VerdictBuy
	case *v <= high:
		return model.VerdictHold
	default:
		return model.VerdictSell
	}
}

func positive(v *float64) model.Verdict {
	switch {
	case v == nil:
		return model.VerdictUnavailable
	case *v > 0:
		return model.VerdictBuy
	default:
		return model.VerdictSell
	}
}
