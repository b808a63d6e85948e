package model

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// OutlookTier maps a total score range to a label.
type OutlookTier struct {
	Label    string  `json:"label"`
	MinScore float64 `json:"min_score"`
}

// Outlook is the technical verdict produced by the strategy engine.
type Outlook struct {
	Symbol     string        `json:"symbol"`
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Tier       OutlookTier   `json:"tier"`
	WarningMsg string        `json:"warning,omitempty"`
}

// Verdict is a valuation recommendation for one metric.
type Verdict string

const (
	VerdictBuy         Verdict = "Buy"
	VerdictHold        Verdict = "Hold"
	VerdictSell        Verdict = "Sell"
	VerdictUnavailable Verdict = "N/A"
)

// Recommendation is one row of the valuation recommendation table.
type Recommendation struct {
	Metric        string   `json:"metric"`
	Value         *float64 `json:"value,omitempty"`
	IndustryValue string   `json:"industry_value"`
	Explanation   string   `json:"explanation"`
	Pros          string   `json:"pros"`
	Cons          string   `json:"cons"`
	Verdict       Verdict  `json:"verdict"`
}
