package strategy

import (
	"math"

	"TickerLens/internal/model"
)

// Tiers maps total scores to outlook labels, highest first.
var Tiers = []model.OutlookTier{
	{Label: "Strong Buy", MinScore: 1.0},
	{Label: "Buy", MinScore: 0.4},
	{Label: "Hold", MinScore: -0.4},
	{Label: "Reduce", MinScore: -1.0},
}

// DefaultTier is the lowest tier for scores < -1.0.
var DefaultTier = model.OutlookTier{Label: "Sell", MinScore: math.Inf(-1)}

const (
	rsiOverbought = 70
	rsiOversold   = 30
)

// mapTier maps a total score to an OutlookTier.
func mapTier(totalScore float64) model.OutlookTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t
		}
	}
	return DefaultTier
}

// Evaluate computes the technical outlook from the latest indicator values.
// Positive scores favour buying, negative favour reducing.
func Evaluate(symbol string, snap model.TechnicalSnapshot) *model.Outlook {
	// Step a: factors that stand on their own
	f1 := scoreSMADeviation(snap)
	f2 := scoreRSI(snap)
	f3 := scoreTrend(snap)
	f4 := scorePercentB(snap)
	f5 := scoreStochastic(snap)

	// Step b: the 52-week factor needs the average of the others
	otherFactorsAvg := (f1.RawScore + f2.RawScore + f3.RawScore + f4.RawScore + f5.RawScore) / 5.0
	f6 := score52WeekPosition(snap, otherFactorsAvg)

	factors := []model.FactorScore{f1, f2, f3, f4, f5, f6}

	// Step c: weighted sum
	var totalScore float64
	for _, f := range factors {
		totalScore += f.Weighted
	}

	outlook := &model.Outlook{
		Symbol:     symbol,
		Factors:    factors,
		TotalScore: totalScore,
		Tier:       mapTier(totalScore),
	}

	// Step d: RSI extremes
	switch {
	case math.IsNaN(snap.RSI):
	case snap.RSI >= rsiOverbought:
		outlook.WarningMsg = "⚠️ RSI ≥ 70: overbought, consider taking partial profit"
	case snap.RSI <= rsiOversold:
		outlook.WarningMsg = "⚠️ RSI ≤ 30: oversold, watch for a rebound"
	}
	return outlook
}
