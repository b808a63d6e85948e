package strategy

import (
	"fmt"
	"math"

	"TickerLens/internal/calculator"
	"TickerLens/internal/model"
)

const (
	weightSMADeviation = 0.30
	weightRSI          = 0.25
	weightTrend        = 0.15
	weightPercentB     = 0.10
	weightStochastic   = 0.10
	weight52Week       = 0.10
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

func unavailable(name string, weight float64) model.FactorScore {
	return factor(name, 0, weight, "n/a")
}

func undefined(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// scoreSMADeviation scores how far the price deviates from the slow SMA.
func scoreSMADeviation(s model.TechnicalSnapshot) model.FactorScore {
	const name = "SMA deviation"
	if undefined(s.SMASlow, s.CurrentPrice) || s.SMASlow == 0 {
		return unavailable(name, weightSMADeviation)
	}
	deviation := (s.CurrentPrice - s.SMASlow) / s.SMASlow * 100 // percentage

	var score float64
	switch {
	case deviation <= -20:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 5:
		score = 0
	case deviation <= 10:
		score = -0.5
	case deviation <= 15:
		score = -1.0
	case deviation <= 20:
		score = -1.5
	default:
		score = -2.0
	}
	return factor(name, score, weightSMADeviation, fmt.Sprintf("%+.1f%% vs slow SMA", deviation))
}

// scoreRSI scores the RSI reading.
func scoreRSI(s model.TechnicalSnapshot) model.FactorScore {
	const name = "RSI"
	rsi := s.RSI
	if undefined(rsi) {
		return unavailable(name, weightRSI)
	}
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor(name, score, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreTrend scores SMA alignment confirmed by the MACD histogram.
// Bull alignment: price > fast SMA > slow SMA
// Bear alignment: price < fast SMA < slow SMA
func scoreTrend(s model.TechnicalSnapshot) model.FactorScore {
	const name = "Trend (SMA/MACD)"
	if undefined(s.CurrentPrice, s.SMAFast, s.SMASlow, s.MACDHist) {
		return unavailable(name, weightTrend)
	}
	bullish := s.CurrentPrice > s.SMAFast && s.SMAFast > s.SMASlow
	bearish := s.CurrentPrice < s.SMAFast && s.SMAFast < s.SMASlow

	var score float64
	var commentary string
	switch {
	case bullish && s.MACDHist > 0:
		score, commentary = 1.5, "bull alignment, MACD rising"
	case bullish:
		score, commentary = 1.0, "bull alignment"
	case bearish && s.MACDHist < 0:
		score, commentary = -1.0, "bear alignment, MACD falling"
	case bearish:
		score, commentary = -0.5, "bear alignment"
	case s.MACDHist > 0:
		score, commentary = 0.25, "range-bound, MACD positive"
	case s.MACDHist < 0:
		score, commentary = -0.25, "range-bound, MACD negative"
	default:
		score, commentary = 0, "range-bound"
	}
	return factor(name, score, weightTrend, commentary)
}

// scorePercentB scores where the price sits between the Bollinger Bands.
func scorePercentB(s model.TechnicalSnapshot) model.FactorScore {
	const name = "Bollinger %B"
	pb := calculator.PercentB(s.CurrentPrice, s.BBUpper, s.BBLower)
	if undefined(pb) {
		return unavailable(name, weightPercentB)
	}
	var score float64
	switch {
	case pb <= 0:
		score = 2.0
	case pb <= 0.2:
		score = 1.0
	case pb <= 0.8:
		score = 0
	case pb < 1:
		score = -1.0
	default:
		score = -2.0
	}
	return factor(name, score, weightPercentB, fmt.Sprintf("%%B=%.2f", pb))
}

// scoreStochastic scores the %K reading.
func scoreStochastic(s model.TechnicalSnapshot) model.FactorScore {
	const name = "Stochastic %K"
	k := s.StochasticK
	if undefined(k) {
		return unavailable(name, weightStochastic)
	}
	var score float64
	switch {
	case k <= 10:
		score = 1.5
	case k <= 20:
		score = 1.0
	case k < 80:
		score = 0
	case k < 90:
		score = -1.0
	default:
		score = -1.5
	}
	return factor(name, score, weightStochastic, fmt.Sprintf("%%K=%.0f", k))
}

// score52WeekPosition scores where the price sits in the 52-week range.
// Special logic: when position > 95%, requires otherFactorsAvg < -1 to give -2, otherwise caps at -1.
func score52WeekPosition(s model.TechnicalSnapshot, otherFactorsAvg float64) model.FactorScore {
	const name = "52-week position"
	if undefined(s.Position52w) {
		return unavailable(name, weight52Week)
	}
	pos := s.Position52w * 100 // convert to percentage

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor(name, score, weight52Week, fmt.Sprintf("position=%.0f%%", pos))
}
