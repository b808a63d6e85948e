// Package sentiment scores the polarity of short English texts such as news
// headlines with the VADER lexicon.
package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"
)

// Labels for an overall polarity.
const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// The lexicon is large; load it on first use.
var analyzer = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Polarity returns the compound score of text, from -1 (most negative) to 1
// (most positive).
func Polarity(text string) float64 {
	return analyzer().PolarityScores(text).Compound
}

// Label names the direction of a polarity. Only an exact zero is neutral.
func Label(polarity float64) string {
	switch {
	case polarity > 0:
		return Positive
	case polarity < 0:
		return Negative
	default:
		return Neutral
	}
}

// Score returns the polarity of each text and their mean. The mean of no
// texts is 0.
func Score(texts []string) ([]float64, float64) {
	scores := make([]float64, len(texts))
	var sum float64
	for i, t := range texts {
		scores[i] = Polarity(t)
		sum += scores[i]
	}
	if len(texts) == 0 {
		return scores, 0
	}
	return scores, sum / float64(len(texts))
}
