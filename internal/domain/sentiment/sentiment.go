// Package sentiment holds the closed sentiment label set and score bucketing.
package sentiment

import "math"

// Label is a sentiment bucket.
type Label string

// Sentiment labels.
const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// neutralBand is the half-width of the neutral bucket around zero.
const neutralBand = 0.05

// Sentiment is a label plus a continuous score in [-1, 1].
type Sentiment struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// FromScore clamps score to [-1, 1] and derives the label bucket.
func FromScore(score float64) Sentiment {
	if math.IsNaN(score) {
		score = 0
	}
	score = math.Max(-1, math.Min(1, score))
	return Sentiment{Label: Bucket(score), Score: score}
}

// Bucket maps a score to its label.
func Bucket(score float64) Label {
	switch {
	case score > neutralBand:
		return Positive
	case score < -neutralBand:
		return Negative
	default:
		return Neutral
	}
}

// Mean averages scores and re-buckets. An empty slice is neutral.
func Mean(items []Sentiment) Sentiment {
	if len(items) == 0 {
		return FromScore(0)
	}
	var sum float64
	for _, s := range items {
		sum += s.Score
	}
	return FromScore(sum / float64(len(items)))
}
