package sentiment

import (
	"math"
	"testing"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{1, Positive},
		{0.06, Positive},
		{0.05, Neutral},
		{0, Neutral},
		{-0.05, Neutral},
		{-0.5, Negative},
	}
	for _, tc := range tests {
		if got := Bucket(tc.score); got != tc.want {
			t.Errorf("Bucket(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestFromScore_Clamps(t *testing.T) {
	if s := FromScore(3); s.Score != 1 || s.Label != Positive {
		t.Errorf("unexpected %+v", s)
	}
	if s := FromScore(-3); s.Score != -1 || s.Label != Negative {
		t.Errorf("unexpected %+v", s)
	}
	if s := FromScore(math.NaN()); s.Score != 0 || s.Label != Neutral {
		t.Errorf("unexpected %+v", s)
	}
}

func TestMean(t *testing.T) {
	got := Mean([]Sentiment{FromScore(0.5), FromScore(-0.1), FromScore(0.2)})
	if math.Abs(got.Score-0.2) > 1e-9 {
		t.Errorf("expected 0.2, got %v", got.Score)
	}
	if got.Label != Positive {
		t.Errorf("expected positive, got %q", got.Label)
	}
	if Mean(nil).Label != Neutral {
		t.Error("empty mean must be neutral")
	}
}
