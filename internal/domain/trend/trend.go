// Package trend holds keyword trend snapshots computed over recent news.
package trend

import (
	"sort"
	"time"
)

// Trend is one keyword with its document frequency in the latest news batch.
// Count is the number of documents mentioning the keyword.
type Trend struct {
	Keyword string   `json:"keyword"`
	Count   int      `json:"count"`
	Sources []string `json:"sources"`
}

// Snapshot is the ranked trend list from one refresh.
type Snapshot struct {
	ComputedAt    time.Time `json:"computed_at"`
	DocumentCount int       `json:"document_count"`
	Trends        []Trend   `json:"trends"`
}

// Sort orders trends by count desc, then keyword asc.
func Sort(trends []Trend) {
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Count != trends[j].Count {
			return trends[i].Count > trends[j].Count
		}
		return trends[i].Keyword < trends[j].Keyword
	})
}

// Top returns at most n trends of the snapshot (n <= 0 returns all).
func (s *Snapshot) Top(n int) []Trend {
	if n <= 0 || n >= len(s.Trends) {
		return s.Trends
	}
	return s.Trends[:n]
}
