package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultK       = 5
	MaxK           = 100
)

// Request is a validated search query.
type Request struct {
	query    string
	mode     mode.Mode
	k        int
	minScore float64
	source   string
}

// New validates and normalizes search parameters.
// An empty mode means semantic. k <= 0 defaults to DefaultK; k above MaxK is clamped. The store clamps k again to its size.
func New(query string, m mode.Mode, k int, minScore float64, source string) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Semantic
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode %q", m)
	}
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}
	if minScore < -1 || minScore > 1 {
		return Request{}, fmt.Errorf("min_score must be between -1 and 1")
	}

	return Request{query: query, mode: m, k: k, minScore: minScore, source: source}, nil
}

// Query returns the search text.
func (r *Request) Query() string { return r.query }

// Mode returns the ranking mode.
func (r *Request) Mode() mode.Mode { return r.mode }

// K returns the maximum number of hits.
func (r *Request) K() int { return r.k }

// MinScore returns the similarity floor (0 = none).
func (r *Request) MinScore() float64 { return r.minScore }

// Source returns the optional source filter.
func (r *Request) Source() string { return r.source }
