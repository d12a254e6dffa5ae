// Package style holds the aggregated writing-style profile of one author corpus
// and the closed set of generation style modes.
package style

import (
	"time"

	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
)

// ProfileVersion is the schema version written into persisted profiles.
const ProfileVersion = "1"

// Profile is a statistical/lexical summary of one source's writing.
// It is replaced wholesale on every analysis run.
type Profile struct {
	SourceID      string              `json:"source_id"`
	BlogURL       string              `json:"blog_url,omitempty"`
	SavedAt       time.Time           `json:"saved_at"`
	Version       string              `json:"version"`
	DocumentCount int                 `json:"document_count"`
	CommonPhrases []string            `json:"common_phrases"`
	Vocabulary    []string            `json:"vocabulary"`
	AvgLength     float64             `json:"avg_length"`
	AvgSentiment  sentiment.Sentiment `json:"avg_sentiment"`
	TypicalTags   []string            `json:"typical_tags"`
	Examples      []string            `json:"examples"`
}
