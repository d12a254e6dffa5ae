package vectorstore

import (
	"time"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
)

// documentDTO is one record of a documents.<gen>.json file.
type documentDTO struct {
	URL       string              `json:"url"`
	Title     string              `json:"title"`
	Text      string              `json:"text"`
	TextPlain string              `json:"text_plain"`
	Published time.Time           `json:"published"`
	Keywords  []string            `json:"keywords"`
	Sentiment sentiment.Sentiment `json:"sentiment"`
	Entities  []string            `json:"entities"`
	Source    string              `json:"source,omitempty"`
}

func toDTO(d *domdoc.Document) documentDTO {
	return documentDTO{
		URL:       d.URL(),
		Title:     d.Title(),
		Text:      d.Text(),
		TextPlain: d.TextPlain(),
		Published: d.Published(),
		Keywords:  nonNil(d.Keywords()),
		Sentiment: d.Sentiment(),
		Entities:  nonNil(d.Entities()),
		Source:    d.Source(),
	}
}

func (d documentDTO) toDomain() domdoc.Document {
	return domdoc.Reconstruct(d.URL, d.Title, d.Text, d.TextPlain, d.Published, d.Source, domdoc.Analysis{
		Keywords:  d.Keywords,
		Sentiment: d.Sentiment,
		Entities:  d.Entities,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
