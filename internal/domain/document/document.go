package document

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
)

// MaxTextSize is the maximum raw text size in bytes.
const MaxTextSize = 1 << 20 // 1MB

// Analysis is the NLP enrichment attached to a document.
type Analysis struct {
	Keywords  []string
	Sentiment sentiment.Sentiment
	Entities  []string
}

// Document is a scraped post or news article (immutable value object).
// The URL is the unique key.
type Document struct {
	url       string
	title     string
	text      string
	textPlain string
	published time.Time
	source    string
	analysis  Analysis
}

// New validates and creates a Document.
// URL: absolute http(s). Text: non-empty, max 1MB. Title may be empty.
func New(rawURL, title, text string, published time.Time, source string) (Document, error) {
	if rawURL == "" {
		return Document{}, fmt.Errorf("document URL is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Document{}, fmt.Errorf("document URL must be an absolute http(s) URL: %q", rawURL)
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("text is required")
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}

	return Document{
		url:       rawURL,
		title:     strings.TrimSpace(title),
		text:      text,
		published: published.UTC(),
		source:    source,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	rawURL, title, text, textPlain string, published time.Time, source string, a Analysis,
) Document {
	return Document{
		url: rawURL, title: title, text: text, textPlain: textPlain,
		published: published, source: source, analysis: a,
	}
}

// URL returns the unique document URL.
func (d *Document) URL() string { return d.url }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Text returns the raw text.
func (d *Document) Text() string { return d.text }

// TextPlain returns the cleaned text, falling back to the raw text before cleaning.
func (d *Document) TextPlain() string {
	if d.textPlain == "" {
		return d.text
	}
	return d.textPlain
}

// Published returns the publish timestamp (zero if unknown).
func (d *Document) Published() time.Time { return d.published }

// Source returns the blog or feed identifier the document was ingested from.
func (d *Document) Source() string { return d.source }

// Keywords returns keywords in rank order.
func (d *Document) Keywords() []string { return d.analysis.Keywords }

// Sentiment returns the document sentiment.
func (d *Document) Sentiment() sentiment.Sentiment { return d.analysis.Sentiment }

// Entities returns recognized names and organizations.
func (d *Document) Entities() []string { return d.analysis.Entities }

// Analysis returns the full NLP enrichment.
func (d *Document) Analysis() Analysis { return d.analysis }

// WithTextPlain returns a copy with the cleaned text set.
func (d *Document) WithTextPlain(plain string) Document {
	c := *d
	c.textPlain = plain
	return c
}

// WithAnalysis returns an enriched copy. Slices are cloned so the caller's copies stay independent.
func (d *Document) WithAnalysis(a Analysis) Document {
	c := *d
	c.analysis = Analysis{
		Keywords:  cloneStrings(a.Keywords),
		Sentiment: a.Sentiment,
		Entities:  cloneStrings(a.Entities),
	}
	return c
}

// Length returns the rune length of the raw text.
func (d *Document) Length() int { return len([]rune(d.text)) }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
