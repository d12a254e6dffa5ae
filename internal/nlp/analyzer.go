// Package nlp extracts keywords, sentiment and named entities from document text.
package nlp

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
)

const (
	// DefaultMaxKeywords is the number of keywords kept per document.
	DefaultMaxKeywords = 10

	minKeywordLen = 3
	minAcronymLen = 2
	maxAcronymLen = 6
)

// Analyzer is stateless; the zero value is not usable, use New.
type Analyzer struct {
	maxKeywords int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxKeywords overrides the number of keywords returned.
func WithMaxKeywords(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxKeywords = n
		}
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{maxKeywords: DefaultMaxKeywords}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze computes keywords, sentiment and entities for text.
func (a *Analyzer) Analyze(text string) document.Analysis {
	words := scan(text)
	return document.Analysis{
		Keywords:  a.keywords(words),
		Sentiment: scoreSentiment(words),
		Entities:  entities(words),
	}
}

// Enrich cleans the document text and attaches the analysis of the cleaned text.
func (a *Analyzer) Enrich(doc document.Document) document.Document {
	plain := CleanText(doc.Text())
	enriched := doc.WithTextPlain(plain)
	return enriched.WithAnalysis(a.Analyze(plain))
}

func (a *Analyzer) keywords(words []word) []string {
	type entry struct {
		token string
		count int
		first int
	}
	index := make(map[string]*entry)
	var order []*entry
	for i, w := range words {
		if !isKeywordCandidate(w.lower) {
			continue
		}
		e, ok := index[w.lower]
		if !ok {
			e = &entry{token: w.lower, first: i}
			index[w.lower] = e
			order = append(order, e)
		}
		e.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	n := min(a.maxKeywords, len(order))
	out := make([]string, n)
	for i := range n {
		out[i] = order[i].token
	}
	return out
}

func isKeywordCandidate(token string) bool {
	if utf8.RuneCountInString(token) < minKeywordLen || IsStopword(token) {
		return false
	}
	for _, r := range token {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func scoreSentiment(words []word) sentiment.Sentiment {
	var pos, neg int
	for i, w := range words {
		p := polarity(w.lower)
		if p == 0 {
			continue
		}
		if i > 0 && !w.afterPunct {
			if _, ok := negations[words[i-1].lower]; ok {
				p = -p
			}
		}
		if p > 0 {
			pos++
		} else {
			neg++
		}
	}
	return sentiment.FromScore(float64(pos-neg) / float64(max(1, pos+neg)))
}

func entities(words []word) []string {
	// Capitalized words seen mid-sentence qualify at sentence start too.
	midCap := make(map[string]bool)
	for _, w := range words {
		if !w.sentenceStart && isCapitalized(w.text) {
			midCap[w.text] = true
		}
	}

	seen := make(map[string]struct{})
	add := func(e string) {
		if e != "" {
			seen[e] = struct{}{}
		}
	}

	var run []string
	endRun := func() {
		add(strings.Join(run, " "))
		run = run[:0]
	}

	for _, w := range words {
		if isAcronym(w.text) {
			add(w.text)
		}
		qualifies := isCapitalized(w.text) && !IsStopword(w.lower) &&
			(!w.sentenceStart || midCap[w.text])
		if !qualifies || w.afterPunct || w.sentenceStart {
			endRun()
		}
		if qualifies {
			run = append(run, w.text)
		}
	}
	endRun()

	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isAcronym(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minAcronymLen || n > maxAcronymLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
