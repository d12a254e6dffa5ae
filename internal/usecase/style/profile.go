package style

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/nlp"
)

// Aggregation limits.
const (
	MaxPhrases      = 20
	MaxVocabulary   = 50
	MaxTags         = 10
	MaxExamples     = 3
	ExampleRunes    = 500
	minPhraseFreq   = 2
	minVocabRunes   = 5
	vocabMinDocs    = 4
	vocabMaxDocFrac = 0.5
)

// BuildProfile aggregates documents into a style profile. The result does not depend on
// input order. SavedAt is left zero for the caller to stamp.
func BuildProfile(docs []domdoc.Document, sourceID string) (domstyle.Profile, error) {
	if len(docs) == 0 {
		return domstyle.Profile{}, fmt.Errorf("no documents for %q: %w", sourceID, domain.ErrInsufficientData)
	}

	sorted := make([]domdoc.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].URL() < sorted[j].URL() })

	tokens := make([][]string, len(sorted))
	for i := range sorted {
		tokens[i] = nlp.Tokenize(sorted[i].TextPlain())
	}

	p := domstyle.Profile{
		SourceID:      sourceID,
		Version:       domstyle.ProfileVersion,
		DocumentCount: len(sorted),
		CommonPhrases: commonPhrases(tokens),
		Vocabulary:    vocabulary(tokens),
		AvgLength:     avgLength(sorted),
		AvgSentiment:  avgSentiment(sorted),
		TypicalTags:   typicalTags(sorted),
		Examples:      examples(sorted),
	}
	if strings.HasPrefix(sourceID, "http://") || strings.HasPrefix(sourceID, "https://") {
		p.BlogURL = sourceID
	}
	return p, nil
}

// commonPhrases counts word bigrams and trigrams that occur at least twice across the corpus.
func commonPhrases(tokens [][]string) []string {
	freq := map[string]int{}
	for _, toks := range tokens {
		for n := 2; n <= 3; n++ {
			for i := 0; i+n <= len(toks); i++ {
				gram := toks[i : i+n]
				if allStopwords(gram) || !hasLetter(gram) {
					continue
				}
				freq[strings.Join(gram, " ")]++
			}
		}
	}
	return topByFreq(freq, minPhraseFreq, MaxPhrases)
}

// vocabulary keeps distinctive long words: with enough documents, words present in more
// than half of them are treated as the author's filler and dropped.
func vocabulary(tokens [][]string) []string {
	total := map[string]int{}
	docFreq := map[string]int{}
	for _, toks := range tokens {
		seen := map[string]struct{}{}
		for _, t := range toks {
			if utf8.RuneCountInString(t) < minVocabRunes || nlp.IsStopword(t) || !hasLetter([]string{t}) {
				continue
			}
			total[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	if len(tokens) >= vocabMinDocs {
		maxDocs := int(math.Floor(vocabMaxDocFrac * float64(len(tokens))))
		for t, df := range docFreq {
			if df > maxDocs {
				delete(total, t)
			}
		}
	}
	return topByFreq(total, 1, MaxVocabulary)
}

func avgLength(docs []domdoc.Document) float64 {
	var sum int
	for i := range docs {
		sum += docs[i].Length()
	}
	return float64(sum) / float64(len(docs))
}

func avgSentiment(docs []domdoc.Document) sentiment.Sentiment {
	items := make([]sentiment.Sentiment, len(docs))
	for i := range docs {
		items[i] = docs[i].Sentiment()
	}
	return sentiment.Mean(items)
}

func typicalTags(docs []domdoc.Document) []string {
	freq := map[string]int{}
	for i := range docs {
		for _, kw := range docs[i].Keywords() {
			freq[kw]++
		}
	}
	return topByFreq(freq, 1, MaxTags)
}

// examples picks the documents closest to the median length. docs must be URL-sorted.
func examples(docs []domdoc.Document) []string {
	lengths := make([]int, len(docs))
	for i := range docs {
		lengths[i] = docs[i].Length()
	}
	median := medianOf(lengths)

	idx := make([]int, len(docs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(float64(lengths[idx[a]])-median) < math.Abs(float64(lengths[idx[b]])-median)
	})

	n := min(MaxExamples, len(idx))
	out := make([]string, n)
	for i := range n {
		out[i] = excerpt(docs[idx[i]].TextPlain(), ExampleRunes)
	}
	return out
}

func medianOf(v []int) float64 {
	s := make([]int, len(v))
	copy(s, v)
	sort.Ints(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return float64(s[mid])
	}
	return float64(s[mid-1]+s[mid]) / 2
}

// excerpt returns the first n runes of s.
func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

// topByFreq returns keys with count >= minFreq ordered by count desc, then lexicographically.
func topByFreq(freq map[string]int, minFreq, limit int) []string {
	keys := make([]string, 0, len(freq))
	for k, c := range freq {
		if c >= minFreq {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func allStopwords(gram []string) bool {
	for _, t := range gram {
		if !nlp.IsStopword(t) {
			return false
		}
	}
	return true
}

func hasLetter(gram []string) bool {
	for _, t := range gram {
		for _, r := range t {
			if unicode.IsLetter(r) {
				return true
			}
		}
	}
	return false
}
