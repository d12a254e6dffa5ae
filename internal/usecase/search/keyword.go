package search

import (
	"sort"
	"strings"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	"github.com/kailas-cloud/trendoscope/internal/nlp"
)

// rankByKeywords scores documents by how many query terms appear among their keywords,
// entities or title words. Documents without a match are dropped. Score is the matched
// fraction of query terms.
func rankByKeywords(docs []domdoc.Document, query string, k int, keep func(*domdoc.Document) bool) []result.Result {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i := range docs {
		if keep != nil && !keep(&docs[i]) {
			continue
		}
		vocab := documentTerms(&docs[i])
		matched := 0
		for _, t := range terms {
			if _, ok := vocab[t]; ok {
				matched++
			}
		}
		if matched > 0 {
			hits = append(hits, scored{idx: i, score: float64(matched) / float64(len(terms))})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	k = min(k, len(hits))
	out := make([]result.Result, k)
	for i := range k {
		out[i] = result.New(docs[hits[i].idx], hits[i].score)
	}
	return out
}

func queryTerms(query string) []string {
	seen := map[string]struct{}{}
	var terms []string
	for _, t := range nlp.Tokenize(query) {
		if nlp.IsStopword(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

func documentTerms(d *domdoc.Document) map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, kw := range d.Keywords() {
		vocab[strings.ToLower(kw)] = struct{}{}
	}
	for _, e := range d.Entities() {
		for _, t := range nlp.Tokenize(e) {
			vocab[t] = struct{}{}
		}
	}
	for _, t := range nlp.Tokenize(d.Title()) {
		vocab[t] = struct{}{}
	}
	return vocab
}
