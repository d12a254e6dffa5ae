package search

import (
	"sort"

	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges vector and keyword rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// Ties keep the vector ranking order, then the keyword ranking order.
func fuseRRF(vector, keyword []result.Result, k int) []result.Result {
	type scored struct {
		res   result.Result
		score float64
		order int
	}

	merged := make(map[string]*scored)
	order := 0
	add := func(list []result.Result) {
		for rank, r := range list {
			s := 1.0 / float64(rrfK+rank+1)
			doc := r.Document()
			if existing, ok := merged[doc.URL()]; ok {
				existing.score += s
				continue
			}
			merged[doc.URL()] = &scored{res: r, score: s, order: order}
			order++
		}
	}
	add(vector)
	add(keyword)

	all := make([]*scored, 0, len(merged))
	for _, s := range merged {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].order < all[j].order
	})

	if len(all) > k {
		all = all[:k]
	}
	results := make([]result.Result, len(all))
	for i, s := range all {
		results[i] = result.New(s.res.Document(), s.score)
	}
	return results
}
