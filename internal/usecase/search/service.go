package search

import (
	"context"
	"fmt"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
)

// Service handles document search in semantic and hybrid modes.
type Service struct {
	index Index
}

// New creates a search service.
func New(index Index) *Service {
	return &Service{index: index}
}

// Search returns documents ranked for req.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	var keep func(*domdoc.Document) bool
	if src := req.Source(); src != "" {
		keep = func(d *domdoc.Document) bool { return d.Source() == src }
	}

	results, err := s.index.SearchFiltered(ctx, req.Query(), req.K(), keep)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if req.Mode() == mode.Hybrid {
		kw := rankByKeywords(s.index.Documents(), req.Query(), req.K(), keep)
		results = fuseRRF(results, kw, req.K())
	}

	// Post-filter: min_score (semantic scores only; RRF scores are not comparable)
	if req.MinScore() > 0 && req.Mode() == mode.Semantic {
		filtered := results[:0]
		for _, r := range results {
			if r.Score() >= req.MinScore() {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	return results, nil
}
