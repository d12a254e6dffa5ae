// Package trends keeps an in-memory ranking of keywords over the latest news batch.
package trends

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/trend"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
)

// DefaultNewsLimit is the number of news items analyzed per refresh.
const DefaultNewsLimit = 100

// Service computes and serves trend snapshots.
type Service struct {
	news     NewsSource
	enricher Enricher
	limit    int
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot trend.Snapshot
}

// New creates a trend service. limit <= 0 uses DefaultNewsLimit.
func New(news NewsSource, enricher Enricher, limit int, logger *zap.Logger) *Service {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	return &Service{news: news, enricher: enricher, limit: limit, now: time.Now, logger: logger}
}

// Refresh fetches the latest news and replaces the snapshot.
// On failure the previous snapshot is kept.
func (s *Service) Refresh(ctx context.Context) (trend.Snapshot, error) {
	if s.news == nil {
		return trend.Snapshot{}, fmt.Errorf("no news sources configured: %w", domain.ErrInvalidArgument)
	}
	docs, err := s.news.Fetch(ctx, s.limit)
	if err != nil {
		metrics.TrendRefreshTotal.WithLabelValues("error").Inc()
		return trend.Snapshot{}, fmt.Errorf("fetch news: %w", err)
	}

	for i := range docs {
		docs[i] = s.enricher.Enrich(docs[i])
	}
	snap := trend.Snapshot{
		ComputedAt:    s.now().UTC(),
		DocumentCount: len(docs),
		Trends:        Compute(docs),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	metrics.TrendRefreshTotal.WithLabelValues("success").Inc()
	s.logger.Info("trends refreshed", zap.Int("documents", len(docs)), zap.Int("keywords", len(snap.Trends)))
	return snap, nil
}

// Snapshot returns the latest snapshot (zero value before the first refresh).
func (s *Service) Snapshot() trend.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Top returns at most n ranked trends (n <= 0 returns all).
func (s *Service) Top(n int) []trend.Trend {
	snap := s.Snapshot()
	return snap.Top(n)
}

// SuggestTopics returns the keywords of the top n trends as generation topics.
func (s *Service) SuggestTopics(n int) []string {
	top := s.Top(n)
	out := make([]string, len(top))
	for i := range top {
		out[i] = top[i].Keyword
	}
	return out
}

// Compute counts each keyword once per document and ranks the result.
// A keyword seen in a single document is not a trend.
func Compute(docs []domdoc.Document) []trend.Trend {
	type acc struct {
		count   int
		sources map[string]struct{}
	}
	counts := map[string]*acc{}

	for i := range docs {
		seen := map[string]struct{}{}
		for _, kw := range docs[i].Keywords() {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			a, ok := counts[kw]
			if !ok {
				a = &acc{sources: map[string]struct{}{}}
				counts[kw] = a
			}
			a.count++
			if src := docs[i].Source(); src != "" {
				a.sources[src] = struct{}{}
			}
		}
	}

	out := make([]trend.Trend, 0, len(counts))
	for kw, a := range counts {
		if a.count < 2 {
			continue
		}
		sources := make([]string, 0, len(a.sources))
		for src := range a.sources {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		out = append(out, trend.Trend{Keyword: kw, Count: a.count, Sources: sources})
	}
	trend.Sort(out)
	return out
}
