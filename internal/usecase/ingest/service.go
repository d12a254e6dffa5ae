// Package ingest runs the fetch, analyze and index pipeline for blogs and news.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	dombatch "github.com/kailas-cloud/trendoscope/internal/domain/batch"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
	"github.com/kailas-cloud/trendoscope/internal/repository/profile"
)

// NewsSourceID is the metadata key of the news pipeline.
const NewsSourceID = "news"

// DefaultLimit is used when a request passes a non-positive limit.
const DefaultLimit = 20

// MaxLimit caps the number of documents fetched per request.
const MaxLimit = 500

// Pipeline labels for metrics.
const (
	pipelineBlog = "blog"
	pipelineNews = "news"
)

// Report summarizes one ingest run.
type Report struct {
	SourceID       string            `json:"source_id"`
	Fetched        int               `json:"fetched"`
	Added          int               `json:"added"`
	Skipped        int               `json:"skipped"`
	ProfileUpdated bool              `json:"profile_updated"`
	Items          []dombatch.Result `json:"-"`
}

// Service orchestrates ingestion. Runs are sequential per request.
type Service struct {
	blogs    BlogSource
	news     NewsSource
	enricher Enricher
	store    DocumentStore
	style    StyleAnalyzer
	meta     MetadataWriter
	now      func() time.Time
	logger   *zap.Logger
}

// New creates an ingest service. news may be nil when no feeds are configured.
func New(
	blogs BlogSource, news NewsSource, enricher Enricher,
	store DocumentStore, style StyleAnalyzer, meta MetadataWriter, logger *zap.Logger,
) *Service {
	return &Service{
		blogs: blogs, news: news, enricher: enricher,
		store: store, style: style, meta: meta,
		now: time.Now, logger: logger,
	}
}

// IngestBlog scrapes blogURL, indexes new posts and rebuilds the blog's style profile.
// The profile is rebuilt even when nothing new was added, as long as the source has documents.
func (s *Service) IngestBlog(ctx context.Context, blogURL string, limit int) (Report, error) {
	docs, err := s.blogs.Scrape(ctx, blogURL, clampLimit(limit))
	if err != nil {
		return Report{}, fmt.Errorf("scrape blog: %w", err)
	}

	rep, err := s.index(ctx, pipelineBlog, blogURL, docs)
	if err != nil {
		return rep, err
	}

	stored := s.store.DocumentsBySource(blogURL)
	if len(stored) > 0 {
		if _, err := s.style.Analyze(ctx, blogURL); err != nil {
			return rep, fmt.Errorf("rebuild style profile: %w", err)
		}
		rep.ProfileUpdated = true
	}

	if err := s.saveMetadata(ctx, blogURL, urlsOf(stored)); err != nil {
		return rep, err
	}
	return rep, nil
}

// IngestNews fetches the configured feeds and indexes new articles.
func (s *Service) IngestNews(ctx context.Context, limit int) (Report, error) {
	if s.news == nil {
		return Report{}, fmt.Errorf("news ingestion is not configured: %w", domain.ErrInvalidArgument)
	}
	docs, err := s.news.Fetch(ctx, clampLimit(limit))
	if err != nil {
		return Report{}, fmt.Errorf("fetch news: %w", err)
	}

	rep, err := s.index(ctx, pipelineNews, NewsSourceID, docs)
	if err != nil {
		return rep, err
	}
	if err := s.saveMetadata(ctx, NewsSourceID, urlsOf(docs)); err != nil {
		return rep, err
	}
	return rep, nil
}

// index enriches docs and appends the ones not stored yet.
func (s *Service) index(ctx context.Context, pipeline, sourceID string, docs []domdoc.Document) (Report, error) {
	rep := Report{SourceID: sourceID, Fetched: len(docs), Items: make([]dombatch.Result, len(docs))}

	fresh := make([]domdoc.Document, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		u := docs[i].URL()
		if _, dup := seen[u]; dup || s.store.Contains(u) {
			rep.Items[i] = dombatch.NewDuplicate(u)
			continue
		}
		seen[u] = struct{}{}
		fresh = append(fresh, s.enricher.Enrich(docs[i]))
		rep.Items[i] = dombatch.NewAdded(u)
	}

	added, err := s.store.Add(ctx, fresh)
	if err != nil {
		for i := range rep.Items {
			if rep.Items[i].Status() == dombatch.StatusAdded {
				rep.Items[i] = dombatch.NewError(rep.Items[i].URL(), err)
			}
		}
		metrics.IngestDocumentsTotal.WithLabelValues(pipeline, string(dombatch.StatusError)).Add(float64(len(fresh)))
		return rep, fmt.Errorf("index documents: %w", err)
	}

	rep.Added = added
	rep.Skipped = rep.Fetched - added
	metrics.IngestDocumentsTotal.WithLabelValues(pipeline, string(dombatch.StatusAdded)).Add(float64(added))
	metrics.IngestDocumentsTotal.WithLabelValues(pipeline, string(dombatch.StatusDuplicate)).Add(float64(rep.Skipped))

	s.logger.Info("ingest finished",
		zap.String("pipeline", pipeline),
		zap.String("source", sourceID),
		zap.Int("fetched", rep.Fetched),
		zap.Int("added", rep.Added),
		zap.Int("skipped", rep.Skipped),
	)
	return rep, nil
}

func (s *Service) saveMetadata(ctx context.Context, sourceID string, urls []string) error {
	m := profile.Metadata{
		SourceID:      sourceID,
		DocumentCount: len(urls),
		URLs:          urls,
		SavedAt:       s.now().UTC(),
	}
	if err := s.meta.SaveMetadata(ctx, m); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func urlsOf(docs []domdoc.Document) []string {
	out := make([]string, len(docs))
	for i := range docs {
		out[i] = docs[i].URL()
	}
	return out
}
