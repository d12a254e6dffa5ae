// Package rss fetches configured RSS/Atom feeds concurrently and merges them into one
// news batch ordered by publish time.
package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
)

const maxFeedSize = 10 << 20

// Source is one configured feed.
type Source struct {
	Name string
	URL  string
}

// Config holds aggregator settings.
type Config struct {
	Sources     []Source
	Concurrency int
	Timeout     time.Duration
	UserAgent   string
}

// Aggregator merges news from several feeds.
type Aggregator struct {
	sources     []Source
	concurrency int
	userAgent   string
	client      *http.Client
	logger      *zap.Logger
}

// New creates an aggregator.
func New(cfg Config, logger *zap.Logger) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Aggregator{
		sources:     cfg.Sources,
		concurrency: cfg.Concurrency,
		userAgent:   cfg.UserAgent,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// Sources returns the configured feeds.
func (a *Aggregator) Sources() []Source { return a.sources }

// Fetch downloads every feed, dedupes items by URL, sorts by publish time (newest first,
// undated last) and keeps at most limit items (limit <= 0 keeps all).
// Failing feeds are logged and skipped; if every feed fails the error wraps domain.ErrProvider.
func (a *Aggregator) Fetch(ctx context.Context, limit int) ([]domdoc.Document, error) {
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("no news sources configured: %w", domain.ErrInvalidArgument)
	}

	// Per-source slots keep the merge independent of completion order.
	perSource := make([][]domdoc.Document, len(a.sources))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, src := range a.sources {
		g.Go(func() error {
			docs, err := a.fetchFeed(gctx, src)
			if err != nil {
				failed.Add(1)
				metrics.FeedFetchTotal.WithLabelValues(src.Name, "error").Inc()
				a.logger.Warn("feed fetch failed", zap.String("feed", src.Name), zap.String("url", src.URL), zap.Error(err))
				return nil
			}
			metrics.FeedFetchTotal.WithLabelValues(src.Name, "success").Inc()
			perSource[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error
	}
	if int(failed.Load()) == len(a.sources) {
		return nil, fmt.Errorf("all %d feeds failed: %w", len(a.sources), domain.ErrProvider)
	}

	var all []domdoc.Document
	for _, docs := range perSource {
		all = append(all, docs...)
	}
	merged := merge(all, limit)
	a.logger.Info("news fetched",
		zap.Int("feeds", len(a.sources)),
		zap.Int32("failed", failed.Load()),
		zap.Int("items", len(merged)),
	)
	return merged, nil
}

func (a *Aggregator) fetchFeed(ctx context.Context, src Source) ([]domdoc.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get feed: status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(feed.Items))
	for _, item := range feed.Items {
		doc, err := toDocument(item, src.Name)
		if err != nil {
			a.logger.Debug("skip feed item", zap.String("feed", src.Name), zap.String("link", item.Link), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func toDocument(item *gofeed.Item, source string) (domdoc.Document, error) {
	text := item.Content
	if strings.TrimSpace(text) == "" {
		text = item.Description
	}
	if strings.TrimSpace(text) == "" {
		text = item.Title
	}

	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	doc, err := domdoc.New(strings.TrimSpace(item.Link), item.Title, text, published, source)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}

// merge dedupes by URL (first wins), then sorts newest first. Ties keep URL order for determinism.
func merge(docs []domdoc.Document, limit int) []domdoc.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]domdoc.Document, 0, len(docs))
	for i := range docs {
		if _, ok := seen[docs[i].URL()]; ok {
			continue
		}
		seen[docs[i].URL()] = struct{}{}
		out = append(out, docs[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Published(), out[j].Published()
		if !pi.Equal(pj) {
			if pi.IsZero() || pj.IsZero() {
				return pj.IsZero()
			}
			return pi.After(pj)
		}
		return out[i].URL() < out[j].URL()
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
