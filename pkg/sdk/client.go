package trendoscope

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/domain/trend"
	"github.com/kailas-cloud/trendoscope/internal/ingest/rss"
	"github.com/kailas-cloud/trendoscope/internal/ingest/scraper"
	"github.com/kailas-cloud/trendoscope/internal/nlp"
	profilerepo "github.com/kailas-cloud/trendoscope/internal/repository/profile"
	"github.com/kailas-cloud/trendoscope/internal/transport/local"
	embeddinguc "github.com/kailas-cloud/trendoscope/internal/usecase/embedding"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/trendoscope/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/trendoscope/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/trendoscope/internal/usecase/search"
	styleuc "github.com/kailas-cloud/trendoscope/internal/usecase/style"
	trendsuc "github.com/kailas-cloud/trendoscope/internal/usecase/trends"
	"github.com/kailas-cloud/trendoscope/internal/vectorstore"
)

const (
	defaultDataDir     = "data"
	defaultMaxTokens   = 1500
	defaultTemperature = 0.8
	defaultScraperRPS  = 2
	defaultHTTPTimeout = 15 * time.Second
	defaultLLMTimeout  = 60 * time.Second
	defaultUserAgent   = "trendoscope-sdk/1.0"
)

// Internal interfaces for substitution in tests.
type ingestUseCase interface {
	IngestBlog(ctx context.Context, blogURL string, limit int) (ingestuc.Report, error)
	IngestNews(ctx context.Context, limit int) (ingestuc.Report, error)
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

type profileUseCase interface {
	Analyze(ctx context.Context, sourceID string) (domstyle.Profile, error)
	Get(ctx context.Context, sourceID string) (domstyle.Profile, error)
	List(ctx context.Context) ([]string, error)
}

type generateUseCase interface {
	Generate(ctx context.Context, req generateuc.Request) (generateuc.Result, error)
}

type trendsUseCase interface {
	Refresh(ctx context.Context) (trend.Snapshot, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the trendoscope SDK entry point. It is safe for concurrent use.
type Client struct {
	ingestSvc   ingestUseCase
	searchSvc   searchUseCase
	profileSvc  profileUseCase
	generateSvc generateUseCase
	trendsSvc   trendsUseCase // nil without feeds
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a Client and loads the persisted index from the data directory.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dataDir:     defaultDataDir,
		dimensions:  domain.DefaultDimensions,
		scraperRPS:  defaultScraperRPS,
		httpTimeout: defaultHTTPTimeout,
		llmTimeout:  defaultLLMTimeout,
		userAgent:   defaultUserAgent,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(ctx, cfg, obs)
}

func wireClient(ctx context.Context, cfg *clientConfig, obs *observer) (*Client, error) {
	// Internal services log through zap; the SDK reports through the observer instead.
	nop := zap.NewNop()

	base := cfg.embedder
	if base == nil {
		base = local.NewEmbedder(cfg.dimensions)
	}
	emb := embeddinguc.NewInstrumentedEmbedder(base, "sdk", "", nil, nop)

	store := vectorstore.New(cfg.dataDir, emb, nil, nop)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("trendoscope: load index: %w", err)
	}

	analyzer := nlp.New()
	blogs := scraper.New(scraper.Config{
		UserAgent: cfg.userAgent,
		RPS:       cfg.scraperRPS,
		Burst:     1,
		Timeout:   cfg.httpTimeout,
	}, nop)

	var news ingestuc.NewsSource
	var trendNews trendsuc.NewsSource
	if len(cfg.feeds) > 0 {
		sources := make([]rss.Source, 0, len(cfg.feeds))
		for _, f := range cfg.feeds {
			sources = append(sources, rss.Source{Name: f.Name, URL: f.URL})
		}
		agg := rss.New(rss.Config{
			Sources:   sources,
			Timeout:   cfg.httpTimeout,
			UserAgent: cfg.userAgent,
		}, nop)
		news, trendNews = agg, agg
	}

	text := cfg.text
	if text == nil && cfg.newText != nil {
		text = cfg.newText(cfg.llmTimeout)
	}
	if text == nil {
		text = noopTextProvider{}
	}

	profiles := profilerepo.New(cfg.dataDir)
	style := styleuc.New(store, profiles, nop)

	c := &Client{
		ingestSvc:   ingestuc.New(blogs, news, analyzer, store, style, profiles, nop),
		searchSvc:   searchuc.New(store),
		profileSvc:  style,
		generateSvc: generateuc.New(text, profiles, store, nil, nop),
		healthSvc:   healthuc.New(store),
		obs:         obs,
	}
	if trendNews != nil {
		c.trendsSvc = trendsuc.New(trendNews, analyzer, 0, nop)
	}
	return c, nil
}

// IngestBlog scrapes up to limit posts of blogURL, indexes the new ones and rebuilds the
// blog's style profile.
func (c *Client) IngestBlog(ctx context.Context, blogURL string, limit int) (rep IngestReport, err error) {
	ctx, usage := domain.NewContextWithUsage(ctx)
	start := time.Now()
	defer func() { c.obs.observe("ingest_blog", start, usageOf(usage), err) }()

	r, err := c.ingestSvc.IngestBlog(ctx, blogURL, limit)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest blog: %w", err)
	}
	return reportFromDomain(r), nil
}

// IngestNews fetches the configured feeds and indexes up to limit new items.
func (c *Client) IngestNews(ctx context.Context, limit int) (rep IngestReport, err error) {
	ctx, usage := domain.NewContextWithUsage(ctx)
	start := time.Now()
	defer func() { c.obs.observe("ingest_news", start, usageOf(usage), err) }()

	r, err := c.ingestSvc.IngestNews(ctx, limit)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest news: %w", err)
	}
	return reportFromDomain(r), nil
}

// Search ranks indexed documents for req.
func (c *Client) Search(ctx context.Context, req SearchRequest) (hits []SearchResult, err error) {
	ctx, usage := domain.NewContextWithUsage(ctx)
	start := time.Now()
	defer func() { c.obs.observe("search", start, usageOf(usage), err) }()

	r, err := request.New(req.Query, mode.Mode(req.Mode), req.K, req.MinScore, req.Source)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", ErrInvalidArgument, err)
	}
	results, err := c.searchSvc.Search(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits = make([]SearchResult, 0, len(results))
	for i := range results {
		hits = append(hits, searchResultFromDomain(&results[i]))
	}
	return hits, nil
}

// Profile returns the stored style profile of source.
func (c *Client) Profile(ctx context.Context, source string) (p Profile, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile_get", start, opUsage{}, err) }()

	dp, err := c.profileSvc.Get(ctx, source)
	if err != nil {
		return Profile{}, err
	}
	return profileFromDomain(dp), nil
}

// Profiles lists the sources with a stored style profile.
func (c *Client) Profiles(ctx context.Context) (ids []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile_list", start, opUsage{}, err) }()

	return c.profileSvc.List(ctx)
}

// AnalyzeProfile rebuilds the style profile of source from its indexed documents.
func (c *Client) AnalyzeProfile(ctx context.Context, source string) (p Profile, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile_analyze", start, opUsage{}, err) }()

	dp, err := c.profileSvc.Analyze(ctx, source)
	if err != nil {
		return Profile{}, err
	}
	return profileFromDomain(dp), nil
}

// Generate writes a post about req.Topic in the style of req.Source.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (p Post, err error) {
	ctx, usage := domain.NewContextWithUsage(ctx)
	start := time.Now()
	defer func() { c.obs.observe("generate", start, usageOf(usage), err) }()

	m, err := domstyle.ParseMode(string(req.Mode))
	if err != nil {
		return Post{}, fmt.Errorf("generate: %w: %w", ErrInvalidArgument, err)
	}
	res, err := c.generateSvc.Generate(ctx, generateuc.Request{
		SourceID:     req.Source,
		Topic:        req.Topic,
		Mode:         m,
		UseRetrieval: req.UseRetrieval,
		K:            req.K,
	})
	if err != nil {
		return Post{}, fmt.Errorf("generate: %w", err)
	}
	return postFromDomain(res), nil
}

// Trends fetches the latest news and returns the top n keywords (n <= 0 returns all).
func (c *Client) Trends(ctx context.Context, n int) (snap TrendSnapshot, err error) {
	start := time.Now()
	defer func() { c.obs.observe("trends", start, opUsage{}, err) }()

	if c.trendsSvc == nil {
		return TrendSnapshot{}, fmt.Errorf("trends: no feeds (use WithFeeds): %w", ErrNotConfigured)
	}
	s, err := c.trendsSvc.Refresh(ctx)
	if err != nil {
		return TrendSnapshot{}, fmt.Errorf("trends: %w", err)
	}
	return snapshotFromDomain(s, n), nil
}

// Health checks that the data directory is usable.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

func usageOf(u *domain.TokenUsage) opUsage {
	return opUsage{embedding: int64(u.EmbeddingTokens), generation: int64(u.GenerationTokens)}
}
