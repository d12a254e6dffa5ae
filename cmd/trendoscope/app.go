package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/config"
	"github.com/kailas-cloud/trendoscope/internal/db"
	dbValkey "github.com/kailas-cloud/trendoscope/internal/db/valkey"
	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/ingest/rss"
	"github.com/kailas-cloud/trendoscope/internal/ingest/scraper"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
	"github.com/kailas-cloud/trendoscope/internal/nlp"
	budgetrepo "github.com/kailas-cloud/trendoscope/internal/repository/budget"
	"github.com/kailas-cloud/trendoscope/internal/repository/embcache"
	profilerepo "github.com/kailas-cloud/trendoscope/internal/repository/profile"
	"github.com/kailas-cloud/trendoscope/internal/scheduler"
	"github.com/kailas-cloud/trendoscope/internal/transport/claude"
	"github.com/kailas-cloud/trendoscope/internal/transport/local"
	openaiTransport "github.com/kailas-cloud/trendoscope/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/trendoscope/internal/usecase/embedding"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/trendoscope/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/trendoscope/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/trendoscope/internal/usecase/search"
	styleuc "github.com/kailas-cloud/trendoscope/internal/usecase/style"
	trendsuc "github.com/kailas-cloud/trendoscope/internal/usecase/trends"
	usageuc "github.com/kailas-cloud/trendoscope/internal/usecase/usage"
	"github.com/kailas-cloud/trendoscope/internal/vectorstore"
)

// app is the composition root shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	cache db.Store // nil when cache.driver is none

	store    *vectorstore.Store
	profiles *profilerepo.Repo
	style    *styleuc.Service
	ingest   *ingestuc.Service
	search   *searchuc.Service
	generate *generateuc.Service
	trends   *trendsuc.Service
	usage    *usageuc.Service
	health   *healthuc.Service
}

// newApp wires storage, providers and use cases from configuration.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if cfg.Cache.Driver == "valkey" {
		cache, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create valkey store: %w", err)
		}
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cache.WaitForReady(ctx, timeout); err != nil {
			cache.Close()
			return nil, fmt.Errorf("valkey not ready: %w", err)
		}
		a.cache = cache
		logger.Info("Connected to valkey", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	embBudget := a.budgetTracker(ctx, "embedding:"+cfg.Embedding.Provider, cfg.Embedding.Budget)
	llmBudget := a.budgetTracker(ctx, "llm:"+cfg.LLM.Provider, cfg.LLM.Budget)

	// Pass nil interfaces, not typed nil pointers, when budgets are off.
	var embChecker embeddinguc.BudgetChecker
	if embBudget != nil {
		embChecker = embBudget
	}
	var llmChecker generateuc.BudgetChecker
	var llmReader usageuc.BudgetReader
	if llmBudget != nil {
		llmChecker = llmBudget
		llmReader = llmBudget
	}

	base := a.baseEmbedder()
	docEmbedder := a.embedderChain(base, cfg.Embedding.DocumentInstruction, embChecker)
	queryEmbedder := a.embedderChain(base, cfg.Embedding.QueryInstruction, embChecker)

	a.store = vectorstore.New(cfg.Storage.DataDir, docEmbedder, metrics.VectorStoreDocuments, logger).
		WithQueryEmbedder(queryEmbedder)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load vector store: %w", err)
	}
	logger.Info("Vector store loaded",
		zap.String("dir", cfg.Storage.DataDir),
		zap.Int("documents", a.store.Len()),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	analyzer := nlp.New()
	blogs := scraper.New(scraper.Config{
		UserAgent:     cfg.Scraper.UserAgent,
		RPS:           cfg.Scraper.RPS,
		Burst:         cfg.Scraper.Burst,
		Timeout:       time.Duration(cfg.Scraper.TimeoutSec) * time.Second,
		LinkSelectors: cfg.Scraper.LinkSelectors,
		BodySelectors: cfg.Scraper.BodySelectors,
	}, logger)

	// Interface-typed so that no configured feeds leaves a true nil.
	var news ingestuc.NewsSource
	var trendNews trendsuc.NewsSource
	if len(cfg.News.Sources) > 0 {
		sources := make([]rss.Source, 0, len(cfg.News.Sources))
		for _, s := range cfg.News.Sources {
			sources = append(sources, rss.Source{Name: s.Name, URL: s.URL})
		}
		agg := rss.New(rss.Config{
			Sources:     sources,
			Concurrency: cfg.News.Concurrency,
			Timeout:     time.Duration(cfg.News.TimeoutSec) * time.Second,
			UserAgent:   cfg.Scraper.UserAgent,
		}, logger)
		news, trendNews = agg, agg
	}

	llm := a.textProvider()

	a.profiles = profilerepo.New(cfg.Storage.DataDir)
	a.style = styleuc.New(a.store, a.profiles, logger)
	a.ingest = ingestuc.New(blogs, news, analyzer, a.store, a.style, a.profiles, logger)
	a.search = searchuc.New(a.store)
	a.generate = generateuc.New(llm, a.profiles, a.store, llmChecker, logger)
	a.trends = trendsuc.New(trendNews, analyzer, cfg.News.Limit, logger)
	a.usage = usageuc.New(cfg.LLM.Provider, llmReader)

	opts := []healthuc.Option{
		healthuc.WithEmbedding(healthCheckerOf(base)),
		healthuc.WithLLM(healthCheckerOf(llm)),
	}
	if a.cache != nil {
		opts = append(opts, healthuc.WithCache(a.cache))
	}
	a.health = healthuc.New(a.store, opts...)

	return a, nil
}

// Close releases the cache connection.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// budgetTracker returns nil when the budget has no limits.
func (a *app) budgetTracker(ctx context.Context, provider string, b config.BudgetConfig) *usageuc.BudgetTracker {
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	t := usageuc.NewBudgetTracker(
		provider, a.cfg.Cache.KeyPrefix, b.DailyTokenLimit, b.MonthlyTokenLimit,
		usageuc.ParseBudgetAction(b.Action), a.logger,
	)
	if a.cache != nil {
		t = t.WithStore(ctx, budgetrepo.New(a.cache, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
	}
	return t
}

func (a *app) baseEmbedder() domain.Embedder {
	cfg := a.cfg.Embedding
	if cfg.Provider == "openai" {
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:     a.logger,
		})
	}
	return local.NewEmbedder(cfg.Dimensions)
}

// embedderChain assembles: base -> cached -> instrumented -> instruction.
// The instruction is outermost so cache keys include it.
func (a *app) embedderChain(base domain.Embedder, instruction string, budget embeddinguc.BudgetChecker) domain.Embedder {
	cfg := a.cfg.Embedding
	model := cfg.Model
	if model == "" {
		model = cfg.Provider
	}

	embedder := base
	if a.cache != nil && cfg.Provider != "local" {
		embedder = embcache.New(embedder, a.cache, a.cfg.Cache.KeyPrefix, model, metrics.EmbeddingCacheTotal, a.logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, model, budget, a.logger)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

func (a *app) textProvider() domain.TextProvider {
	cfg := a.cfg.LLM
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.Provider == "anthropic" {
		return claude.New(&claude.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
			Logger:      a.logger,
		})
	}
	return openaiTransport.NewChatProvider(&openaiTransport.ChatConfig{
		Config: openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: "openai",
			Timeout:  timeout,
			Logger:   a.logger,
		},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}

// schedule registers the periodic trend refresh. It returns nil when no cron spec is configured.
func (a *app) schedule() (*scheduler.Scheduler, error) {
	s := scheduler.New(a.logger)
	added, err := s.Add(trendsJob, a.cfg.News.RefreshCron, a.refreshTrends)
	if err != nil {
		return nil, fmt.Errorf("schedule trends refresh: %w", err)
	}
	if !added {
		return nil, nil
	}
	return s, nil
}

const trendsJob = "trends_refresh"

func (a *app) refreshTrends(ctx context.Context) error {
	_, err := a.trends.Refresh(ctx)
	return err
}

// providerHealth adapts a provider that may not implement health checks.
type providerHealth struct {
	inner any
}

func healthCheckerOf(p any) healthuc.Checker { return providerHealth{inner: p} }

func (h providerHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider health check: %w", err)
		}
	}
	return nil
}
