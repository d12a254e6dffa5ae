package trendoscope

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/transport/claude"
	openaiTransport "github.com/kailas-cloud/trendoscope/internal/transport/openai"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// Feed is an RSS or Atom news feed.
type Feed struct {
	Name string
	URL  string
}

type clientConfig struct {
	dataDir    string
	embedder   domain.Embedder
	dimensions int
	text       domain.TextProvider
	// newText builds a provider from the final options; WithOpenAI and WithAnthropic set it.
	newText    func(timeout time.Duration) domain.TextProvider
	llmTimeout time.Duration

	feeds       []Feed
	userAgent   string
	scraperRPS  float64
	httpTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDataDir sets where documents, vectors and style profiles are stored. Default: "data".
func WithDataDir(dir string) Option {
	return optionFunc(func(c *clientConfig) { c.dataDir = dir })
}

// WithEmbedder sets the text embedding provider.
// Default: a local hashing embedder that needs no network.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		if e != nil {
			c.embedder = &embedderAdapter{inner: e}
		}
	})
}

// WithDimensions sets the local embedder dimension. Ignored with WithEmbedder. Default: 384.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) { c.dimensions = dim })
}

// WithTextProvider sets the model used for post generation.
func WithTextProvider(p TextProvider) Option {
	return optionFunc(func(c *clientConfig) {
		if p != nil {
			c.text = &textProviderAdapter{inner: p}
			c.newText = nil
		}
	})
}

// WithOpenAI generates posts through an OpenAI-compatible chat completions API.
// An empty baseURL means api.openai.com.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.text = nil
		c.newText = func(timeout time.Duration) domain.TextProvider {
			return openaiTransport.NewChatProvider(&openaiTransport.ChatConfig{
				Config: openaiTransport.Config{
					APIKey:   apiKey,
					BaseURL:  baseURL,
					Model:    model,
					Provider: "openai",
					Timeout:  timeout,
				},
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
			})
		}
	})
}

// WithAnthropic generates posts through the Anthropic Messages API.
func WithAnthropic(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.text = nil
		c.newText = func(timeout time.Duration) domain.TextProvider {
			return claude.New(&claude.Config{
				APIKey:      apiKey,
				Model:       model,
				MaxTokens:   defaultMaxTokens,
				Temperature: defaultTemperature,
				Timeout:     timeout,
			})
		}
	})
}

// WithFeeds sets the news feeds used by IngestNews and Trends.
func WithFeeds(feeds ...Feed) Option {
	return optionFunc(func(c *clientConfig) { c.feeds = append(c.feeds, feeds...) })
}

// WithUserAgent sets the User-Agent of scraper and feed requests.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) { c.userAgent = ua })
}

// WithScraperRate limits blog page requests per second. Default: 2.
func WithScraperRate(rps float64) Option {
	return optionFunc(func(c *clientConfig) { c.scraperRPS = rps })
}

// WithHTTPTimeout sets the per-request timeout of scraper and feed requests. Default: 15s.
func WithHTTPTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) { c.httpTimeout = d })
}

// WithGenerationTimeout bounds each request of WithOpenAI and WithAnthropic providers. Default: 60s.
func WithGenerationTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) { c.llmTimeout = d })
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) { c.logger = l })
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) { c.metricsReg = reg })
}
