// Package claude adapts the Anthropic Messages API to the text generation contract.
package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
)

const providerName = "anthropic"

// Config holds Anthropic settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Provider implements domain.TextProvider. SDK retries are disabled; callers decide on retries.
type Provider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// New creates an Anthropic text provider.
func New(cfg *Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Provider{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      loggerOrNop(cfg.Logger),
	}
}

// Complete sends one user message with the prompt's system text and concatenates the text blocks.
func (p *Provider) Complete(ctx context.Context, prompt domain.Prompt) (domain.Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.temperature))
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}

	start := time.Now()
	resp, err := p.client.Messages.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		p.fail("api_error")
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return domain.Completion{}, fmt.Errorf("anthropic API error %d: %w: %w", apiErr.StatusCode, domain.ErrProvider, err)
		}
		return domain.Completion{}, fmt.Errorf("anthropic request failed: %w: %w", domain.ErrProvider, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		p.fail("empty_response")
		return domain.Completion{}, fmt.Errorf("empty response from anthropic: %w", domain.ErrProvider)
	}

	in, out := int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens)
	metrics.ProviderRequestsTotal.WithLabelValues(metrics.KindGeneration, providerName, p.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(metrics.KindGeneration, providerName, p.model).Observe(duration.Seconds())
	metrics.ProviderTokensTotal.WithLabelValues(metrics.KindGeneration, providerName, p.model, "prompt").Add(float64(in))
	metrics.ProviderTokensTotal.WithLabelValues(metrics.KindGeneration, providerName, p.model, "completion").Add(float64(out))

	p.logger.Debug("anthropic completion",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.String("stop_reason", string(resp.StopReason)),
	)

	return domain.Completion{Text: text.String(), PromptTokens: in, CompletionTokens: out}, nil
}

func (p *Provider) fail(errorType string) {
	metrics.ProviderRequestsTotal.WithLabelValues(metrics.KindGeneration, providerName, p.model, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(metrics.KindGeneration, providerName, p.model, errorType).Inc()
}

// HealthCheck lists one model to verify the API key and endpoint.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1)}); err != nil {
		return fmt.Errorf("anthropic health check: %w: %w", domain.ErrProvider, err)
	}
	return nil
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
