package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
)

// ChatConfig holds chat completion settings.
type ChatConfig struct {
	Config
	MaxTokens   int
	Temperature float32
}

// ChatProvider implements domain.TextProvider over the chat completions endpoint.
type ChatProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	provider    string
	logger      *zap.Logger
}

// NewChatProvider creates an OpenAI-compatible text provider.
func NewChatProvider(cfg *ChatConfig) *ChatProvider {
	return &ChatProvider{
		client:      newClient(&cfg.Config),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		logger:      loggerOrNop(cfg.Logger),
	}
}

// Complete sends the prompt as a system + user message pair and returns the first choice.
func (p *ChatProvider) Complete(ctx context.Context, prompt domain.Prompt) (domain.Completion, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: prompt.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt.User})

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	duration := time.Since(start)

	if err != nil {
		p.fail("api_error")
		return domain.Completion{}, parseAPIError("chat", err)
	}
	if len(resp.Choices) == 0 {
		p.fail("empty_response")
		return domain.Completion{}, fmt.Errorf("empty chat response: %w", domain.ErrProvider)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(metrics.KindGeneration, p.provider, p.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(metrics.KindGeneration, p.provider, p.model).Observe(duration.Seconds())
	metrics.ProviderTokensTotal.WithLabelValues(metrics.KindGeneration, p.provider, p.model, "prompt").
		Add(float64(resp.Usage.PromptTokens))
	metrics.ProviderTokensTotal.WithLabelValues(metrics.KindGeneration, p.provider, p.model, "completion").
		Add(float64(resp.Usage.CompletionTokens))

	p.logger.Debug("chat completion",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return domain.Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (p *ChatProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (p *ChatProvider) fail(errorType string) {
	metrics.ProviderRequestsTotal.WithLabelValues(metrics.KindGeneration, p.provider, p.model, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(metrics.KindGeneration, p.provider, p.model, errorType).Inc()
}
