package trendoscope

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// TextProvider completes a generation prompt. Failures should wrap ErrProvider.
type TextProvider interface {
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

// Prompt is a rendered generation request.
type Prompt struct {
	System string
	User   string
}

// Completion is raw model output with its token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// textProviderAdapter wraps public TextProvider to satisfy internal domain.TextProvider.
type textProviderAdapter struct {
	inner TextProvider
}

func (a *textProviderAdapter) Complete(ctx context.Context, p domain.Prompt) (domain.Completion, error) {
	c, err := a.inner.Complete(ctx, Prompt{System: p.System, User: p.User})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}
	return domain.Completion{
		Text:             c.Text,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
	}, nil
}

// noopTextProvider fails every call (used when no text provider is configured).
type noopTextProvider struct{}

func (noopTextProvider) Complete(context.Context, domain.Prompt) (domain.Completion, error) {
	return domain.Completion{}, fmt.Errorf(
		"text provider not configured (use WithTextProvider, WithOpenAI or WithAnthropic): %w", ErrNotConfigured)
}
