package domain

import "context"

// Prompt is a rendered generation request: a system preamble plus the user message.
type Prompt struct {
	System string
	User   string
}

// Completion is raw LLM output with its token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt plus completion tokens.
func (c Completion) TotalTokens() int { return c.PromptTokens + c.CompletionTokens }

// TextProvider is the LLM contract. Implementations wrap every failure with ErrProvider and never retry.
type TextProvider interface {
	Complete(ctx context.Context, p Prompt) (Completion, error)
}
