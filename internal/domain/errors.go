package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing persisted resource (style profile, source).
	ErrNotFound = errors.New("not found")
	// ErrEmptyIndex signals a search against a vector store with no documents.
	ErrEmptyIndex = errors.New("vector index is empty")
	// ErrInsufficientData signals a style analysis without documents.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrGenerationParse signals LLM output that could not be parsed into a post.
	ErrGenerationParse = errors.New("generation parse error")
	// ErrProvider signals a failure talking to an LLM, embedding or feed provider.
	ErrProvider = errors.New("provider error")
	// ErrInvalidArgument signals a malformed request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrQuotaExceeded signals an exhausted generation token budget.
	ErrQuotaExceeded = errors.New("token quota exceeded")
	// ErrCorruptStore signals on-disk vector store files that disagree with each other.
	ErrCorruptStore = errors.New("corrupt vector store")
)

// GenerationParseError wraps ErrGenerationParse with the reason the repair pass gave up.
type GenerationParseError struct {
	Reason string
}

func (e *GenerationParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGenerationParse.Error(), e.Reason)
}

func (e *GenerationParseError) Unwrap() error { return ErrGenerationParse }

// NewGenerationParseError creates a parse error with the given reason.
func NewGenerationParseError(reason string) error {
	return &GenerationParseError{Reason: reason}
}
