package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestGenerationParseError_Unwrap(t *testing.T) {
	err := fmt.Errorf("generate: %w", NewGenerationParseError("missing title"))

	if !errors.Is(err, ErrGenerationParse) {
		t.Fatal("expected errors.Is(ErrGenerationParse)")
	}
	var pe *GenerationParseError
	if !errors.As(err, &pe) {
		t.Fatal("expected errors.As to *GenerationParseError")
	}
	if pe.Reason != "missing title" {
		t.Errorf("unexpected reason %q", pe.Reason)
	}
	if pe.Error() != "generation parse error: missing title" {
		t.Errorf("unexpected message %q", pe.Error())
	}
}

func TestTokenUsage_NilSafe(t *testing.T) {
	var u *TokenUsage
	u.AddEmbeddingTokens(10) // must not panic
	u.AddGenerationTokens(10)
}
