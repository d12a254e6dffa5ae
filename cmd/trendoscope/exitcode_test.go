package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"not found", fmt.Errorf("load profile: %w", domain.ErrNotFound), exitNotFound},
		{"empty index", domain.ErrEmptyIndex, exitEmptyIndex},
		{"insufficient data", fmt.Errorf("analyze: %w", domain.ErrInsufficientData), exitInsufficientData},
		{"parse error", domain.NewGenerationParseError("no body"), exitGenerationParse},
		{"provider", fmt.Errorf("complete: %w", domain.ErrProvider), exitProvider},
		{"quota", fmt.Errorf("llm:openai budget: %w", domain.ErrQuotaExceeded), exitQuotaExceeded},
		{"corrupt store", fmt.Errorf("load index: %w", domain.ErrCorruptStore), exitCorruptStore},
		{"invalid argument", fmt.Errorf("bad mode: %w", domain.ErrInvalidArgument), exitInvalidArgument},
		{"other", errors.New("boom"), exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
