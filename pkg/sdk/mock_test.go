package trendoscope

import (
	"context"
	"time"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
)

// --- Mocks ---

type mockTextProvider struct {
	reply string
	last  Prompt
}

func (m *mockTextProvider) Complete(_ context.Context, p Prompt) (Completion, error) {
	m.last = p
	return Completion{Text: m.reply, PromptTokens: 20, CompletionTokens: 10}, nil
}

type mockGenerateUC struct {
	res generateuc.Result
	err error
}

func (m *mockGenerateUC) Generate(context.Context, generateuc.Request) (generateuc.Result, error) {
	return m.res, m.err
}

func domainPrompt() domain.Prompt { return domain.Prompt{System: "s", User: "u"} }

func timeZero() time.Time { return time.Time{} }
