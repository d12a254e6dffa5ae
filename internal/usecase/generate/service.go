// Package generate turns a style profile and a topic into an LLM prompt and parses the
// reply into a post.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/post"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
)

// MaxTopicLength bounds the topic text.
const MaxTopicLength = 500

// Request describes one generation. Profile takes precedence over SourceID.
type Request struct {
	SourceID     string
	Profile      *domstyle.Profile
	Topic        string
	Mode         domstyle.Mode
	UseRetrieval bool
	K            int
}

// Result is a generated post with how it was produced.
type Result struct {
	Post       post.Post
	Repaired   bool
	Mode       domstyle.Mode
	Topic      string
	Focus      TopicFocus
	Retrieved  []string
	TokensUsed int
}

// Service generates posts.
type Service struct {
	llm       domain.TextProvider
	profiles  ProfileReader
	retriever Retriever
	budget    BudgetChecker
	logger    *zap.Logger
}

// New creates a generation service. retriever and budget may be nil.
func New(llm domain.TextProvider, profiles ProfileReader, retriever Retriever, budget BudgetChecker, logger *zap.Logger) *Service {
	return &Service{llm: llm, profiles: profiles, retriever: retriever, budget: budget, logger: logger}
}

// Generate builds the prompt, calls the provider once and parses the reply.
// Provider failures wrap domain.ErrProvider; unparseable replies wrap domain.ErrGenerationParse.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return Result{}, fmt.Errorf("topic is required: %w", domain.ErrInvalidArgument)
	}
	if len([]rune(topic)) > MaxTopicLength {
		return Result{}, fmt.Errorf("topic too long (max %d chars): %w", MaxTopicLength, domain.ErrInvalidArgument)
	}
	m := req.Mode
	if m == "" {
		m = domstyle.Analytical
	}
	if !m.IsValid() {
		return Result{}, fmt.Errorf("invalid style mode %q: %w", m, domain.ErrInvalidArgument)
	}

	profile, err := s.profile(ctx, req)
	if err != nil {
		return Result{}, err
	}

	var retrieved []domdoc.Document
	if req.UseRetrieval && s.retriever != nil {
		if retrieved, err = s.retrieve(ctx, topic, profile.SourceID, req.K); err != nil {
			return Result{}, err
		}
	}

	if s.budget != nil {
		if err := s.budget.Check(ctx); err != nil {
			return Result{}, fmt.Errorf("generation budget: %w", err)
		}
	}

	focus := NarrowTopic(topic)
	prompt := BuildPrompt(&profile, topic, m, focus, retrieved)

	completion, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("complete: %w", err)
	}
	tokens := completion.TotalTokens()
	if s.budget != nil {
		s.budget.Record(int64(tokens))
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(tokens)

	parsed := ParseResponse(completion.Text)
	metrics.GenerationParseTotal.WithLabelValues(string(parsed.Kind())).Inc()
	p, ok := parsed.Post()
	if !ok {
		s.logger.Warn("unparseable generation",
			zap.String("reason", parsed.Reason()),
			zap.Int("raw_len", len(completion.Text)),
		)
		return Result{}, domain.NewGenerationParseError(parsed.Reason())
	}

	urls := make([]string, len(retrieved))
	for i := range retrieved {
		urls[i] = retrieved[i].URL()
	}

	s.logger.Info("post generated",
		zap.String("source", profile.SourceID),
		zap.String("mode", string(m)),
		zap.Bool("repaired", parsed.Kind() == post.KindRepaired),
		zap.Int("retrieved", len(retrieved)),
		zap.Int("tokens", tokens),
	)

	return Result{
		Post:       p,
		Repaired:   parsed.Kind() == post.KindRepaired,
		Mode:       m,
		Topic:      topic,
		Focus:      focus,
		Retrieved:  urls,
		TokensUsed: tokens,
	}, nil
}

func (s *Service) profile(ctx context.Context, req Request) (domstyle.Profile, error) {
	if req.Profile != nil {
		return *req.Profile, nil
	}
	if req.SourceID == "" {
		return domstyle.Profile{}, fmt.Errorf("source or profile is required: %w", domain.ErrInvalidArgument)
	}
	p, err := s.profiles.Load(ctx, req.SourceID)
	if err != nil {
		return domstyle.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// retrieve returns up to k documents of the profile's source related to topic.
// An empty index is not an error: generation proceeds without examples.
func (s *Service) retrieve(ctx context.Context, topic, sourceID string, k int) ([]domdoc.Document, error) {
	if k <= 0 || k > MaxRetrieved {
		k = MaxRetrieved
	}
	var keep func(*domdoc.Document) bool
	if sourceID != "" {
		keep = func(d *domdoc.Document) bool { return d.Source() == sourceID }
	}

	hits, err := s.retriever.SearchFiltered(ctx, topic, k, keep)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			return nil, nil
		}
		return nil, fmt.Errorf("retrieve examples: %w", err)
	}

	docs := make([]domdoc.Document, len(hits))
	for i := range hits {
		docs[i] = hits[i].Document()
	}
	return docs, nil
}
