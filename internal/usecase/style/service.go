// Package style builds, stores and serves per-source writing style profiles.
package style

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
)

// Service rebuilds and reads style profiles.
type Service struct {
	docs   DocumentSource
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

// New creates a style service.
func New(docs DocumentSource, repo Repository, logger *zap.Logger) *Service {
	return &Service{docs: docs, repo: repo, now: time.Now, logger: logger}
}

// Analyze rebuilds the profile of sourceID from its stored documents and saves it.
func (s *Service) Analyze(ctx context.Context, sourceID string) (domstyle.Profile, error) {
	p, err := BuildProfile(s.docs.DocumentsBySource(sourceID), sourceID)
	if err != nil {
		return domstyle.Profile{}, err
	}
	p.SavedAt = s.now().UTC()

	if err := s.repo.Save(ctx, p); err != nil {
		return domstyle.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info("style profile saved",
		zap.String("source", sourceID),
		zap.Int("documents", p.DocumentCount),
		zap.Int("phrases", len(p.CommonPhrases)),
	)
	return p, nil
}

// Get loads a stored profile.
func (s *Service) Get(ctx context.Context, sourceID string) (domstyle.Profile, error) {
	p, err := s.repo.Load(ctx, sourceID)
	if err != nil {
		return domstyle.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// List returns the ids of all stored profiles.
func (s *Service) List(ctx context.Context) ([]string, error) {
	ids, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return ids, nil
}
