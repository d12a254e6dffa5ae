package style

import (
	"context"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
)

// Repository persists style profiles.
type Repository interface {
	Save(ctx context.Context, p domstyle.Profile) error
	Load(ctx context.Context, sourceID string) (domstyle.Profile, error)
	List(ctx context.Context) ([]string, error)
}

// DocumentSource returns the stored documents of one source.
type DocumentSource interface {
	DocumentsBySource(source string) []domdoc.Document
}
