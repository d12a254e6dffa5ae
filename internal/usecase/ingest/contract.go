package ingest

import (
	"context"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/repository/profile"
)

// BlogSource scrapes posts of one blog.
type BlogSource interface {
	Scrape(ctx context.Context, blogURL string, limit int) ([]domdoc.Document, error)
}

// NewsSource fetches the merged news feed.
type NewsSource interface {
	Fetch(ctx context.Context, limit int) ([]domdoc.Document, error)
}

// Enricher attaches NLP analysis to a document.
type Enricher interface {
	Enrich(doc domdoc.Document) domdoc.Document
}

// DocumentStore appends documents to the vector index.
type DocumentStore interface {
	Add(ctx context.Context, docs []domdoc.Document) (int, error)
	Contains(url string) bool
	DocumentsBySource(source string) []domdoc.Document
}

// StyleAnalyzer rebuilds and saves the style profile of a source.
type StyleAnalyzer interface {
	Analyze(ctx context.Context, sourceID string) (domstyle.Profile, error)
}

// MetadataWriter records what was ingested per source.
type MetadataWriter interface {
	SaveMetadata(ctx context.Context, m profile.Metadata) error
}
