package trends

import (
	"context"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
)

// NewsSource fetches the merged news feed.
type NewsSource interface {
	Fetch(ctx context.Context, limit int) ([]domdoc.Document, error)
}

// Enricher attaches NLP analysis to a document.
type Enricher interface {
	Enrich(doc domdoc.Document) domdoc.Document
}
