package search

import (
	"context"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
)

// Index is the vector store contract for search.
type Index interface {
	SearchFiltered(
		ctx context.Context, query string, k int, keep func(*domdoc.Document) bool,
	) ([]result.Result, error)
	Documents() []domdoc.Document
}
