package generate

import (
	"context"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
)

// ProfileReader loads stored style profiles.
type ProfileReader interface {
	Load(ctx context.Context, sourceID string) (domstyle.Profile, error)
}

// Retriever finds documents related to the topic for few-shot context.
type Retriever interface {
	SearchFiltered(
		ctx context.Context, query string, k int, keep func(*domdoc.Document) bool,
	) ([]result.Result, error)
}

// BudgetChecker is the local interface for generation budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}
