package chi

import (
	"context"

	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/domain/trend"
	domusage "github.com/kailas-cloud/trendoscope/internal/domain/usage"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/trendoscope/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/trendoscope/internal/usecase/ingest"
)

// Ingestor runs blog and news ingestion.
type Ingestor interface {
	IngestBlog(ctx context.Context, blogURL string, limit int) (ingestuc.Report, error)
	IngestNews(ctx context.Context, limit int) (ingestuc.Report, error)
}

// Searcher ranks stored documents for a query.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Profiles rebuilds and reads style profiles.
type Profiles interface {
	Analyze(ctx context.Context, sourceID string) (domstyle.Profile, error)
	Get(ctx context.Context, sourceID string) (domstyle.Profile, error)
	List(ctx context.Context) ([]string, error)
}

// Generator produces posts.
type Generator interface {
	Generate(ctx context.Context, req generateuc.Request) (generateuc.Result, error)
}

// Trends serves and refreshes the trend snapshot.
type Trends interface {
	Snapshot() trend.Snapshot
	Refresh(ctx context.Context) (trend.Snapshot, error)
}

// UsageReporter reports generation token usage.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
