package trendoscope

import (
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/domain/trend"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
	ingestuc "github.com/kailas-cloud/trendoscope/internal/usecase/ingest"
)

func reportFromDomain(r ingestuc.Report) IngestReport {
	return IngestReport{
		Source:         r.SourceID,
		Fetched:        r.Fetched,
		Added:          r.Added,
		Skipped:        r.Skipped,
		ProfileUpdated: r.ProfileUpdated,
	}
}

func searchResultFromDomain(r *result.Result) SearchResult {
	d := r.Document()
	return SearchResult{
		URL:       d.URL(),
		Title:     d.Title(),
		Text:      d.TextPlain(),
		Source:    d.Source(),
		Published: d.Published(),
		Keywords:  d.Keywords(),
		Score:     r.Score(),
	}
}

func profileFromDomain(p domstyle.Profile) Profile {
	return Profile{
		Source:        p.SourceID,
		SavedAt:       p.SavedAt,
		DocumentCount: p.DocumentCount,
		CommonPhrases: p.CommonPhrases,
		Vocabulary:    p.Vocabulary,
		AvgLength:     p.AvgLength,
		AvgSentiment:  Sentiment{Label: string(p.AvgSentiment.Label), Score: p.AvgSentiment.Score},
		TypicalTags:   p.TypicalTags,
		Examples:      p.Examples,
	}
}

func postFromDomain(r generateuc.Result) Post {
	return Post{
		Title:      r.Post.Title,
		Body:       r.Post.Body,
		Tags:       r.Post.Tags,
		Topic:      r.Topic,
		Mode:       Mode(r.Mode),
		Repaired:   r.Repaired,
		Retrieved:  r.Retrieved,
		TokensUsed: r.TokensUsed,
	}
}

func snapshotFromDomain(s trend.Snapshot, n int) TrendSnapshot {
	top := s.Top(n)
	trends := make([]Trend, 0, len(top))
	for _, t := range top {
		trends = append(trends, Trend{Keyword: t.Keyword, Count: t.Count, Sources: t.Sources})
	}
	return TrendSnapshot{ComputedAt: s.ComputedAt, DocumentCount: s.DocumentCount, Trends: trends}
}
