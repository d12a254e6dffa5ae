package chi

import (
	"time"

	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
	domusage "github.com/kailas-cloud/trendoscope/internal/domain/usage"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
)

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeNotFound             ErrorCode = "not_found"
	CodeEmptyIndex           ErrorCode = "empty_index"
	CodeInsufficientData     ErrorCode = "insufficient_data"
	CodeGenerationParseError ErrorCode = "generation_parse_error"
	CodeProviderError        ErrorCode = "provider_error"
	CodeQuotaExceeded        ErrorCode = "quota_exceeded"
	CodeNotConfigured        ErrorCode = "not_configured"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// IngestBlogRequest is the body of POST /api/v1/ingest/blog.
type IngestBlogRequest struct {
	URL   string `json:"url"`
	Limit int    `json:"limit,omitempty"`
}

// IngestNewsRequest is the body of POST /api/v1/ingest/news.
type IngestNewsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query    string  `json:"query"`
	Mode     string  `json:"mode,omitempty"`
	K        int     `json:"k,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	Source   string  `json:"source,omitempty"`
}

// SearchResultItem is one search hit.
type SearchResultItem struct {
	URL         string              `json:"url"`
	Title       string              `json:"title"`
	Source      string              `json:"source"`
	PublishedAt *time.Time          `json:"published_at,omitempty"`
	Score       float64             `json:"score"`
	Keywords    []string            `json:"keywords"`
	Sentiment   sentiment.Sentiment `json:"sentiment"`
	Excerpt     string              `json:"excerpt"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}

// ProfileListResponse lists stored profile ids.
type ProfileListResponse struct {
	Items []string `json:"items"`
}

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	Source       string `json:"source"`
	Topic        string `json:"topic"`
	Mode         string `json:"mode,omitempty"`
	UseRetrieval bool   `json:"use_retrieval,omitempty"`
	K            int    `json:"k,omitempty"`
}

// TopicFocusResponse is the narrowed topic.
type TopicFocusResponse struct {
	Categories []string `json:"categories"`
	Terms      []string `json:"terms"`
}

// GenerateResponse is a generated post.
type GenerateResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Body       string             `json:"body"`
	Tags       []string           `json:"tags"`
	Mode       string             `json:"mode"`
	Topic      string             `json:"topic"`
	Repaired   bool               `json:"repaired"`
	Focus      TopicFocusResponse `json:"focus"`
	Retrieved  []string           `json:"retrieved"`
	TokensUsed int                `json:"tokens_used"`
}

// UsageResponse is the generation token usage for one period.
type UsageResponse struct {
	Period        string    `json:"period"`
	Provider      string    `json:"provider"`
	PeriodStartAt time.Time `json:"period_start_at"`
	PeriodEndAt   time.Time `json:"period_end_at"`
	TokensUsed    int64     `json:"tokens_used"`
	TokensLimit   int64     `json:"tokens_limit"`
	Remaining     int64     `json:"tokens_remaining"`
	IsExhausted   bool      `json:"is_exhausted"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

const excerptRunes = 300

func searchResultToAPI(r *result.Result) SearchResultItem {
	doc := r.Document()
	item := SearchResultItem{
		URL:       doc.URL(),
		Title:     doc.Title(),
		Source:    doc.Source(),
		Score:     r.Score(),
		Keywords:  nonNil(doc.Keywords()),
		Sentiment: doc.Sentiment(),
		Excerpt:   excerpt(&doc),
	}
	if !doc.Published().IsZero() {
		p := doc.Published()
		item.PublishedAt = &p
	}
	return item
}

func excerpt(doc *domdoc.Document) string {
	r := []rune(doc.TextPlain())
	if len(r) <= excerptRunes {
		return string(r)
	}
	return string(r[:excerptRunes])
}

func generateResultToAPI(id string, res *generateuc.Result) GenerateResponse {
	return GenerateResponse{
		ID:       id,
		Title:    res.Post.Title,
		Body:     res.Post.Body,
		Tags:     nonNil(res.Post.Tags),
		Mode:     string(res.Mode),
		Topic:    res.Topic,
		Repaired: res.Repaired,
		Focus: TopicFocusResponse{
			Categories: nonNil(res.Focus.Categories),
			Terms:      nonNil(res.Focus.Terms),
		},
		Retrieved:  nonNil(res.Retrieved),
		TokensUsed: res.TokensUsed,
	}
}

func usageToAPI(r *domusage.Report) UsageResponse {
	return UsageResponse{
		Period:        string(r.Period()),
		Provider:      r.Provider(),
		PeriodStartAt: time.UnixMilli(r.PeriodStart()).UTC(),
		PeriodEndAt:   time.UnixMilli(r.PeriodEnd()).UTC(),
		TokensUsed:    r.Used(),
		TokensLimit:   r.Limit(),
		Remaining:     r.Remaining(),
		IsExhausted:   r.Exhausted(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
