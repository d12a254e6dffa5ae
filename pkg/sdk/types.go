package trendoscope

import "time"

// Mode is the rhetorical register of a generated post.
type Mode string

// Mode constants.
const (
	ModePhilosophical Mode = "philosophical"
	ModeIronic        Mode = "ironic"
	ModeAnalytical    Mode = "analytical"
	ModeProvocative   Mode = "provocative"
)

// SearchMode controls how search candidates are ranked.
type SearchMode string

// Search mode constants.
const (
	SearchSemantic SearchMode = "semantic"
	SearchHybrid   SearchMode = "hybrid"
)

// IngestReport summarizes one ingest run.
type IngestReport struct {
	Source         string
	Fetched        int
	Added          int
	Skipped        int
	ProfileUpdated bool
}

// SearchRequest selects documents close in meaning to Query.
type SearchRequest struct {
	Query    string
	Mode     SearchMode // default semantic
	K        int        // default 5, max 100
	MinScore float64    // semantic mode only
	Source   string     // restrict to one blog URL or feed name
}

// SearchResult is one ranked document.
type SearchResult struct {
	URL       string
	Title     string
	Text      string
	Source    string
	Published time.Time
	Keywords  []string
	Score     float64
}

// Sentiment is an averaged sentiment label with its score in [-1, 1].
type Sentiment struct {
	Label string
	Score float64
}

// Profile is the learned writing style of one source.
type Profile struct {
	Source        string
	SavedAt       time.Time
	DocumentCount int
	CommonPhrases []string
	Vocabulary    []string
	AvgLength     float64
	AvgSentiment  Sentiment
	TypicalTags   []string
	Examples      []string
}

// GenerateRequest describes one generated post.
type GenerateRequest struct {
	Source       string // source id of a stored profile
	Topic        string
	Mode         Mode // default analytical
	UseRetrieval bool // add the closest posts of the source as examples
	K            int
}

// Post is a generated post.
type Post struct {
	Title      string
	Body       string
	Tags       []string
	Topic      string
	Mode       Mode
	Repaired   bool     // the model reply needed mechanical repair before parsing
	Retrieved  []string // URLs of documents used as examples
	TokensUsed int
}

// Trend is a keyword with the number of news items mentioning it.
type Trend struct {
	Keyword string
	Count   int
	Sources []string
}

// TrendSnapshot is the ranked trend list from one refresh.
type TrendSnapshot struct {
	ComputedAt    time.Time
	DocumentCount int
	Trends        []Trend
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
