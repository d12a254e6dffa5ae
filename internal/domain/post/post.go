// Package post holds the generated post value and the outcome of parsing raw LLM output.
package post

// Post is a generated blog post. It is not persisted by the service.
type Post struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Kind tags the variant of a ParseResult.
type Kind string

// ParseResult variants.
const (
	KindOK       Kind = "ok"
	KindRepaired Kind = "repaired"
	KindFailed   Kind = "failed"
)

// ParseResult is Ok(Post) | Repaired(Post) | Failed(reason).
type ParseResult struct {
	kind   Kind
	post   Post
	reason string
}

// OK creates a result for output that parsed without repair.
func OK(p Post) ParseResult { return ParseResult{kind: KindOK, post: p} }

// Repaired creates a result for output that parsed after mechanical repair.
func Repaired(p Post) ParseResult { return ParseResult{kind: KindRepaired, post: p} }

// Failed creates a result for output that could not be parsed.
func Failed(reason string) ParseResult { return ParseResult{kind: KindFailed, reason: reason} }

// Kind returns the variant tag.
func (r ParseResult) Kind() Kind { return r.kind }

// Post returns the parsed post and whether one is present.
func (r ParseResult) Post() (Post, bool) {
	if r.kind == KindFailed {
		return Post{}, false
	}
	return r.post, true
}

// Reason returns why parsing failed (empty for success variants).
func (r ParseResult) Reason() string { return r.reason }
