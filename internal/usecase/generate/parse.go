package generate

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kailas-cloud/trendoscope/internal/domain/post"
)

// ParseResponse parses raw LLM output into a post. Clean JSON yields OK; output that parses
// after mechanical repair (code fences, control characters, surrounding prose, trailing
// commas) yields Repaired; anything else yields Failed. A post without title or body is never returned.
func ParseResponse(raw string) post.ParseResult {
	p, err := decodePost([]byte(strings.TrimSpace(raw)))
	if err == nil {
		return post.OK(p)
	}
	if isSchemaError(err) {
		return post.Failed(err.Error())
	}

	repaired, ok := repair(raw)
	if !ok {
		return post.Failed("no JSON object in response")
	}
	p, err = decodePost([]byte(repaired))
	if err != nil {
		return post.Failed(err.Error())
	}
	return post.Repaired(p)
}

type rawPost struct {
	Title *string         `json:"title"`
	Body  *string         `json:"body"`
	Tags  json.RawMessage `json:"tags"`
}

var (
	errMissingTitle = errors.New("missing title")
	errMissingBody  = errors.New("missing body")
	errBadTags      = errors.New("tags must be a list of strings")
)

func decodePost(data []byte) (post.Post, error) {
	var rp rawPost
	if err := json.Unmarshal(data, &rp); err != nil {
		return post.Post{}, err //nolint:wrapcheck // malformed JSON triggers repair
	}
	if rp.Title == nil || strings.TrimSpace(*rp.Title) == "" {
		return post.Post{}, errMissingTitle
	}
	if rp.Body == nil || strings.TrimSpace(*rp.Body) == "" {
		return post.Post{}, errMissingBody
	}

	tags := []string{}
	if len(rp.Tags) > 0 && !bytes.Equal(bytes.TrimSpace(rp.Tags), []byte("null")) {
		var raw []string
		if err := json.Unmarshal(rp.Tags, &raw); err != nil {
			return post.Post{}, errBadTags
		}
		tags = normalizeTags(raw)
	}

	return post.Post{
		Title: strings.TrimSpace(*rp.Title),
		Body:  strings.TrimSpace(*rp.Body),
		Tags:  tags,
	}, nil
}

// isSchemaError reports a well-formed object with missing or mistyped fields; repair cannot fix those.
func isSchemaError(err error) bool {
	return errors.Is(err, errMissingTitle) || errors.Is(err, errMissingBody) || errors.Is(err, errBadTags)
}

// repair applies the bounded fixups in order: fence stripping, outermost object span,
// then control character and trailing comma cleanup.
func repair(raw string) (string, bool) {
	s := stripFence(raw)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return cleanJSON(s[start : end+1]), true
}

// stripFence removes a leading ```lang line and a closing ``` around the whole reply.
// Fences inside the object are left alone; they may belong to the post body.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

// cleanJSON escapes raw newlines and tabs inside strings, drops other control characters
// and removes commas that directly precede a closing bracket.
func cleanJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteByte(c)
			case c == '\\':
				escaped = true
				b.WriteByte(c)
			case c == '"':
				inString = false
				b.WriteByte(c)
			case c == '\n':
				b.WriteString(`\n`)
			case c == '\t':
				b.WriteString(`\t`)
			case c < 0x20 || c == 0x7f:
				// dropped, including \r
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == ',' && closesNext(s[i+1:]):
		case c == '\n' || c == '\t' || c == '\r':
			b.WriteByte(c)
		case c < 0x20 || c == 0x7f:
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func closesNext(rest string) bool {
	t := strings.TrimLeft(rest, " \n\t\r")
	return t != "" && (t[0] == '}' || t[0] == ']')
}

func normalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := map[string]struct{}{}
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
