package generate

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
)

// Prompt bounds.
const (
	MaxRetrieved    = 3
	RetrievedRunes  = 600
	promptPhrases   = 15
	promptVocab     = 30
	promptTags      = 10
	promptExampleRn = 400
)

const systemPrompt = "You are a ghostwriter for a Russian-language blog. " +
	"You imitate the author's voice precisely: vocabulary, phrasing, rhythm and sentiment. " +
	"You never mention that you are imitating anyone. " +
	"You answer with a single JSON object and nothing else."

const outputContract = `Return ONLY a JSON object of the form:
{"title": "<post title>", "body": "<post text, paragraphs separated by \n>", "tags": ["<tag>", "..."]}
"title" and "body" must be non-empty strings; "tags" is a list of 3-7 short lowercase strings.`

// BuildPrompt renders the generation prompt. retrieved beyond MaxRetrieved is ignored.
func BuildPrompt(
	p *domstyle.Profile, topic string, m domstyle.Mode, focus TopicFocus, retrieved []domdoc.Document,
) domain.Prompt {
	var b strings.Builder

	b.WriteString("## Author style\n")
	writeList(&b, "Characteristic phrases", head(p.CommonPhrases, promptPhrases))
	writeList(&b, "Distinctive vocabulary", head(p.Vocabulary, promptVocab))
	writeList(&b, "Typical tags", head(p.TypicalTags, promptTags))
	if p.AvgLength > 0 {
		fmt.Fprintf(&b, "Typical post length: about %d characters.\n", int(p.AvgLength))
	}
	fmt.Fprintf(&b, "Overall tone: %s (%.2f).\n", p.AvgSentiment.Label, p.AvgSentiment.Score)
	if len(p.Examples) > 0 {
		fmt.Fprintf(&b, "Sample of the author's writing:\n\"\"\"\n%s\n\"\"\"\n", excerpt(p.Examples[0], promptExampleRn))
	}

	b.WriteString("\n## Mode\n")
	b.WriteString(m.Instruction())
	b.WriteString("\n")

	b.WriteString("\n## Topic\n")
	b.WriteString(topic)
	b.WriteString("\n")
	if len(focus.Terms) > 0 {
		fmt.Fprintf(&b, "Focus on: %s.\n", strings.Join(focus.Terms, ", "))
	}

	if n := min(len(retrieved), MaxRetrieved); n > 0 {
		b.WriteString("\n## Related posts by the author\n")
		for i := range n {
			d := &retrieved[i]
			fmt.Fprintf(&b, "### %d. %s\n%s\n", i+1, d.Title(), excerpt(d.TextPlain(), RetrievedRunes))
		}
	}

	b.WriteString("\n## Output\n")
	b.WriteString(outputContract)

	return domain.Prompt{System: systemPrompt, User: b.String()}
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s.\n", label, strings.Join(items, "; "))
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
