package generate

import (
	"sort"

	"github.com/kailas-cloud/trendoscope/internal/nlp"
)

// stemRunes is the shared-prefix length at which two words count as the same stem.
const stemRunes = 5

// topicTable maps a category to its keywords. A topic is narrowed to the categories whose
// keywords it mentions.
var topicTable = map[string][]string{
	"politics":   {"политика", "выборы", "власть", "правительство", "парламент", "закон", "санкции", "президент", "politics", "election", "government"},
	"economy":    {"экономика", "рынок", "инфляция", "рубль", "нефть", "бюджет", "налоги", "банк", "цены", "economy", "market", "inflation"},
	"technology": {"технологии", "интеллект", "нейросеть", "искусственный", "робот", "стартап", "интернет", "программирование", "technology", "software", "startup"},
	"science":    {"наука", "учёные", "исследование", "космос", "открытие", "физика", "биология", "science", "research", "space"},
	"culture":    {"культура", "искусство", "кино", "театр", "литература", "музыка", "выставка", "книга", "culture", "cinema", "music"},
	"society":    {"общество", "образование", "семья", "люди", "город", "молодёжь", "социальный", "society", "education", "people"},
	"health":     {"здоровье", "медицина", "врачи", "больница", "вирус", "лечение", "health", "medicine", "doctor"},
	"ecology":    {"экология", "климат", "природа", "загрязнение", "энергия", "ecology", "climate", "energy"},
	"sport":      {"спорт", "футбол", "хоккей", "олимпиада", "чемпионат", "матч", "sport", "football", "hockey"},
}

// TopicFocus is the outcome of narrowing a topic against the table.
type TopicFocus struct {
	Categories []string
	Terms      []string
}

// NarrowTopic returns the categories whose keywords share a stem with a topic word, and the
// matched keywords of those categories. Both lists are sorted.
func NarrowTopic(topic string) TopicFocus {
	var words []string
	for _, t := range nlp.Tokenize(topic) {
		if !nlp.IsStopword(t) {
			words = append(words, t)
		}
	}

	var focus TopicFocus
	terms := map[string]struct{}{}
	for category, keywords := range topicTable {
		hit := false
		for _, kw := range keywords {
			for _, w := range words {
				if sameStem(w, kw) {
					hit = true
					terms[kw] = struct{}{}
				}
			}
		}
		if hit {
			focus.Categories = append(focus.Categories, category)
		}
	}
	for t := range terms {
		focus.Terms = append(focus.Terms, t)
	}
	sort.Strings(focus.Categories)
	sort.Strings(focus.Terms)
	return focus
}

func sameStem(a, b string) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(nlpLower(a)), []rune(nlpLower(b))
	if len(ra) < stemRunes || len(rb) < stemRunes {
		return false
	}
	return string(ra[:stemRunes]) == string(rb[:stemRunes])
}

// nlpLower normalizes a table keyword the same way the tokenizer normalizes text.
func nlpLower(s string) string {
	toks := nlp.Tokenize(s)
	if len(toks) == 0 {
		return s
	}
	return toks[0]
}
