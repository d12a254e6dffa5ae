package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// word is a token with the layout facts the entity extractor needs.
type word struct {
	text          string // original case
	lower         string
	sentenceStart bool // first word of a sentence
	afterPunct    bool // separated from the previous word by punctuation
}

// Tokenize splits text into lowercased letter/digit runs after NFC normalization.
func Tokenize(text string) []string {
	words := scan(text)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.lower
	}
	return out
}

func scan(text string) []word {
	text = norm.NFC.String(text)

	var (
		words      []word
		cur        strings.Builder
		sentence   = true
		punct      bool
		pendingEnd bool
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		t := cur.String()
		words = append(words, word{
			text:          t,
			lower:         lowerToken(t),
			sentenceStart: sentence,
			afterPunct:    punct,
		})
		cur.Reset()
		sentence = false
		punct = false
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingEnd {
				sentence = true
				pendingEnd = false
			}
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
			if r == '\n' {
				pendingEnd = true
				punct = true
			}
		default:
			flush()
			punct = true
			if isSentenceEnd(r) {
				pendingEnd = true
			}
		}
	}
	flush()
	return words
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func lowerToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "ё", "е")
}
