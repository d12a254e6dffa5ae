package nlp

import "strings"

// Russian sentiment entries are stems matched by prefix so inflected forms count.
// English entries are short and ambiguous as prefixes ("win" vs "window"), so they match whole words.
var (
	positiveStems = []string{
		"хорош", "отличн", "прекрасн", "замечательн", "радост", "радует", "успех", "успешн", "побед",
		"любов", "любим", "счаст", "интересн", "удач", "улучш", "надежд", "восхищ", "красив",
		"добр", "поддерж", "прорыв", "выгод", "благодар", "уважен", "довол", "спокойн", "свобод",
		"excellen", "wonderful", "success", "improv", "breakthrough", "progress",
	}
	negativeStems = []string{
		"плох", "ужас", "кризис", "проблем", "провал", "катастроф", "войн", "смерт", "страх",
		"груст", "печал", "ненавист", "коррупц", "падени", "скандал", "угроз", "опасн", "беда",
		"жесток", "насили", "обман", "санкц", "дефицит", "убий", "тревог",
		"terribl", "catastroph", "corrupt", "scandal", "threat", "danger",
	}

	positiveWords = toSet(
		"good", "great", "best", "better", "happy", "glad", "love", "loved", "win", "wins", "won",
		"winner", "positive", "growth", "hope", "benefit", "benefits", "nice", "strong",
	)
	negativeWords = toSet(
		"bad", "worse", "worst", "awful", "crisis", "fail", "failed", "failure", "war", "wars",
		"death", "fear", "sad", "hate", "decline", "loss", "losses", "problem", "problems", "weak",
	)
)

// polarity returns +1, -1 or 0 for a lowercased token.
func polarity(token string) int {
	if _, ok := negativeWords[token]; ok {
		return -1
	}
	if _, ok := positiveWords[token]; ok {
		return 1
	}
	for _, s := range negativeStems {
		if strings.HasPrefix(token, s) {
			return -1
		}
	}
	for _, s := range positiveStems {
		if strings.HasPrefix(token, s) {
			return 1
		}
	}
	return 0
}
