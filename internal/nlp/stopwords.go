package nlp

var stopwords = toSet(
	// ru
	"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все", "она", "так",
	"его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по", "только", "ее", "мне", "было",
	"вот", "от", "меня", "еще", "нет", "о", "из", "ему", "теперь", "когда", "даже", "ну", "вдруг",
	"ли", "если", "уже", "или", "ни", "быть", "был", "него", "до", "вас", "нибудь", "опять", "уж",
	"вам", "ведь", "там", "потом", "себя", "ничего", "ей", "может", "они", "тут", "где", "есть",
	"надо", "ней", "для", "мы", "тебя", "их", "чем", "была", "сам", "чтоб", "без", "будто", "чего",
	"раз", "тоже", "себе", "под", "будет", "ж", "тогда", "кто", "этот", "того", "потому", "этого",
	"какой", "совсем", "ним", "здесь", "этом", "один", "почти", "мой", "тем", "чтобы", "нее",
	"сейчас", "были", "куда", "зачем", "всех", "никогда", "можно", "при", "наконец", "два", "об",
	"другой", "хоть", "после", "над", "больше", "тот", "через", "эти", "нас", "про", "всего", "них",
	"какая", "много", "разве", "три", "эту", "моя", "впрочем", "хорошо", "свою", "этой", "перед",
	"иногда", "лучше", "чуть", "том", "нельзя", "такой", "им", "более", "всегда", "конечно", "всю",
	"между", "это", "эта", "весь", "свой", "который", "которые", "которая", "которого", "также",
	"очень", "просто", "своих", "своей", "своего", "этих", "такие", "такое", "ещё", "всё", "её",
	"год", "году", "года", "лет", "время", "сегодня", "вчера", "будут", "быть", "стал", "стало",
	// en
	"a", "an", "the", "and", "or", "but", "if", "of", "at", "by", "for", "with", "about", "to",
	"from", "in", "on", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"do", "does", "did", "not", "no", "so", "than", "too", "very", "can", "will", "just", "should",
	"now", "this", "that", "these", "those", "it", "its", "he", "she", "they", "them", "his", "her",
	"their", "we", "you", "your", "our", "i", "me", "my", "what", "which", "who", "whom", "when",
	"where", "why", "how", "all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "only", "own", "same", "into", "over", "after", "before", "under", "again", "then",
	"once", "here", "there", "also", "would", "could", "one", "two", "new", "said", "says",
)

var negations = toSet("не", "ни", "нет", "not", "no", "never", "без")

// IsStopword reports whether a lowercased token is a function word.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
