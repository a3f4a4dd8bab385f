package nlp

var stopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any", "are",
	"aren't", "around", "as", "at", "back", "be", "because", "been", "before", "being", "below", "between",
	"both", "but", "by", "can", "can't", "cannot", "could", "couldn't", "did", "didn't", "do", "does",
	"doesn't", "doing", "don't", "down", "during", "each", "even", "ever", "every", "few", "first", "for",
	"from", "further", "get", "gets", "got", "had", "hadn't", "has", "hasn't", "have", "haven't", "having",
	"he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "however", "i", "if", "in",
	"into", "is", "isn't", "it", "its", "itself", "just", "last", "latest", "like", "made", "make", "many",
	"may", "me", "might", "more", "most", "much", "must", "my", "myself", "new", "news", "next", "no",
	"nor", "not", "now", "of", "off", "on", "once", "one", "only", "or", "other", "ought", "our", "ours",
	"ourselves", "out", "over", "own", "said", "same", "say", "says", "see", "she", "should", "shouldn't",
	"since", "so", "some", "still", "such", "take", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those", "though", "through", "to", "today",
	"too", "two", "under", "until", "up", "upon", "us", "very", "via", "was", "wasn't", "way", "we",
	"week", "well", "were", "weren't", "what", "when", "where", "whether", "which", "while", "who",
	"whom", "why", "will", "with", "within", "without", "won't", "would", "wouldn't", "year", "years",
	"yesterday", "yet", "you", "your", "yours", "yourself", "yourselves",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
