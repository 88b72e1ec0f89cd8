package tokenizer

// englishStopwords is the built-in stopword list. Extra words come from configuration.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
	"can", "could",
	"did", "do", "does", "doing", "don", "down", "during",
	"each", "else",
	"few", "for", "from", "further",
	"had", "has", "have", "having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"if", "in", "into", "is", "it", "its", "itself",
	"just",
	"me", "more", "most", "my", "myself",
	"no", "nor", "not", "now",
	"of", "off", "on", "once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such",
	"than", "that", "the", "their", "theirs", "them", "themselves", "then", "there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "upon",
	"very",
	"was", "we", "were", "what", "when", "where", "which", "while", "who", "whom", "whose", "why", "will", "with", "would",
	"you", "your", "yours", "yourself", "yourselves",
}

func defaultStopwords(extra []string) map[string]struct{} {
	m := make(map[string]struct{}, len(englishStopwords)+len(extra))
	for _, w := range englishStopwords {
		m[w] = struct{}{}
	}
	for _, w := range extra {
		m[fold(w)] = struct{}{}
	}
	return m
}
