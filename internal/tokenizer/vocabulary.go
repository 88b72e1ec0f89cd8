package tokenizer

import "sort"

// Vocabulary maps terms to stable column indices. Indices follow ascending
// lexical order of the terms.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// BuildVocabulary collects every term of the token sequences. With maxTerms > 0
// only the maxTerms most frequent terms are kept (ties by term) and capped is true
// when something was cut.
func BuildVocabulary(docs [][]string, maxTerms int) (vocab *Vocabulary, capped bool) {
	freq := make(map[string]int)
	for _, toks := range docs {
		for _, tok := range toks {
			freq[tok]++
		}
	}
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	if maxTerms > 0 && len(terms) > maxTerms {
		sort.Slice(terms, func(i, j int) bool {
			if freq[terms[i]] != freq[terms[j]] {
				return freq[terms[i]] > freq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxTerms]
		capped = true
	}
	sort.Strings(terms)
	return NewVocabulary(terms), capped
}

// NewVocabulary indexes terms in the given order. Duplicates keep their first index.
func NewVocabulary(terms []string) *Vocabulary {
	v := &Vocabulary{
		terms: make([]string, 0, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for _, t := range terms {
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = len(v.terms)
		v.terms = append(v.terms, t)
	}
	return v
}

func (v *Vocabulary) Len() int { return len(v.terms) }

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// Index returns the column of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Terms returns a copy of the terms in column order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}
