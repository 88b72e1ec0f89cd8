package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// DefaultMinLength is the shortest token, in runes, that survives tokenization.
const DefaultMinLength = 2

// Tokenizer normalizes text into terms: case folding, splitting on every rune
// that is neither a letter nor a digit, and stopword removal. No stemming.
type Tokenizer struct {
	stopwords map[string]struct{}
	minLength int
}

// Options tune a Tokenizer.
type Options struct {
	MinLength      int
	ExtraStopwords []string
}

// New creates a tokenizer with the built-in English stopwords plus opts.ExtraStopwords.
func New(opts Options) *Tokenizer {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	return &Tokenizer{
		stopwords: defaultStopwords(opts.ExtraStopwords),
		minLength: opts.MinLength,
	}
}

// Tokenize returns the surviving terms of text in order of appearance.
// Empty or non-alphanumeric text yields an empty sequence.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	raw := strings.FieldsFunc(fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := raw[:0]
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) < t.minLength {
			continue
		}
		if t.isStopword(tok) {
			continue
		}
		out = append(out, tok)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// isStopword expects an already folded term.
func (t *Tokenizer) isStopword(term string) bool {
	_, ok := t.stopwords[term]
	return ok
}

// fold applies Unicode case folding. A Caser is not safe for concurrent use,
// so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
