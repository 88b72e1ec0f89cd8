package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()
	tok := New(Options{})
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"punctuation only", "!!! ... ---", nil},
		{"stopwords dropped", "The soldier and the army", []string{"soldier", "army"}},
		{"case folded", "ROBOT Robot robot", []string{"robot", "robot", "robot"}},
		{"split on punctuation", "love,battle;robot-war", []string{"love", "battle", "robot", "war"}},
		{"digits kept", "apollo 13 in 1995", []string{"apollo", "13", "1995"}},
		{"short tokens dropped", "a b c x-ray", []string{"ray"}},
		{"unicode letters", "Café über STRASSE", []string{"café", "über", "strasse"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tok.Tokenize(tc.in))
		})
	}
}

func TestExtraStopwordsAndMinLength(t *testing.T) {
	t.Parallel()
	tok := New(Options{MinLength: 4, ExtraStopwords: []string{"Film"}})
	assert.Equal(t, []string{"robot", "battle"}, tok.Tokenize("the film has a robot and a big battle"))
	assert.True(t, tok.isStopword("film"))
	assert.True(t, tok.isStopword("the"))
	assert.False(t, tok.isStopword("robot"))
}

func TestBuildVocabularyLexicalOrder(t *testing.T) {
	t.Parallel()
	docs := [][]string{{"robot", "love"}, {"battle", "robot"}, nil}
	v, capped := BuildVocabulary(docs, 0)
	assert.False(t, capped)
	require.Equal(t, 3, v.Len())
	assert.Equal(t, []string{"battle", "love", "robot"}, v.Terms())
	i, ok := v.Index("robot")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, "love", v.Term(1))
	_, ok = v.Index("missing")
	assert.False(t, ok)
}

func TestBuildVocabularyCap(t *testing.T) {
	t.Parallel()
	docs := [][]string{{"zeta", "zeta", "zeta", "beta", "beta", "alpha", "gamma"}}
	v, capped := BuildVocabulary(docs, 3)
	assert.True(t, capped)
	// alpha and gamma tie on one occurrence; alpha wins on term order
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, v.Terms())

	v, capped = BuildVocabulary(docs, 10)
	assert.False(t, capped)
	assert.Equal(t, 4, v.Len())
}

func TestBuildVocabularyIsStable(t *testing.T) {
	t.Parallel()
	a, _ := BuildVocabulary([][]string{{"b", "a"}, {"c"}}, 0)
	b, _ := BuildVocabulary([][]string{{"c"}, {"a", "b"}}, 0)
	assert.Equal(t, a.Terms(), b.Terms())
}
