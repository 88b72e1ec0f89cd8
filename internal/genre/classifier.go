package genre

import (
	"fmt"
	"regexp"
	"strings"

	"genretopics/internal/domain"
)

// Rule labels any text that contains one of its keywords.
type Rule struct {
	Label    domain.Genre
	Keywords []string
	pattern  *regexp.Regexp
}

// NewRule compiles a case-insensitive, word-bounded matcher for the keywords.
// Each keyword also matches its simple plural.
func NewRule(label domain.Genre, keywords ...string) (Rule, error) {
	if label == "" {
		return Rule{}, fmt.Errorf("%w: rule without label", domain.ErrInvalidConfig)
	}
	alts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		alts = append(alts, regexp.QuoteMeta(kw))
	}
	if len(alts) == 0 {
		return Rule{}, fmt.Errorf("%w: rule %q has no keywords", domain.ErrInvalidConfig, label)
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)(?:e?s)?\b`)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Label: label, Keywords: keywords, pattern: re}, nil
}

// Match reports whether the rule fires on text.
func (r Rule) Match(text string) bool {
	return r.pattern != nil && r.pattern.MatchString(text)
}

// Classifier evaluates rules in priority order; the first matching rule wins.
type Classifier struct {
	rules    []Rule
	fallback domain.Genre
}

// New builds a classifier. An empty fallback means domain.GenreOther.
func New(rules []Rule, fallback domain.Genre) *Classifier {
	if fallback == "" {
		fallback = domain.GenreOther
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Classifier{rules: cp, fallback: fallback}
}

// Default returns the classifier with the built-in movie genre rules.
func Default() *Classifier {
	return New(DefaultRules(), domain.GenreOther)
}

// DefaultRules compiles the built-in rules in priority order.
func DefaultRules() []Rule {
	rules := make([]Rule, 0, len(defaultRules))
	for _, dr := range defaultRules {
		r, err := NewRule(dr.label, dr.keywords...)
		if err != nil {
			panic(err)
		}
		rules = append(rules, r)
	}
	return rules
}

// Classify returns the label of the first rule that matches text.
func (c *Classifier) Classify(text string) domain.Genre {
	for _, r := range c.rules {
		if r.Match(text) {
			return r.Label
		}
	}
	return c.fallback
}

// Labels lists every label the classifier can emit, in priority order, fallback last.
func (c *Classifier) Labels() []domain.Genre {
	out := make([]domain.Genre, 0, len(c.rules)+1)
	seen := make(map[domain.Genre]struct{}, len(c.rules)+1)
	for _, r := range c.rules {
		if _, ok := seen[r.Label]; ok {
			continue
		}
		seen[r.Label] = struct{}{}
		out = append(out, r.Label)
	}
	if _, ok := seen[c.fallback]; !ok {
		out = append(out, c.fallback)
	}
	return out
}

type ruleSpec struct {
	label    domain.Genre
	keywords []string
}

var defaultRules = []ruleSpec{
	{"War", []string{"war", "battle", "soldier", "army", "armies", "military", "troop", "combat", "platoon", "invasion"}},
	{"Sci-Fi", []string{"robot", "alien", "spaceship", "space", "planet", "galaxy", "android", "cyborg", "future", "time travel", "scientist"}},
	{"Horror", []string{"ghost", "haunted", "demon", "monster", "vampire", "zombie", "horror", "possessed", "curse"}},
	{"Crime", []string{"murder", "detective", "police", "gangster", "crime", "heist", "killer", "mafia", "thief", "thieves", "robbery"}},
	{"Romance", []string{"love", "romance", "romantic", "marriage", "wedding", "lover", "affair", "fall in love"}},
	{"Comedy", []string{"comedy", "funny", "hilarious", "prank", "comic", "humor", "humour"}},
	{"Western", []string{"cowboy", "sheriff", "outlaw", "ranch", "frontier", "gunslinger", "saloon"}},
	{"Fantasy", []string{"wizard", "magic", "dragon", "sorcerer", "witch", "witches", "kingdom", "enchanted", "fairy", "fairies"}},
}
