package summarizer

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"genretopics/internal/domain"
)

// DefaultTopTerms is the number of terms kept per topic.
const DefaultTopTerms = 10

// TopicSummarizer ranks the terms of every topic by weight.
type TopicSummarizer struct {
	TopN int
}

// NewTopicSummarizer creates a summarizer keeping topN terms per topic.
func NewTopicSummarizer(topN int) *TopicSummarizer {
	if topN <= 0 {
		topN = DefaultTopTerms
	}
	return &TopicSummarizer{TopN: topN}
}

// Summarize returns min(TopN, V) terms per topic row, by descending weight
// with ties broken by ascending term.
func (s *TopicSummarizer) Summarize(topicTerm mat.Matrix, terms []string) ([]domain.TopicSummary, error) {
	k, v := topicTerm.Dims()
	if v != len(terms) {
		return nil, domain.Fail(domain.StageSummarize,
			fmt.Errorf("%w: %d columns, %d terms", domain.ErrDimensionMismatch, v, len(terms)))
	}
	n := s.TopN
	if n <= 0 {
		n = DefaultTopTerms
	}
	if n > v {
		n = v
	}
	out := make([]domain.TopicSummary, k)
	for t := 0; t < k; t++ {
		ranked := make([]domain.TermWeight, v)
		for j := 0; j < v; j++ {
			ranked[j] = domain.TermWeight{Term: terms[j], Weight: topicTerm.At(t, j)}
		}
		sort.Slice(ranked, func(a, b int) bool {
			if ranked[a].Weight != ranked[b].Weight {
				return ranked[a].Weight > ranked[b].Weight
			}
			return ranked[a].Term < ranked[b].Term
		})
		out[t] = domain.TopicSummary{Topic: t, Terms: ranked[:n:n]}
	}
	return out, nil
}
