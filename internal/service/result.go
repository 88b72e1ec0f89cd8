package service

import (
	"github.com/golang/glog"

	"genretopics/internal/domain"
	"genretopics/internal/termmatrix"
	"genretopics/internal/tokenizer"
	"genretopics/internal/topicindex"
	"genretopics/internal/topicmodel"
)

// Result holds every output of a pipeline run. It is read-only once returned.
type Result struct {
	Granularity domain.Granularity
	Documents   []domain.Document
	GenreCounts []domain.GenreCount
	Vocabulary  *tokenizer.Vocabulary
	Matrix      *termmatrix.Matrix
	Model       *topicmodel.Model
	Topics      []domain.TopicSummary
	Profiles    []domain.GenreTopicProfile
	Projection  domain.PCAProjection
	Warnings    []domain.Warning

	classifier domain.Classifier
	tokenizer  domain.Tokenizer
	index      *topicindex.Index
	termIndex  *tokenizer.Vocabulary
}

func (r *Result) warn(ws ...domain.Warning) {
	for _, w := range ws {
		glog.Warningf("%s", w)
		r.Warnings = append(r.Warnings, w)
	}
}

// Query classifies text and ranks the fitted topics by cosine similarity
// between the text's term counts and each topic's term distribution.
func (r *Result) Query(text string, topK int) (domain.Genre, []domain.TopicMatch, error) {
	genre := r.classifier.Classify(text)
	vec := make([]float64, r.termIndex.Len())
	for _, tok := range r.tokenizer.Tokenize(text) {
		if j, ok := r.termIndex.Index(tok); ok {
			vec[j]++
		}
	}
	matches, err := r.index.Search(vec, topK)
	if err != nil {
		return genre, nil, err
	}
	return genre, matches, nil
}
