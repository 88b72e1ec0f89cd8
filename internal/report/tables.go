package report

import (
	"fmt"
	"strconv"

	"genretopics/internal/domain"
	"genretopics/internal/service"
)

// Data is everything the report layer renders.
type Data struct {
	Topics      int
	GenreCounts []domain.GenreCount
	Summaries   []domain.TopicSummary
	Profiles    []domain.GenreTopicProfile
	Projection  domain.PCAProjection
	Warnings    []domain.Warning
}

// FromResult extracts the report data of a pipeline run.
func FromResult(res *service.Result) Data {
	return Data{
		Topics:      res.Model.K,
		GenreCounts: res.GenreCounts,
		Summaries:   res.Topics,
		Profiles:    res.Profiles,
		Projection:  res.Projection,
		Warnings:    res.Warnings,
	}
}

// Table is one tabular artifact with a stable header.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Tables returns the four artifacts in a fixed order.
func Tables(d Data) []Table {
	return []Table{
		GenreCountsTable(d.GenreCounts),
		TopicTermsTable(d.Summaries),
		GenreTopicsTable(d.Profiles, d.Topics),
		ProjectionTable(d.Projection),
	}
}

func GenreCountsTable(counts []domain.GenreCount) Table {
	t := Table{Name: "genre_counts", Header: []string{"genre", "documents"}}
	for _, c := range counts {
		t.Rows = append(t.Rows, []string{string(c.Genre), strconv.Itoa(c.Count)})
	}
	return t
}

func TopicTermsTable(topics []domain.TopicSummary) Table {
	t := Table{Name: "topic_terms", Header: []string{"topic", "rank", "term", "weight"}}
	for _, ts := range topics {
		for i, tw := range ts.Terms {
			t.Rows = append(t.Rows, []string{strconv.Itoa(ts.Topic), strconv.Itoa(i + 1), tw.Term, num(tw.Weight)})
		}
	}
	return t
}

// GenreTopicsTable has one weight column per topic after the dominant topic.
func GenreTopicsTable(profiles []domain.GenreTopicProfile, k int) Table {
	header := []string{"genre", "dominant_topic", "weight"}
	for i := 0; i < k; i++ {
		header = append(header, fmt.Sprintf("topic_%d", i))
	}
	t := Table{Name: "genre_topics", Header: header}
	for _, p := range profiles {
		row := []string{string(p.Genre), strconv.Itoa(p.DominantTopic), num(p.Weight)}
		for i := 0; i < k; i++ {
			w := 0.0
			if i < len(p.Weights) {
				w = p.Weights[i]
			}
			row = append(row, num(w))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func ProjectionTable(p domain.PCAProjection) Table {
	t := Table{Name: "topic_projection", Header: []string{"topic", "pc1", "pc2", "pc1_variance", "pc2_variance"}}
	v1, v2 := axis(p.ExplainedVariance, 0), axis(p.ExplainedVariance, 1)
	for _, pt := range p.Points {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(pt.Topic), num(axis(pt.Coords, 0)), num(axis(pt.Coords, 1)), num(v1), num(v2),
		})
	}
	return t
}

func axis(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
