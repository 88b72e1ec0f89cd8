package dominant

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"genretopics/internal/domain"
)

// Resolver turns the row-topic distribution into one profile per genre.
type Resolver struct {
	Granularity domain.Granularity
}

// NewResolver returns a resolver for rows of the given granularity.
func NewResolver(g domain.Granularity) *Resolver {
	return &Resolver{Granularity: g}
}

// Resolve aggregates topic weights per genre and picks the dominant topic.
// Profiles follow the first appearance of each genre in the row order.
func (r *Resolver) Resolve(docTopic mat.Matrix, genres []domain.Genre) ([]domain.GenreTopicProfile, error) {
	d, _ := docTopic.Dims()
	if d != len(genres) {
		return nil, domain.Fail(domain.StageResolve,
			fmt.Errorf("%w: %d rows, %d genre labels", domain.ErrDimensionMismatch, d, len(genres)))
	}

	var (
		labels  []domain.Genre
		weights [][]float64
		err     error
	)
	switch r.Granularity {
	case domain.GranularityGenre, "":
		labels, weights, err = identity(docTopic, genres)
	case domain.GranularityDocument:
		labels, weights = meanByGenre(docTopic, genres)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, r.Granularity)
	}
	if err != nil {
		return nil, domain.Fail(domain.StageResolve, err)
	}

	out := make([]domain.GenreTopicProfile, len(labels))
	for i, g := range labels {
		top := Argmax(weights[i])
		out[i] = domain.GenreTopicProfile{Genre: g, DominantTopic: top, Weight: weights[i][top], Weights: weights[i]}
	}
	return out, nil
}

// identity is the per-genre mean when every row already is one genre: each
// row is returned as is. A genre on two rows breaks that premise.
func identity(docTopic mat.Matrix, genres []domain.Genre) ([]domain.Genre, [][]float64, error) {
	_, k := docTopic.Dims()
	seen := make(map[domain.Genre]struct{}, len(genres))
	weights := make([][]float64, len(genres))
	for i, g := range genres {
		if _, dup := seen[g]; dup {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrDuplicateGenreRow, g)
		}
		seen[g] = struct{}{}
		weights[i] = mat.Row(make([]float64, k), i, docTopic)
	}
	return append([]domain.Genre(nil), genres...), weights, nil
}

// meanByGenre averages the topic weights of every row sharing a genre.
func meanByGenre(docTopic mat.Matrix, genres []domain.Genre) ([]domain.Genre, [][]float64) {
	_, k := docTopic.Dims()
	pos := make(map[domain.Genre]int)
	var (
		labels []domain.Genre
		sums   [][]float64
		counts []int
	)
	row := make([]float64, k)
	for i, g := range genres {
		p, ok := pos[g]
		if !ok {
			p = len(labels)
			pos[g] = p
			labels = append(labels, g)
			sums = append(sums, make([]float64, k))
			counts = append(counts, 0)
		}
		mat.Row(row, i, docTopic)
		for t, w := range row {
			sums[p][t] += w
		}
		counts[p]++
	}
	for p := range sums {
		for t := range sums[p] {
			sums[p][t] /= float64(counts[p])
		}
	}
	return labels, sums
}

// Argmax returns the index of the largest weight, the smallest index among ties.
func Argmax(w []float64) int {
	best := 0
	for i := 1; i < len(w); i++ {
		if w[i] > w[best] {
			best = i
		}
	}
	return best
}
