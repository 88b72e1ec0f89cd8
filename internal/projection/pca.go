package projection

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"genretopics/internal/domain"
)

const (
	// DefaultMaxTerms is the number of heaviest terms the projection looks at.
	DefaultMaxTerms = 50
	// Axes is the number of principal components reported.
	Axes = 2
	// minStd is the standard deviation below which a column counts as constant.
	minStd = 1e-12
)

var errEigen = errors.New("eigendecomposition did not converge")

// Reducer projects topics onto the principal components of their term weights.
type Reducer struct {
	MaxTerms int
}

func NewReducer(maxTerms int) *Reducer {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}
	return &Reducer{MaxTerms: maxTerms}
}

// Project selects the MaxTerms terms with the largest summed weight, drops
// columns without variance, standardizes the rest and projects every topic
// onto the two leading eigenvectors of their covariance.
func (r *Reducer) Project(topicTerm mat.Matrix, terms []string) (domain.PCAProjection, []domain.Warning, error) {
	k, v := topicTerm.Dims()
	if v != len(terms) {
		return domain.PCAProjection{}, nil, domain.Fail(domain.StageProject,
			fmt.Errorf("%w: %d columns, %d terms", domain.ErrDimensionMismatch, v, len(terms)))
	}
	var warnings []domain.Warning

	cols := r.selectColumns(topicTerm, terms)
	var (
		kept    []string
		columns [][]float64
	)
	dropped := 0
	for _, j := range cols {
		col := mat.Col(nil, j, topicTerm)
		mean, std := stat.MeanStdDev(col, nil)
		if !(std > minStd) || math.IsInf(std, 0) {
			dropped++
			continue
		}
		for i := range col {
			col[i] = (col[i] - mean) / std
		}
		kept = append(kept, terms[j])
		columns = append(columns, col)
	}
	if dropped > 0 {
		warnings = append(warnings, domain.Warnf(domain.StageProject, domain.WarnZeroVarianceDropped,
			"%d of %d term columns have zero variance across topics and were dropped", dropped, len(cols)))
	}

	proj := domain.PCAProjection{
		Points:            make([]domain.TopicCoordinate, k),
		ExplainedVariance: make([]float64, Axes),
		Terms:             kept,
	}
	for t := range proj.Points {
		proj.Points[t] = domain.TopicCoordinate{Topic: t, Coords: make([]float64, Axes)}
	}
	if len(columns) == 0 {
		warnings = append(warnings, domain.Warnf(domain.StageProject, domain.WarnDegenerateProjection,
			"no term varies across the %d topics; projection is all zero", k))
		return proj, warnings, nil
	}

	c := len(columns)
	x := mat.NewDense(k, c, nil)
	for j, col := range columns {
		x.SetCol(j, col)
	}
	cov := mat.NewSymDense(c, nil)
	stat.CovarianceMatrix(cov, x, nil)

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return domain.PCAProjection{}, warnings, domain.Fail(domain.StageProject, errEigen)
	}
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	order := make([]int, c)
	for i := range order {
		order[i] = i
		if values[i] < 0 {
			values[i] = 0
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })
	total := floats.Sum(values)

	axis := make([]float64, c)
	for a := 0; a < Axes && a < c; a++ {
		mat.Col(axis, order[a], &vectors)
		orient(axis)
		if total > 0 {
			proj.ExplainedVariance[a] = values[order[a]] / total
		}
		for t := 0; t < k; t++ {
			proj.Points[t].Coords[a] = floats.Dot(x.RawRowView(t), axis)
		}
	}
	return proj, warnings, nil
}

// selectColumns returns the indices of the MaxTerms heaviest columns, ties by term.
func (r *Reducer) selectColumns(topicTerm mat.Matrix, terms []string) []int {
	_, v := topicTerm.Dims()
	sums := make([]float64, v)
	idx := make([]int, v)
	for j := range idx {
		idx[j] = j
		sums[j] = floats.Sum(mat.Col(nil, j, topicTerm))
	}
	sort.Slice(idx, func(a, b int) bool {
		if sums[idx[a]] != sums[idx[b]] {
			return sums[idx[a]] > sums[idx[b]]
		}
		return terms[idx[a]] < terms[idx[b]]
	})
	m := r.MaxTerms
	if m <= 0 {
		m = DefaultMaxTerms
	}
	if m > v {
		m = v
	}
	return idx[:m]
}

// orient flips the vector so that its largest magnitude component is positive.
func orient(vec []float64) {
	best := 0
	for i := range vec {
		if math.Abs(vec[i]) > math.Abs(vec[best]) {
			best = i
		}
	}
	if vec[best] < 0 {
		floats.Scale(-1, vec)
	}
}
