package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"genretopics/internal/domain"
)

func TestProjectCorrelatedColumns(t *testing.T) {
	t.Parallel()
	// both columns move together: one axis carries all the variance
	tt := mat.NewDense(2, 2, []float64{
		0.3, 0.3,
		0.7, 0.7,
	})
	p, warnings, err := NewReducer(50).Project(tt, []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, p.ExplainedVariance, 2)
	assert.InDelta(t, 1.0, p.ExplainedVariance[0], 1e-9)
	assert.InDelta(t, 0.0, p.ExplainedVariance[1], 1e-9)

	require.Len(t, p.Points, 2)
	assert.InDelta(t, -1.0, p.Points[0].Coords[0], 1e-9)
	assert.InDelta(t, 1.0, p.Points[1].Coords[0], 1e-9)
	assert.InDelta(t, 0.0, p.Points[0].Coords[1], 1e-9)
	assert.InDelta(t, 0.0, p.Points[1].Coords[1], 1e-9)
	assert.Equal(t, []string{"a", "b"}, p.Terms)
}

func TestProjectIdenticalTopicsIsDegenerate(t *testing.T) {
	t.Parallel()
	tt := mat.NewDense(2, 2, []float64{
		0.4, 0.6,
		0.4, 0.6,
	})
	p, warnings, err := NewReducer(50).Project(tt, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, domain.HasWarning(warnings, domain.WarnZeroVarianceDropped))
	assert.True(t, domain.HasWarning(warnings, domain.WarnDegenerateProjection))
	assert.Equal(t, []float64{0, 0}, p.ExplainedVariance)
	for _, pt := range p.Points {
		assert.Equal(t, []float64{0, 0}, pt.Coords)
	}
}

func TestProjectDropsConstantColumns(t *testing.T) {
	t.Parallel()
	tt := mat.NewDense(3, 4, []float64{
		0.5, 0.2, 0.1, 0.2,
		0.1, 0.2, 0.6, 0.1,
		0.2, 0.2, 0.3, 0.3,
	})
	p, warnings, err := NewReducer(50).Project(tt, []string{"w", "x", "y", "z"})
	require.NoError(t, err)
	assert.True(t, domain.HasWarning(warnings, domain.WarnZeroVarianceDropped))
	assert.False(t, domain.HasWarning(warnings, domain.WarnDegenerateProjection))
	assert.Equal(t, []string{"y", "w", "z"}, p.Terms)

	assert.InDelta(t, 1.0, floats.Sum(p.ExplainedVariance), 1e-9)
	assert.GreaterOrEqual(t, p.ExplainedVariance[0], p.ExplainedVariance[1])
	for _, pt := range p.Points {
		for _, c := range pt.Coords {
			assert.False(t, math.IsNaN(c))
		}
	}
}

func TestProjectCapsTerms(t *testing.T) {
	t.Parallel()
	tt := mat.NewDense(2, 4, []float64{
		0.1, 0.4, 0.3, 0.2,
		0.2, 0.1, 0.3, 0.4,
	})
	p, _, err := NewReducer(2).Project(tt, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	// c and d are the heaviest columns; c is constant across topics
	assert.Equal(t, []string{"d"}, p.Terms)
}

func TestProjectSingleTopic(t *testing.T) {
	t.Parallel()
	tt := mat.NewDense(1, 3, []float64{0.2, 0.3, 0.5})
	p, warnings, err := NewReducer(50).Project(tt, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.True(t, domain.HasWarning(warnings, domain.WarnDegenerateProjection))
	require.Len(t, p.Points, 1)
	assert.Equal(t, []float64{0, 0}, p.Points[0].Coords)
}

func TestProjectIsDeterministic(t *testing.T) {
	t.Parallel()
	tt := mat.NewDense(3, 3, []float64{
		0.6, 0.3, 0.1,
		0.2, 0.5, 0.3,
		0.1, 0.1, 0.8,
	})
	a, _, err := NewReducer(50).Project(tt, []string{"a", "b", "c"})
	require.NoError(t, err)
	b, _, err := NewReducer(50).Project(tt, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProjectDimensionMismatch(t *testing.T) {
	t.Parallel()
	_, _, err := NewReducer(5).Project(mat.NewDense(2, 2, nil), []string{"a"})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
