package topicindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"genretopics/internal/domain"
)

func TestSearchRanksByCosine(t *testing.T) {
	t.Parallel()
	tt := mat.NewDense(3, 3, []float64{
		0.8, 0.1, 0.1,
		0.1, 0.8, 0.1,
		0.8, 0.1, 0.1,
	})
	idx, err := FromTopicTerm(tt)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	res, err := idx.Search([]float64{0, 5, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 1, res[0].Topic)
	assert.InDelta(t, 0.8/0.8124, res[0].Score, 1e-3)
	// topics 0 and 2 are identical; insertion order wins
	assert.Equal(t, 0, res[1].Topic)
}

func TestSearchZeroQuery(t *testing.T) {
	t.Parallel()
	idx, err := FromTopicTerm(mat.NewDense(2, 2, []float64{0.5, 0.5, 0.9, 0.1}))
	require.NoError(t, err)
	res, err := idx.Search([]float64{0, 0}, 0)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, []domain.TopicMatch{{Topic: 0, Score: 0}, {Topic: 1, Score: 0}}, res)
}

func TestIndexDimensionChecks(t *testing.T) {
	t.Parallel()
	idx := New()
	assert.Error(t, idx.Init(0))
	require.NoError(t, idx.Init(2))
	assert.ErrorIs(t, idx.Upsert([]int{0}, [][]float64{{1, 2, 3}}), domain.ErrDimensionMismatch)
	assert.ErrorIs(t, idx.Upsert([]int{0, 1}, [][]float64{{1, 2}}), domain.ErrDimensionMismatch)
	_, err := idx.Search([]float64{1}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	require.NoError(t, idx.Upsert([]int{7}, [][]float64{{1, 0}}))
	assert.Equal(t, 1, idx.Len())
}
