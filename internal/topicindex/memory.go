package topicindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"genretopics/internal/domain"
)

// DefaultTopK is the number of matches Search returns when topK <= 0.
const DefaultTopK = 3

// Index is an in-memory store of topic vectors searched by brute-force cosine similarity.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	topics    []int
}

func New() *Index { return &Index{} }

// FromTopicTerm indexes every row of a topic-term matrix under its row number.
func FromTopicTerm(topicTerm mat.Matrix) (*Index, error) {
	k, v := topicTerm.Dims()
	idx := New()
	if err := idx.Init(v); err != nil {
		return nil, err
	}
	topics := make([]int, k)
	vectors := make([][]float64, k)
	for t := 0; t < k; t++ {
		topics[t] = t
		vectors[t] = mat.Row(nil, t, topicTerm)
	}
	if err := idx.Upsert(topics, vectors); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *Index) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.topics = nil
	return nil
}

// Upsert stores L2-normalized copies of the vectors.
func (s *Index) Upsert(topics []int, vectors [][]float64) error {
	if len(topics) != len(vectors) {
		return fmt.Errorf("%w: %d topics, %d vectors", domain.ErrDimensionMismatch, len(topics), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("%w: vector of length %d, index dimension %d", domain.ErrDimensionMismatch, len(v), s.dimension)
		}
	}
	for i, v := range vectors {
		s.topics = append(s.topics, topics[i])
		s.vectors = append(s.vectors, unit(v))
	}
	return nil
}

// Search ranks stored topics by cosine similarity to vector. Equal scores keep insertion order.
func (s *Index) Search(vector []float64, topK int) ([]domain.TopicMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query of length %d, index dimension %d", domain.ErrDimensionMismatch, len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	q := unit(vector)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = floats.Dot(s.vectors[i], q)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.TopicMatch, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.TopicMatch{Topic: s.topics[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Index) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func unit(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	if norm := floats.Norm(out, 2); norm > 0 && !math.IsInf(norm, 0) {
		floats.Scale(1/norm, out)
	}
	return out
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
