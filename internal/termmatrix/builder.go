package termmatrix

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"genretopics/internal/domain"
	"genretopics/internal/tokenizer"
)

// Builder aggregates token counts into a Matrix.
type Builder struct {
	Granularity domain.Granularity
	Workers     int
}

// NewBuilder returns a builder for the given granularity. workers <= 0 means GOMAXPROCS.
func NewBuilder(g domain.Granularity, workers int) *Builder {
	return &Builder{Granularity: g, Workers: workers}
}

// Build counts the vocabulary terms of every document and merges the counts
// into rows. Under genre granularity each genre with at least one document is
// one row, ordered by labelOrder and then by first appearance; under document
// granularity each document is its own row. Counting runs in parallel, merging
// follows document order.
func (b *Builder) Build(docs []domain.Document, tokens [][]string, vocab *tokenizer.Vocabulary, labelOrder []domain.Genre) (*Matrix, []domain.Warning, error) {
	if len(docs) == 0 {
		return nil, nil, domain.Fail(domain.StageMatrix, domain.ErrEmptyCorpus)
	}
	if len(tokens) != len(docs) {
		return nil, nil, domain.Fail(domain.StageMatrix,
			fmt.Errorf("%w: %d documents, %d token sequences", domain.ErrDimensionMismatch, len(docs), len(tokens)))
	}
	if vocab == nil || vocab.Len() == 0 {
		return nil, nil, domain.Fail(domain.StageMatrix, domain.ErrEmptyVocabulary)
	}

	counts := make([]map[int]int, len(docs))
	var g errgroup.Group
	g.SetLimit(b.workers())
	for i := range docs {
		g.Go(func() error {
			c := make(map[int]int, len(tokens[i]))
			for _, tok := range tokens[i] {
				if j, ok := vocab.Index(tok); ok {
					c[j]++
				}
			}
			counts[i] = c
			return nil
		})
	}
	_ = g.Wait()

	var rows []Row
	switch b.granularity() {
	case domain.GranularityGenre:
		rows = mergeByGenre(docs, counts, labelOrder)
	case domain.GranularityDocument:
		rows = make([]Row, len(docs))
		for i, d := range docs {
			rows[i] = Row{Label: d.ID, Genre: d.Genre, Entries: entries(counts[i])}
		}
	default:
		return nil, nil, domain.Fail(domain.StageMatrix,
			fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, b.Granularity))
	}
	return New(rows, vocab.Terms())
}

func mergeByGenre(docs []domain.Document, counts []map[int]int, labelOrder []domain.Genre) []Row {
	order := make([]domain.Genre, 0, len(labelOrder))
	pos := make(map[domain.Genre]int)
	for _, l := range labelOrder {
		if _, ok := pos[l]; !ok {
			pos[l] = len(order)
			order = append(order, l)
		}
	}
	for _, d := range docs {
		if _, ok := pos[d.Genre]; !ok {
			pos[d.Genre] = len(order)
			order = append(order, d.Genre)
		}
	}

	merged := make([]map[int]int, len(order))
	present := make([]bool, len(order))
	for i, d := range docs {
		p := pos[d.Genre]
		present[p] = true
		if merged[p] == nil {
			merged[p] = make(map[int]int)
		}
		for j, c := range counts[i] {
			merged[p][j] += c
		}
	}

	rows := make([]Row, 0, len(order))
	for p, genre := range order {
		if !present[p] {
			continue
		}
		rows = append(rows, Row{Label: string(genre), Genre: genre, Entries: entries(merged[p])})
	}
	return rows
}

func entries(c map[int]int) []Entry {
	out := make([]Entry, 0, len(c))
	for j, n := range c {
		out = append(out, Entry{Term: j, Count: n})
	}
	return out
}

func (b *Builder) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (b *Builder) granularity() domain.Granularity {
	if b.Granularity == "" {
		return domain.GranularityGenre
	}
	return b.Granularity
}
