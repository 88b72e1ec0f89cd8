package termmatrix

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"genretopics/internal/domain"
)

// Entry is one non-zero cell of a row.
type Entry struct {
	Term  int
	Count int
}

// Row is a sparse vector of term counts. Entries are sorted by term index.
type Row struct {
	Label   string
	Genre   domain.Genre
	Entries []Entry
	Total   int
}

// Matrix is a sparse row × term count matrix. Every row has at least one
// non-zero entry and every column is used by at least one row.
type Matrix struct {
	rows  []Row
	terms []string
	total int
}

// New builds a matrix from explicit rows. Rows with a zero total are dropped,
// each with a warning, and columns no surviving row uses are removed.
func New(rows []Row, terms []string) (*Matrix, []domain.Warning, error) {
	var warnings []domain.Warning
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		r = normalizeRow(r)
		for _, e := range r.Entries {
			if e.Term < 0 || e.Term >= len(terms) {
				return nil, nil, domain.Fail(domain.StageMatrix,
					fmt.Errorf("%w: row %q uses term %d of %d", domain.ErrDimensionMismatch, r.Label, e.Term, len(terms)))
			}
		}
		if r.Total == 0 {
			warnings = append(warnings, domain.Warnf(domain.StageMatrix, domain.WarnEmptyRowDropped,
				"row %q has no terms and is excluded from modeling", r.Label))
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil, warnings, domain.Fail(domain.StageMatrix, domain.ErrNoRows)
	}

	used := make([]bool, len(terms))
	for _, r := range kept {
		for _, e := range r.Entries {
			used[e.Term] = true
		}
	}
	remap := make([]int, len(terms))
	cols := make([]string, 0, len(terms))
	for j, term := range terms {
		if !used[j] {
			remap[j] = -1
			continue
		}
		remap[j] = len(cols)
		cols = append(cols, term)
	}
	if len(cols) == 0 {
		return nil, warnings, domain.Fail(domain.StageMatrix, domain.ErrEmptyVocabulary)
	}
	m := &Matrix{rows: kept, terms: cols}
	for i := range m.rows {
		if len(cols) != len(terms) {
			for k := range m.rows[i].Entries {
				m.rows[i].Entries[k].Term = remap[m.rows[i].Entries[k].Term]
			}
		}
		m.total += m.rows[i].Total
	}
	return m, warnings, nil
}

// normalizeRow drops zero cells, merges repeated terms, sorts by term and recomputes the total.
func normalizeRow(r Row) Row {
	counts := make(map[int]int, len(r.Entries))
	for _, e := range r.Entries {
		if e.Count > 0 {
			counts[e.Term] += e.Count
		}
	}
	out := Row{Label: r.Label, Genre: r.Genre, Entries: make([]Entry, 0, len(counts))}
	for term, c := range counts {
		out.Entries = append(out.Entries, Entry{Term: term, Count: c})
		out.Total += c
	}
	sort.Slice(out.Entries, func(i, j int) bool { return out.Entries[i].Term < out.Entries[j].Term })
	return out
}

func (m *Matrix) NumRows() int  { return len(m.rows) }
func (m *Matrix) NumTerms() int { return len(m.terms) }

// TotalCount is the sum of every cell.
func (m *Matrix) TotalCount() int { return m.total }

// Row returns row i. Callers must not modify its entries.
func (m *Matrix) Row(i int) Row { return m.rows[i] }

// Terms returns the column terms.
func (m *Matrix) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Genres returns the genre of every row in row order.
func (m *Matrix) Genres() []domain.Genre {
	out := make([]domain.Genre, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Genre
	}
	return out
}

// Labels returns the label of every row in row order.
func (m *Matrix) Labels() []string {
	out := make([]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Label
	}
	return out
}

// dense materializes the counts.
func (m *Matrix) dense() *mat.Dense {
	d := mat.NewDense(len(m.rows), len(m.terms), nil)
	for i, r := range m.rows {
		for _, e := range r.Entries {
			d.Set(i, e.Term, float64(e.Count))
		}
	}
	return d
}
