package topicmodel

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"genretopics/internal/domain"
	"genretopics/internal/termmatrix"
)

// Model is a fitted topic model. Both distributions are row-stochastic and
// strictly positive.
type Model struct {
	K          int
	Terms      []string
	Labels     []string
	Genres     []domain.Genre
	TopicTerm  *mat.Dense // K × V
	DocTopic   *mat.Dense // D × K
	Iterations int
	Converged  bool
	// Bound is the evidence lower bound of the returned iterate.
	Bound  float64
	Bounds []float64
}

// Engine fits latent Dirichlet allocation by batch variational Bayes.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and fills in defaults.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, domain.Fail(domain.StageModel, err)
	}
	return &Engine{cfg: cfg.withDefaults()}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Fit runs variational EM until the per-token bound changes by less than the
// tolerance or the iteration budget is spent. Without convergence the best
// iterate is returned together with a not_converged warning.
func (e *Engine) Fit(ctx context.Context, m *termmatrix.Matrix) (*Model, []domain.Warning, error) {
	cfg := e.cfg
	if m == nil || m.NumRows() == 0 {
		return nil, nil, domain.Fail(domain.StageModel, domain.ErrNoRows)
	}
	if m.NumTerms() == 0 {
		return nil, nil, domain.Fail(domain.StageModel, domain.ErrEmptyVocabulary)
	}

	var warnings []domain.Warning
	if cfg.Topics >= m.NumRows() {
		warnings = append(warnings, domain.Warnf(domain.StageModel, domain.WarnTopicsExceedRows,
			"%d topics requested for %d rows; the fit is under-determined", cfg.Topics, m.NumRows()))
	}

	lambda := initLambda(cfg, m)
	total := float64(m.TotalCount())
	var (
		best      *mat.Dense
		bestBound = math.Inf(-1)
		bounds    []float64
		converged bool
		prev      float64
		iter      int
	)
	for iter = 1; iter <= cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, warnings, domain.Fail(domain.StageModel, err)
		}
		st, bound, err := Step(cfg, lambda, m)
		if err != nil {
			return nil, warnings, domain.Fail(domain.StageModel, err)
		}
		bounds = append(bounds, bound)
		if best == nil || bound > bestBound {
			best, bestBound = st.Lambda, bound
		}
		lambda = st.Lambda

		perToken := bound / total
		if iter%10 == 0 {
			glog.V(1).Infof("topicmodel: iteration %d, bound %.6f, per-token %.6f", iter, bound, perToken)
		}
		if iter > 1 && math.Abs(perToken-prev) < cfg.Tolerance {
			converged = true
			break
		}
		prev = perToken
	}
	if iter > cfg.MaxIterations {
		iter = cfg.MaxIterations
	}
	if !converged {
		warnings = append(warnings, domain.Warnf(domain.StageModel, domain.WarnNotConverged,
			"bound did not converge within %d iterations (tolerance %g); returning best iterate", cfg.MaxIterations, cfg.Tolerance))
	}

	rows := eStep(cfg, expDirichletRows(best), m)
	docTopic := mat.NewDense(len(rows), cfg.Topics, nil)
	for d, inf := range rows {
		docTopic.SetRow(d, inf.gamma)
	}
	normalizeRows(docTopic)
	topicTerm := mat.DenseCopyOf(best)
	normalizeRows(topicTerm)

	glog.V(1).Infof("topicmodel: %d iterations, converged=%v, bound %.6f", iter, converged, bestBound)
	return &Model{
		K:          cfg.Topics,
		Terms:      m.Terms(),
		Labels:     m.Labels(),
		Genres:     m.Genres(),
		TopicTerm:  topicTerm,
		DocTopic:   docTopic,
		Iterations: iter,
		Converged:  converged,
		Bound:      bestBound,
		Bounds:     bounds,
	}, warnings, nil
}

// initLambda draws lambda from Gamma(100, 100) and then seeds up to min(K, D)
// topics with the counts of distinct rows picked k-means++ style over
// L1-normalized rows.
func initLambda(cfg Config, m *termmatrix.Matrix) *mat.Dense {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	g := distuv.Gamma{Alpha: 100, Beta: 100, Src: rng}
	k, v := cfg.Topics, m.NumTerms()
	lambda := mat.NewDense(k, v, nil)
	for t := 0; t < k; t++ {
		row := lambda.RawRowView(t)
		for w := range row {
			row[w] = g.Rand()
		}
	}

	for t, d := range seedRows(rng, m, k) {
		row := lambda.RawRowView(t)
		for _, e := range m.Row(d).Entries {
			row[e.Term] += float64(e.Count)
		}
	}
	return lambda
}

// seedRows picks up to k distinct rows: the first uniformly, every next one
// with probability proportional to its squared distance from the closest pick.
// It stops early once every remaining row coincides with a pick.
func seedRows(rng *rand.Rand, m *termmatrix.Matrix, k int) []int {
	n, v := m.NumRows(), m.NumTerms()
	norm := make([][]float64, n)
	for d := range norm {
		r := m.Row(d)
		norm[d] = make([]float64, v)
		for _, e := range r.Entries {
			norm[d][e.Term] = float64(e.Count) / float64(r.Total)
		}
	}
	dist := make([]float64, n)
	for d := range dist {
		dist[d] = math.Inf(1)
	}

	picks := []int{rng.IntN(n)}
	for len(picks) < k {
		last := norm[picks[len(picks)-1]]
		for d := range dist {
			if sq := floats.Distance(norm[d], last, 2); sq*sq < dist[d] {
				dist[d] = sq * sq
			}
		}
		total := floats.Sum(dist)
		if !(total > 0) {
			break
		}
		target := rng.Float64() * total
		next := -1
		for d, w := range dist {
			if w == 0 {
				continue
			}
			next = d
			if target < w {
				break
			}
			target -= w
		}
		picks = append(picks, next)
	}
	return picks
}

func normalizeRows(a *mat.Dense) {
	r, _ := a.Dims()
	for i := 0; i < r; i++ {
		row := a.RawRowView(i)
		floats.Scale(1/floats.Sum(row), row)
	}
}
