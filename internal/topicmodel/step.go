package topicmodel

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"

	"genretopics/internal/domain"
	"genretopics/internal/termmatrix"
)

// phiFloor keeps the per-term normalizer away from zero.
const phiFloor = 1e-100

// State is the variational parameter set after one update.
// Lambda is K × V (topic-term), Gamma is D × K (row-topic).
type State struct {
	Lambda *mat.Dense
	Gamma  *mat.Dense
}

// rowInference is the E-step result of a single row.
type rowInference struct {
	gamma   []float64
	theta   []float64 // exp(E[log theta])
	phinorm []float64
}

// Step runs one variational EM update: an E-step fitting gamma for every row
// against lambda, the M-step lambda' = eta + sufficient statistics, and the
// evidence lower bound evaluated at (gamma, lambda'). It does not modify lambda.
func Step(cfg Config, lambda mat.Matrix, m *termmatrix.Matrix) (State, float64, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return State{}, 0, err
	}
	if m == nil || m.NumRows() == 0 {
		return State{}, 0, domain.ErrNoRows
	}
	k, v := lambda.Dims()
	if k != cfg.Topics || v != m.NumTerms() {
		return State{}, 0, fmt.Errorf("%w: lambda is %d×%d, want %d×%d",
			domain.ErrDimensionMismatch, k, v, cfg.Topics, m.NumTerms())
	}

	expElogbeta := expDirichletRows(lambda)
	rows := eStep(cfg, expElogbeta, m)

	// Contributions are merged in row order so the sums do not depend on scheduling.
	sstats := mat.NewDense(k, v, nil)
	for d, inf := range rows {
		for t := 0; t < k; t++ {
			srow := sstats.RawRowView(t)
			for j, e := range m.Row(d).Entries {
				srow[e.Term] += inf.theta[t] * float64(e.Count) / inf.phinorm[j]
			}
		}
	}
	next := mat.NewDense(k, v, nil)
	for t := 0; t < k; t++ {
		srow, ebrow, nrow := sstats.RawRowView(t), expElogbeta.RawRowView(t), next.RawRowView(t)
		for w := range nrow {
			nrow[w] = cfg.Eta + srow[w]*ebrow[w]
		}
	}

	gamma := mat.NewDense(len(rows), k, nil)
	for d, inf := range rows {
		gamma.SetRow(d, inf.gamma)
	}
	bound := approxBound(cfg, gamma, next, m)
	return State{Lambda: next, Gamma: gamma}, bound, nil
}

// eStep fits gamma for every row in parallel. Each task owns its output slot.
func eStep(cfg Config, expElogbeta *mat.Dense, m *termmatrix.Matrix) []rowInference {
	out := make([]rowInference, m.NumRows())
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for d := range out {
		g.Go(func() error {
			out[d] = inferRow(m.Row(d), expElogbeta, cfg.Alpha, cfg.DocMaxIterations, cfg.DocTolerance)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// inferRow iterates the fixed point
//
//	gamma_k = alpha + exp(E[log theta_k]) * sum_j cnt_j * expElogbeta_kj / phinorm_j
//
// starting from gamma = 1 until the mean absolute change drops below tol.
func inferRow(r termmatrix.Row, expElogbeta *mat.Dense, alpha float64, maxIter int, tol float64) rowInference {
	k, _ := expElogbeta.Dims()
	n := len(r.Entries)

	// beta restricted to the row's terms, k × n
	beta := make([]float64, k*n)
	for t := 0; t < k; t++ {
		ebrow := expElogbeta.RawRowView(t)
		for j, e := range r.Entries {
			beta[t*n+j] = ebrow[e.Term]
		}
	}

	gamma := make([]float64, k)
	for t := range gamma {
		gamma[t] = 1
	}
	theta := make([]float64, k)
	phinorm := make([]float64, n)
	last := make([]float64, k)
	expDirichlet(gamma, theta)
	normalizer(theta, beta, phinorm)

	for it := 0; it < maxIter; it++ {
		copy(last, gamma)
		for t := 0; t < k; t++ {
			s := 0.0
			for j, e := range r.Entries {
				s += float64(e.Count) / phinorm[j] * beta[t*n+j]
			}
			gamma[t] = alpha + theta[t]*s
		}
		expDirichlet(gamma, theta)
		normalizer(theta, beta, phinorm)
		if meanAbsChange(last, gamma) < tol {
			break
		}
	}
	return rowInference{gamma: gamma, theta: theta, phinorm: phinorm}
}

func normalizer(theta, beta, dst []float64) {
	n := len(dst)
	for j := range dst {
		s := phiFloor
		for t, th := range theta {
			s += th * beta[t*n+j]
		}
		dst[j] = s
	}
}

// approxBound is the evidence lower bound of the counts under (gamma, lambda).
func approxBound(cfg Config, gamma, lambda *mat.Dense, m *termmatrix.Matrix) float64 {
	k, v := lambda.Dims()
	elogbeta := dirichletRows(lambda)

	perRow := make([]float64, m.NumRows())
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for d := range perRow {
		g.Go(func() error {
			gd := gamma.RawRowView(d)
			elogtheta := make([]float64, k)
			dirichlet(gd, elogtheta)

			score := 0.0
			tmp := make([]float64, k)
			for _, e := range m.Row(d).Entries {
				for t := 0; t < k; t++ {
					tmp[t] = elogtheta[t] + elogbeta.At(t, e.Term)
				}
				score += float64(e.Count) * floats.LogSumExp(tmp)
			}
			for t := 0; t < k; t++ {
				score += (cfg.Alpha-gd[t])*elogtheta[t] + lgamma(gd[t]) - lgamma(cfg.Alpha)
			}
			score += lgamma(cfg.Alpha*float64(k)) - lgamma(floats.Sum(gd))
			perRow[d] = score
			return nil
		})
	}
	_ = g.Wait()

	score := 0.0
	for _, s := range perRow {
		score += s
	}
	for t := 0; t < k; t++ {
		lrow, erow := lambda.RawRowView(t), elogbeta.RawRowView(t)
		for w := 0; w < v; w++ {
			score += (cfg.Eta-lrow[w])*erow[w] + lgamma(lrow[w]) - lgamma(cfg.Eta)
		}
		score += lgamma(cfg.Eta*float64(v)) - lgamma(floats.Sum(lrow))
	}
	return score
}

// dirichlet writes E[log x] for x ~ Dir(alpha) into dst.
func dirichlet(alpha, dst []float64) {
	psiSum := mathext.Digamma(floats.Sum(alpha))
	for i, a := range alpha {
		dst[i] = mathext.Digamma(a) - psiSum
	}
}

func expDirichlet(alpha, dst []float64) {
	dirichlet(alpha, dst)
	for i := range dst {
		dst[i] = math.Exp(dst[i])
	}
}

func dirichletRows(a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, a)
		dirichlet(row, out.RawRowView(i))
	}
	return out
}

func expDirichletRows(a mat.Matrix) *mat.Dense {
	out := dirichletRows(a)
	out.Apply(func(_, _ int, x float64) float64 { return math.Exp(x) }, out)
	return out
}

func meanAbsChange(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += math.Abs(a[i] - b[i])
	}
	return s / float64(len(a))
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
