package lu

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Config publishes the refactorization trigger thresholds spec.md §9
// asks not to hide in conditional compilation.
type Config struct {
	// StabilityThreshold (τ) is the minimum acceptable pivot magnitude,
	// both for the from-scratch factorization and for accepting a
	// rank-1 update.
	StabilityThreshold float64
	// MaxUpdates (N_max) triggers refactorization once this many eta
	// updates have accumulated since the last Factor call.
	MaxUpdates int
	// GrowthThreshold triggers refactorization once the cumulative
	// eta growth estimate (the product of max(1, |1/pivot|) across etas)
	// exceeds this factor.
	GrowthThreshold float64
	// ResidualTolerance triggers refactorization when a solve's
	// residual ‖A_B x − b‖ exceeds this value.
	ResidualTolerance float64
	// MarkowitzRelThreshold is the stability-vs-sparsity trade-off
	// threshold of other_examples/edp1096-sparse__pivot.go's
	// SearchDiagonal/SearchEntireMatrix: a candidate pivot is accepted
	// on Markowitz-count grounds only if its magnitude is at least
	// this fraction of the largest remaining magnitude in its column.
	MarkowitzRelThreshold float64
}

// DefaultConfig matches the defaults spec.md names explicitly.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold:    0.01,
		MaxUpdates:            200,
		GrowthThreshold:       1e8,
		ResidualTolerance:     1e-9,
		MarkowitzRelThreshold: 1e-3,
	}
}

// ColumnSource supplies the m columns of the current basis matrix to
// Factor, indexed by basis position (not VarID) so this package has no
// dependency on the model package's variable numbering.
type ColumnSource interface {
	Dim() int
	VisitColumn(pos int, f func(row int, val float64))
}

// Factor owns the factorized basis inverse B^{-1}: L·U = P·B·Q for
// permutations P, Q chosen by threshold Markowitz pivoting
// (spec.md §4.3), plus a chronological chain of eta updates applied on
// top of it. L (unit lower triangular, strictly-below-diagonal part)
// and U (upper triangular, on-and-above-diagonal part) share one dense
// working matrix, the conventional compact LU storage.
type Factor struct {
	cfg Config
	dim int

	a       *mat.Dense
	rowPerm []int // rowPerm[k] is the original row at factor position k
	colPerm []int // colPerm[k] is the original column (basis position) at factor position k
	baseSet bool

	etas   []eta
	growth float64 // cumulative max(1, |1/pivot|) product since the last Factor
}

// NewFactor returns an unfactored Factor; Factor must be called before
// SolveRight/SolveLeft/Update.
func NewFactor(cfg Config) *Factor {
	return &Factor{cfg: cfg}
}

// markowitzCandidate is one entry considered for the step-k pivot: its
// position, the Markowitz count of its row/column in the active
// submatrix, and its magnitude.
type markowitzCandidate struct {
	row, col int
	product  int
	mag      float64
}

// Factor builds B = basis matrix from src from scratch via dense LU
// with threshold Markowitz pivoting (other_examples/edp1096-sparse__
// markowitz.go's CountMarkowitz/MarkowitzProducts and __pivot.go's
// SearchDiagonal/SearchEntireMatrix, adapted from that package's
// sparse doubly-linked element list onto a dense working array: the
// row/column nonzero counts behind the Markowitz product are recounted
// directly from the dense submatrix each step rather than maintained
// incrementally, so this package gets the real pivot-selection
// behavior without the original's fill-tracking data structure).
// Fails with ErrSingular if no pivot of acceptable magnitude remains.
func (f *Factor) Factor(src ColumnSource) error {
	m := src.Dim()
	a := mat.NewDense(m, m, nil)
	for pos := 0; pos < m; pos++ {
		src.VisitColumn(pos, func(row int, val float64) {
			a.Set(row, pos, val)
		})
	}

	rowPerm := make([]int, m)
	colPerm := make([]int, m)
	for i := 0; i < m; i++ {
		rowPerm[i] = i
		colPerm[i] = i
	}

	for k := 0; k < m; k++ {
		chosen, ok := f.selectPivot(a, m, k)
		if !ok {
			return errors.Wrapf(ErrSingular, "no acceptable pivot remains at step %d", k)
		}

		if chosen.row != k {
			swapRows(a, k, chosen.row, m)
			rowPerm[k], rowPerm[chosen.row] = rowPerm[chosen.row], rowPerm[k]
		}
		if chosen.col != k {
			swapCols(a, k, chosen.col, m)
			colPerm[k], colPerm[chosen.col] = colPerm[chosen.col], colPerm[k]
		}

		pivot := a.At(k, k)
		if math.Abs(pivot) < f.cfg.StabilityThreshold {
			return errors.Wrapf(ErrSingular, "pivot magnitude %g below threshold %g at step %d", math.Abs(pivot), f.cfg.StabilityThreshold, k)
		}

		for i := k + 1; i < m; i++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			factor := aik / pivot
			a.Set(i, k, factor)
			if factor == 0 {
				continue
			}
			for j := k + 1; j < m; j++ {
				akj := a.At(k, j)
				if akj != 0 {
					a.Set(i, j, a.At(i, j)-factor*akj)
				}
			}
		}
	}

	f.a = a
	f.rowPerm = rowPerm
	f.colPerm = colPerm
	f.dim = m
	f.baseSet = true
	f.etas = f.etas[:0]
	f.growth = 1
	return nil
}

// selectPivot runs one step of threshold Markowitz pivoting over the
// active submatrix a[k:m, k:m]: among entries whose magnitude clears
// both StabilityThreshold and MarkowitzRelThreshold·(column max), pick
// the one with the smallest (rowCount-1)·(colCount-1) Markowitz
// product, breaking ties toward the larger magnitude
// (other_examples/edp1096-sparse__pivot.go's ratioOfAccepted
// tie-break, restated directly on magnitude since this package has no
// analogue of that file's running "largestInCol" division). Row/column
// counts with zero non-pivot neighbors (singletons) are preferred
// automatically, since a singleton's Markowitz product is always 0.
// If no candidate clears the relative threshold, falls back to the
// globally largest-magnitude remaining entry — SearchEntireMatrix's
// own forced-pivot fallback for a numerically easy but Markowitz-bad
// matrix — rather than declaring the matrix singular prematurely.
func (f *Factor) selectPivot(a *mat.Dense, m, k int) (markowitzCandidate, bool) {
	rowCount := make([]int, m)
	colCount := make([]int, m)
	colMax := make([]float64, m)

	for i := k; i < m; i++ {
		for j := k; j < m; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			rowCount[i]++
			colCount[j]++
			if mag := math.Abs(v); mag > colMax[j] {
				colMax[j] = mag
			}
		}
	}

	best := markowitzCandidate{row: -1, col: -1, product: math.MaxInt64}
	fallback := markowitzCandidate{row: -1, col: -1, mag: -1}

	for i := k; i < m; i++ {
		for j := k; j < m; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			mag := math.Abs(v)
			if mag > fallback.mag {
				fallback = markowitzCandidate{row: i, col: j, mag: mag}
			}
			if mag < f.cfg.StabilityThreshold {
				continue
			}
			if mag < f.cfg.MarkowitzRelThreshold*colMax[j] {
				continue
			}
			product := (rowCount[i] - 1) * (colCount[j] - 1)
			if product < best.product || (product == best.product && mag > best.mag) {
				best = markowitzCandidate{row: i, col: j, product: product, mag: mag}
			}
		}
	}

	if best.row >= 0 {
		return best, true
	}
	if fallback.row >= 0 {
		return fallback, true
	}
	return markowitzCandidate{}, false
}

func swapRows(a *mat.Dense, r1, r2, m int) {
	for c := 0; c < m; c++ {
		t := a.At(r1, c)
		a.Set(r1, c, a.At(r2, c))
		a.Set(r2, c, t)
	}
}

func swapCols(a *mat.Dense, c1, c2, m int) {
	for r := 0; r < m; r++ {
		t := a.At(r, c1)
		a.Set(r, c1, a.At(r, c2))
		a.Set(r, c2, t)
	}
}

// Dim returns the basis dimension m.
func (f *Factor) Dim() int { return f.dim }

// UpdateCount returns the number of eta updates applied since the
// last Factor call.
func (f *Factor) UpdateCount() int { return len(f.etas) }

// NeedsRefactorization reports whether any of the triggers in
// spec.md §4.3 have fired.
func (f *Factor) NeedsRefactorization(lastResidual float64) bool {
	if !f.baseSet {
		return true
	}
	if len(f.etas) >= f.cfg.MaxUpdates {
		return true
	}
	if f.growth >= f.cfg.GrowthThreshold {
		return true
	}
	if lastResidual > f.cfg.ResidualTolerance {
		return true
	}
	return false
}

// SolveRight solves A_B x = b, returning a freshly allocated x.
func (f *Factor) SolveRight(b []float64) ([]float64, error) {
	x, err := f.baseSolve(b, false)
	if err != nil {
		return nil, err
	}
	for i := range f.etas {
		f.etas[i].applyForward(x)
	}
	return x, nil
}

// SolveLeft solves A_B^T y = c, returning a freshly allocated y.
func (f *Factor) SolveLeft(c []float64) ([]float64, error) {
	tmp := append([]float64(nil), c...)
	for i := len(f.etas) - 1; i >= 0; i-- {
		f.etas[i].applyTranspose(tmp)
	}
	return f.baseSolve(tmp, true)
}

// baseSolve solves the permuted-LU system directly, without consulting
// gonum: forward/back substitution against L/U as stored compactly in
// f.a, with the P/Q permutations applied by gather-before and
// scatter-after rather than by forming P/Q explicitly.
//
// Non-transposed (L·U·(Qᵀx) = P·b): d[k] = b[rowPerm[k]]; forward
// solve L·z = d; back solve U·y = z; scatter x[colPerm[l]] = y[l].
//
// Transposed (Uᵀ·Lᵀ·(P·y) = Q·c): e[l] = c[colPerm[l]]; forward solve
// Uᵀ·v = e; back solve Lᵀ·w = v; scatter y[rowPerm[k]] = w[k].
func (f *Factor) baseSolve(rhs []float64, trans bool) ([]float64, error) {
	if !f.baseSet {
		return nil, errors.Wrap(ErrSingular, "lu: solve attempted before Factor")
	}
	m := f.dim

	if !trans {
		d := make([]float64, m)
		for k := 0; k < m; k++ {
			d[k] = rhs[f.rowPerm[k]]
		}
		z := make([]float64, m)
		for i := 0; i < m; i++ {
			sum := d[i]
			for j := 0; j < i; j++ {
				if l := f.a.At(i, j); l != 0 {
					sum -= l * z[j]
				}
			}
			z[i] = sum
		}
		y := make([]float64, m)
		for i := m - 1; i >= 0; i-- {
			sum := z[i]
			for j := i + 1; j < m; j++ {
				if u := f.a.At(i, j); u != 0 {
					sum -= u * y[j]
				}
			}
			diag := f.a.At(i, i)
			if diag == 0 {
				return nil, errors.Wrap(ErrSingular, "lu: zero pivot encountered during solve")
			}
			y[i] = sum / diag
		}
		x := make([]float64, m)
		for l := 0; l < m; l++ {
			x[f.colPerm[l]] = y[l]
		}
		return x, nil
	}

	e := make([]float64, m)
	for l := 0; l < m; l++ {
		e[l] = rhs[f.colPerm[l]]
	}
	v := make([]float64, m)
	for l := 0; l < m; l++ {
		sum := e[l]
		for p := 0; p < l; p++ {
			if u := f.a.At(p, l); u != 0 {
				sum -= u * v[p]
			}
		}
		diag := f.a.At(l, l)
		if diag == 0 {
			return nil, errors.Wrap(ErrSingular, "lu: zero pivot encountered during transposed solve")
		}
		v[l] = sum / diag
	}
	w := make([]float64, m)
	for k := m - 1; k >= 0; k-- {
		sum := v[k]
		for p := k + 1; p < m; p++ {
			if l := f.a.At(p, k); l != 0 {
				sum -= l * w[p]
			}
		}
		w[k] = sum
	}
	y := make([]float64, m)
	for k := 0; k < m; k++ {
		y[f.rowPerm[k]] = w[k]
	}
	return y, nil
}

// Update replaces basis column k (by position, 0-indexed) with v,
// expressed in the original (unfactorized) coordinates. v is first
// transformed into the current basis's coordinates (η = B^{-1} v)
// using the existing factorization, then appended as a new eta. Fails
// with ErrUpdateRejected if |η[k]| falls below the stability
// threshold, in which case the engine should refactorize and retry.
func (f *Factor) Update(k int, v []float64) error {
	etaVec, err := f.SolveRight(v)
	if err != nil {
		return err
	}
	pivot := etaVec[k]
	if math.Abs(pivot) < f.cfg.StabilityThreshold {
		return errors.Wrapf(ErrUpdateRejected, "pivot %g below threshold %g at column %d", pivot, f.cfg.StabilityThreshold, k)
	}

	e := eta{col: k, pivot: pivot}
	for i, val := range etaVec {
		if val != 0 {
			e.idx = append(e.idx, i)
			e.val = append(e.val, val)
		}
	}
	f.etas = append(f.etas, e)
	f.growth *= math.Max(1, 1/math.Abs(pivot))
	return nil
}

// Residual returns ‖A_B x − b‖_∞ for a candidate solution x against
// src and b, used by the engine to decide whether a post-solve
// refactorization is warranted.
func Residual(src ColumnSource, x, b []float64) float64 {
	m := src.Dim()
	Ax := make([]float64, m)
	for pos := 0; pos < m; pos++ {
		xv := x[pos]
		if xv == 0 {
			continue
		}
		src.VisitColumn(pos, func(row int, val float64) {
			Ax[row] += val * xv
		})
	}
	max := 0.0
	for i := 0; i < m; i++ {
		d := math.Abs(Ax[i] - b[i])
		if d > max {
			max = d
		}
	}
	return max
}
