// Package simplex implements the sequential revised simplex Engine:
// the per-iteration contract (pricing → LU solve → ratio test → basis
// update → reduced-cost/weight update → refactorization check →
// cycling check) described in spec.md §4.6, grounded structurally on
// the teacher's Solve loop (price → u = B⁻¹A_j direction solve →
// ratio test → basis swap → B⁻¹ refresh) and generalized to a
// factorized-update discipline with bounded variables and both primal
// and dual variants.
package simplex

import (
	"time"

	"github.com/pkg/errors"

	"github.com/qlog/revsimplex/lu"
	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/pricing"
	"github.com/qlog/revsimplex/stats"
)

// Engine is the mutable solver state over one Problem: a Basis, its LU
// factorization, the journal of reversible bound shifts the ratio
// test may have requested, and the pricing rule driving variable
// selection.
type Engine struct {
	p      *model.Problem
	basis  *model.Basis
	factor *lu.Factor
	shifts *model.ShiftStack
	pricer pricing.Pricer
	cfg    Config
	st     stats.Stats
	status Status

	numCycle int

	vec     []float64 // basic variable values, indexed by basis position
	low, up []float64 // basic position's current [lower,upper], refreshed every iteration
	y       []float64 // row duals B^{-T} c_B, recomputed every iteration
}

// New returns a Loaded Engine over p, starting from the slack basis.
func New(p *model.Problem, pricer pricing.Pricer, cfg Config) *Engine {
	e := &Engine{
		p:      p,
		basis:  model.NewBasis(p),
		factor: lu.NewFactor(cfg.LU),
		pricer: pricer,
		cfg:    cfg,
		status: Loaded,
	}
	e.shifts = model.NewShiftStack(p)
	m := p.NumRows()
	e.vec = make([]float64, m)
	e.low = make([]float64, m)
	e.up = make([]float64, m)
	e.y = make([]float64, m)
	e.pricer.Reset(m)
	return e
}

// Status returns the engine's current state-machine value.
func (e *Engine) Status() Status { return e.status }

// Stats returns a copy of the accumulated statistics.
func (e *Engine) Stats() stats.Stats { return e.st }

// Problem returns the LP the engine is solving.
func (e *Engine) Problem() *model.Problem { return e.p }

// Basis returns the engine's current basis.
func (e *Engine) Basis() *model.Basis { return e.basis }

// Solution returns the current value of every VarID in the unified
// [0, NumVars()) space: basic positions from e.vec, non-basic ones at
// their bound. Only meaningful once a Solve call has returned.
func (e *Engine) Solution() []float64 {
	out := make([]float64, e.p.NumVars())
	for id := 0; id < e.p.NumVars(); id++ {
		vid := model.VarID(id)
		if pos := e.basis.PositionOf(vid); pos >= 0 {
			out[id] = e.vec[pos]
		} else {
			out[id] = e.nonBasicValue(vid)
		}
	}
	return out
}

// ReducedCost returns id's reduced cost against the duals last
// computed (by a primal or dual solve, or RefreshDuals).
func (e *Engine) ReducedCost(id model.VarID) float64 { return e.reducedCostOf(id) }

// RefreshDuals recomputes B^T y = c_B against the current basis, for
// callers (e.g. the refinement driver) that need duals outside of a
// Solve/SolveDual call.
func (e *Engine) RefreshDuals() error { return e.computeDuals() }

// BasicResidual solves B*d = rhs against the current factorization,
// the same linear system the engine itself solves every iteration;
// exposed for the refinement driver's basic-value correction step.
func (e *Engine) BasicResidual(rhs []float64) ([]float64, error) {
	return e.factor.SolveRight(rhs)
}

// objCoeff returns id's objective coefficient in internal
// minimize-sense terms, flipping sign once for Maximize so the rest
// of the engine only ever reasons about minimization.
func (e *Engine) objCoeff(id model.VarID) float64 {
	c := e.p.Obj(id)
	if e.p.Sense == model.Maximize {
		return -c
	}
	return c
}

// objective returns the true (caller-sense) objective value of the
// current basic feasible solution.
func (e *Engine) objective() float64 {
	z := 0.0
	for pos := 0; pos < e.basis.Size(); pos++ {
		z += e.p.Obj(e.basis.At(pos)) * e.vec[pos]
	}
	for id := 0; id < e.p.NumVars(); id++ {
		vid := model.VarID(id)
		if e.basis.IsBasic(vid) {
			continue
		}
		z += e.p.Obj(vid) * e.nonBasicValue(vid)
	}
	return z
}

func (e *Engine) nonBasicValue(id model.VarID) float64 {
	return model.ValueAtStatus(e.basis.StatusOf(id), e.p.Lower(id), e.p.Upper(id))
}

func (e *Engine) source() basisSource { return basisSource{p: e.p, b: e.basis} }

// refactorize rebuilds the LU factorization from scratch, refreshes
// the basic solution, and resets pricing weights (incremental weights
// don't survive a refactorization, per spec.md §4.5).
func (e *Engine) refactorize() error {
	start := time.Now()
	err := e.factor.Factor(e.source())
	e.st.LUFactorizationTime += time.Since(start)
	e.st.LUFactorizations++
	if err != nil {
		e.status = SingularBasis
		return errors.Wrap(err, "simplex: refactorization failed")
	}
	e.pricer.Reset(e.basis.Size())
	return e.computeBasicValues()
}

// computeBasicValues solves B x_B = -N x_N for the current non-basic
// assignment and refreshes the basic position bound cache.
func (e *Engine) computeBasicValues() error {
	m := e.basis.Size()
	rhs := make([]float64, m)
	for id := 0; id < e.p.NumVars(); id++ {
		vid := model.VarID(id)
		if e.basis.IsBasic(vid) {
			continue
		}
		v := e.nonBasicValue(vid)
		if v == 0 {
			continue
		}
		e.p.Column(vid).Visit(func(row int, a float64) {
			rhs[row] -= a * v
		})
	}

	start := time.Now()
	x, err := e.factor.SolveRight(rhs)
	e.st.LUSolveTime += time.Since(start)
	e.st.LUSolves++
	if err != nil {
		return errors.Wrap(err, "simplex: basic value solve failed")
	}
	e.vec = x

	for pos := 0; pos < m; pos++ {
		id := e.basis.At(pos)
		e.low[pos] = e.p.Lower(id)
		e.up[pos] = e.p.Upper(id)
	}
	return nil
}

// computeDuals solves B^T y = c_B, the row-price vector used both to
// price structural columns and to price the rows themselves (their
// slacks).
func (e *Engine) computeDuals() error {
	m := e.basis.Size()
	cb := make([]float64, m)
	for pos := 0; pos < m; pos++ {
		cb[pos] = e.objCoeff(e.basis.At(pos))
	}
	start := time.Now()
	y, err := e.factor.SolveLeft(cb)
	e.st.LUSolveTime += time.Since(start)
	e.st.LUSolves++
	if err != nil {
		return errors.Wrap(err, "simplex: dual solve failed")
	}
	e.y = y
	return nil
}

// reducedCostOf computes c_j - a_jᵀy for a non-basic id, using the
// duals last computed by computeDuals.
func (e *Engine) reducedCostOf(id model.VarID) float64 {
	rc := e.objCoeff(id)
	e.p.Column(id).Visit(func(row int, a float64) {
		rc -= a * e.y[row]
	})
	return rc
}

// pivotColumn solves B d = a_enter (the entering column's direction in
// basis coordinates), the "u" vector of the teacher's loop.
func (e *Engine) pivotColumn(id model.VarID) ([]float64, error) {
	m := e.basis.Size()
	a := make([]float64, m)
	e.p.Column(id).Visit(func(row int, v float64) {
		a[row] = v
	})
	start := time.Now()
	d, err := e.factor.SolveRight(a)
	e.st.LUSolveTime += time.Since(start)
	e.st.LUSolves++
	return d, err
}

// maybeRefactorize checks the triggers in spec.md §4.3 after a pivot
// and refactorizes if any fired.
func (e *Engine) maybeRefactorize(residual float64) error {
	if e.factor.NeedsRefactorization(residual) {
		return e.refactorize()
	}
	return nil
}

// unwindAndVerify pops the bound-shift journal and recomputes the
// basic solution against the true (unshifted) bounds before a
// terminal status is reported, per spec.md §4.6.
func (e *Engine) unwindAndVerify() error {
	if e.shifts.Depth() == 0 {
		return nil
	}
	e.shifts.Unwind()
	return e.computeBasicValues()
}
