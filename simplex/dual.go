package simplex

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/ratiotest"
	"github.com/qlog/revsimplex/vector"
)

// SolveDual runs the dual simplex method: it assumes the current
// basis is dual feasible (every non-basic reduced cost already has
// the sign its status requires) and pivots to restore primal
// feasibility one infeasible basic row at a time, the mirror image of
// Solve's primal loop (spec.md §4.6's "dual-simplex symmetry").
//
// The leaving variable is the most (weighted) infeasible basic
// position, chosen by the same Pricer used for primal pricing
// (Pricer.SelectLeave). The entering variable is chosen by
// ratiotest.Harris.SelectEnter, exchanging the roles fVec/bounds play
// in the primal ratio test for reduced-costs/dual-feasibility bounds
// (spec.md §4.6's dual symmetry): the pivot row's coefficients,
// oriented by the leaving row's direction, play the update direction,
// so SelectEnter always runs on its positive branch (val =
// math.MaxFloat64, positive = true), and each
// non-basic's status turns into a price-feasibility window (reduced
// cost confined to [0,∞) at a lower bound, (−∞,0] at an upper bound,
// {0} if free) that the Harris bound-shift machinery keeps from
// drifting past, the same anti-cycling guarantee the primal loop gets
// from Harris.SelectLeave.
func (e *Engine) SolveDual(ctx context.Context) (Status, error) {
	start := time.Now()
	defer func() {
		d := time.Since(start)
		e.st.SolvingTime += d
		e.st.SimplexTime += d
	}()

	if e.status == Loaded {
		if err := e.refactorize(); err != nil {
			return e.status, err
		}
	}
	e.status = DualFeasible

	for {
		if err := ctx.Err(); err != nil {
			e.status = AbortLimit
			return e.status, nil
		}
		if e.st.Iterations >= e.cfg.MaxIterations {
			e.status = AbortLimit
			return e.status, nil
		}

		leavePos, ok := e.pricer.SelectLeave(e.basis.Size(), e.infeasibilityOf)
		if !ok {
			e.status = Optimal
			if err := e.unwindAndVerify(); err != nil {
				return e.status, err
			}
			return e.status, nil
		}

		progressed, err := e.dualPivotStep(leavePos)
		if err != nil {
			return e.status, err
		}
		if !progressed {
			e.status = Infeasible
			return e.status, nil
		}
	}
}

// infeasibilityOf is the signed bound violation of basic position pos
// (positive above the upper bound, negative below the lower bound,
// zero if feasible), the input Pricer.SelectLeave weights by γ.
func (e *Engine) infeasibilityOf(pos int) float64 {
	switch {
	case e.vec[pos] > e.up[pos]:
		return e.vec[pos] - e.up[pos]
	case e.vec[pos] < e.low[pos]:
		return e.vec[pos] - e.low[pos]
	default:
		return 0
	}
}

// dualPivotStep performs one dual-simplex iteration against the
// infeasible basic row at leavePos.
func (e *Engine) dualPivotStep(leavePos int) (bool, error) {
	leavingID := e.basis.At(leavePos)
	leavingAboveUpper := e.vec[leavePos] > e.up[leavePos]

	if err := e.computeDuals(); err != nil {
		return false, err
	}

	row := e.pivotRowWeights(leavePos)

	// Leaving above its upper bound must decrease (the pivot row
	// coefficient's sign requirement flips if it's below its lower
	// bound instead), which fixes which sign of alpha is eligible for
	// each non-basic status.
	wantDecrease := leavingAboveUpper

	bestID, bestAlpha, found := e.dualSelectEnter(row, wantDecrease)
	if !found {
		return false, nil
	}

	d, err := e.pivotColumn(bestID)
	if err != nil {
		return false, errors.Wrap(err, "simplex: dual pivot column solve failed")
	}

	target := e.up[leavePos]
	if !leavingAboveUpper {
		target = e.low[leavePos]
	}
	theta := (e.vec[leavePos] - target) / bestAlpha
	for i, v := range d {
		if v != 0 {
			e.vec[i] -= v * theta
		}
	}

	leaveStatus := model.AtUpper
	if !leavingAboveUpper {
		leaveStatus = model.AtLower
	}
	pivotRow := row
	enterOldValue := e.nonBasicValue(bestID)
	e.basis.Pivot(leavePos, bestID, leaveStatus)
	e.vec[leavePos] = enterOldValue + theta
	e.low[leavePos], e.up[leavePos] = e.p.Lower(bestID), e.p.Upper(bestID)

	if err := e.factor.Update(leavePos, e.columnDense(bestID)); err != nil {
		if refErr := e.refactorize(); refErr != nil {
			return false, refErr
		}
	}

	e.pricer.UpdateWeights(leavePos, int(leavingID), int(bestID), d, pivotRow)
	if err := e.maybeRefactorize(0); err != nil {
		return false, err
	}

	e.st.Iterations++
	e.st.IterationsDual++
	return true, nil
}

// dualSelectEnter runs the Harris dual ratio test against the pivot
// row weights (keyed by VarID) of the leaving row, returning the
// chosen entering variable and its pivot-row coefficient. wantDecrease
// mirrors dualPivotStep's eligibility rule: true when the leaving
// basic value must come down to its upper bound, false when it must
// come up to its lower bound.
//
// The price vectors/bounds/update directions built here are the
// "exchange fVec and reduced costs" half of spec.md §4.6's dual
// symmetry: pvec/cvec hold every non-basic reduced cost (row-space
// slacks and column-space structurals respectively), upb/lpb/ucb/lcb
// confine each to the half-line its status requires for dual
// feasibility (0 is the only finite endpoint; free variables are
// pinned to a single point, {0}), and pupd/cupd hold the pivot row's
// coefficient, oriented by wantDecrease so that a positive update
// always means "this reduced cost moves toward its bound as the dual
// step runs," which is what lets this reuse the same maxDelta-style
// phase-1 scan the primal leave side uses.
func (e *Engine) dualSelectEnter(row map[int]float64, wantDecrease bool) (model.VarID, float64, bool) {
	n, m := e.p.NumCols(), e.p.NumRows()

	pvec := make([]float64, m)
	lpb := make([]float64, m)
	upb := make([]float64, m)
	cvec := make([]float64, n)
	lcb := make([]float64, n)
	ucb := make([]float64, n)

	pupd := vector.NewUpdate(m)
	cupd := vector.NewUpdate(n)

	orient := 1.0
	if wantDecrease {
		orient = -1.0
	}

	for id, alpha := range row {
		vid := model.VarID(id)
		lo, hi := 0.0, 0.0
		switch e.basis.StatusOf(vid) {
		case model.AtLower:
			lo, hi = 0, model.Inf
		case model.AtUpper:
			lo, hi = -model.Inf, 0
		case model.Free:
			lo, hi = 0, 0
		default:
			continue // basic, or otherwise ineligible — not a ratio-test candidate
		}

		upd := orient * alpha
		if id < n {
			cvec[id] = e.reducedCostOf(vid)
			lcb[id], ucb[id] = lo, hi
			cupd.SetValue(id, upd)
		} else {
			r := id - n
			pvec[r] = e.reducedCostOf(vid)
			lpb[r], upb[r] = lo, hi
			pupd.SetValue(r, upd)
		}
	}

	ectx := enterCtx{e: e}
	chosen, _ := ratiotest.Harris{}.SelectEnter(ectx, pupd, cupd, pvec, cvec, upb, lpb, ucb, lcb, math.MaxFloat64, true)
	if !chosen.Valid() {
		return -1, 0, false
	}

	var vid model.VarID
	if chosen.Row {
		vid = model.VarID(n + chosen.Index)
	} else {
		vid = model.VarID(chosen.Index)
	}
	return vid, row[int(vid)], true
}
