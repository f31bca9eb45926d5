package simplex

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/pricing"
	"github.com/qlog/revsimplex/ratiotest"
	"github.com/qlog/revsimplex/vector"
)

// Solve runs the primal simplex method to optimality, restoring
// feasibility first if the starting (slack) basis violates any bound,
// per spec.md §4.6's per-iteration contract. ctx is checked at every
// iteration boundary for cancellation or deadline expiry (spec.md §5).
func (e *Engine) Solve(ctx context.Context) (Status, error) {
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

	if err := e.restoreFeasibility(ctx); err != nil {
		return e.status, err
	}
	if e.status == Infeasible || e.status == SingularBasis || e.status == AbortLimit {
		return e.status, nil
	}
	e.status = PrimalFeasible

	if err := e.optimize(ctx); err != nil {
		return e.status, err
	}

	if e.status == Optimal {
		if err := e.unwindAndVerify(); err != nil {
			return e.status, err
		}
	}
	return e.status, nil
}

// Value returns the objective value of the current basic solution;
// only meaningful once Solve has returned Optimal.
func (e *Engine) Value() float64 { return e.objective() }

// maxInfeasibility returns the largest bound violation across basic
// positions, 0 if the current solution is feasible.
func (e *Engine) maxInfeasibility() (pos int, amount float64) {
	best := -1
	bestAmt := 0.0
	for i := 0; i < len(e.vec); i++ {
		var v float64
		if e.vec[i] > e.up[i] {
			v = e.vec[i] - e.up[i]
		} else if e.vec[i] < e.low[i] {
			v = e.low[i] - e.vec[i]
		}
		if v > bestAmt {
			bestAmt = v
			best = i
		}
	}
	return best, bestAmt
}

// restoreFeasibility runs the composite Phase 1: a primal simplex
// whose basic cost vector is +1/-1 on every currently infeasible basic
// position (driving it back toward its bound) and 0 everywhere else,
// using the exact same entering/leaving selection machinery as Phase
// 2 (spec.md §9's shared generic-numeric engine logic design note).
func (e *Engine) restoreFeasibility(ctx context.Context) error {
	for {
		if _, amount := e.maxInfeasibility(); amount <= e.cfg.Epsilon {
			return nil
		}
		if err := ctx.Err(); err != nil {
			e.status = AbortLimit
			return nil
		}
		if e.st.Iterations >= e.cfg.MaxIterations {
			e.status = AbortLimit
			return nil
		}

		cost := e.phase1CostOf
		progressed, err := e.pivotStep(cost)
		if err != nil {
			return err
		}
		if !progressed {
			e.status = Infeasible
			return nil
		}
	}
}

// optimize runs Phase 2 against the true objective until no improving
// candidate remains (Optimal) or an entering variable's direction is
// unblocked in every basic row (Unbounded).
func (e *Engine) optimize(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			e.status = AbortLimit
			return nil
		}
		if e.st.Iterations >= e.cfg.MaxIterations {
			e.status = AbortLimit
			return nil
		}

		progressed, err := e.pivotStep(e.objCoeff)
		if err != nil {
			return err
		}
		if !progressed {
			if e.status == Unbounded {
				return nil
			}
			e.status = Optimal
			return nil
		}
	}
}

// phase1CostOf is the Phase 1 basic cost: +1 if id is basic and above
// its upper bound, -1 if basic and below its lower bound, 0 otherwise
// (including every non-basic id, since Phase 1 has no direct cost on
// non-basic variables).
func (e *Engine) phase1CostOf(id model.VarID) float64 {
	pos := e.basis.PositionOf(id)
	if pos < 0 {
		return 0
	}
	switch {
	case e.vec[pos] > e.up[pos]+e.cfg.Epsilon:
		return 1
	case e.vec[pos] < e.low[pos]-e.cfg.Epsilon:
		return -1
	default:
		return 0
	}
}

// pivotStep performs one full iteration of the shared primal
// algorithm against the given basic cost function: price, select
// entering, run the ratio test, pivot or bound-flip. progressed is
// false when no improving candidate exists (caller decides Optimal,
// Infeasible, or Unbounded from context) or a candidate exists but no
// row blocks it (Unbounded, set directly).
func (e *Engine) pivotStep(cost func(model.VarID) float64) (progressed bool, err error) {
	cb := make([]float64, e.basis.Size())
	for pos := 0; pos < e.basis.Size(); pos++ {
		cb[pos] = cost(e.basis.At(pos))
	}
	start := time.Now()
	y, err := e.factor.SolveLeft(cb)
	e.st.LUSolveTime += time.Since(start)
	e.st.LUSolves++
	if err != nil {
		return false, errors.Wrap(err, "simplex: pricing dual solve failed")
	}
	e.y = y

	reducedCost := func(id int) float64 {
		rc := cost(model.VarID(id))
		e.p.Column(model.VarID(id)).Visit(func(row int, a float64) {
			rc -= a * e.y[row]
		})
		return rc
	}
	candidates := e.enterCandidates(cost)
	best, ok := e.pricer.SelectEnter(candidates, reducedCost)
	if !ok {
		return false, nil
	}
	enterID := model.VarID(best.ID)

	d, err := e.pivotColumn(enterID)
	if err != nil {
		return false, errors.Wrap(err, "simplex: pivot column solve failed")
	}

	upd := vector.NewUpdate(e.basis.Size())
	for i, v := range d {
		if v != 0 {
			upd.SetValue(i, -best.Sign*v)
		}
	}

	lctx := leaveCtx{e: e}
	leavePos, step, found := ratiotest.Harris{}.SelectLeave(lctx, math.MaxFloat64, upd, e.vec, e.low, e.up)

	enterLo, enterHi := e.p.Lower(enterID), e.p.Upper(enterID)
	flipRange := math.MaxFloat64
	if enterLo > -model.Inf && enterHi < model.Inf {
		flipRange = enterHi - enterLo
	}

	if !found {
		if flipRange == math.MaxFloat64 {
			e.status = Unbounded
			return false, nil
		}
		e.applyStep(flipRange, best.Sign, d)
		e.flipNonBasic(enterID)
		e.st.Iterations++
		return true, nil
	}

	if step >= flipRange {
		e.applyStep(flipRange, best.Sign, d)
		e.flipNonBasic(enterID)
		e.st.Iterations++
		return true, nil
	}

	leavingID := e.basis.At(leavePos)
	enterOldValue := e.nonBasicValue(enterID)
	e.applyStep(step, best.Sign, d)

	leaveStatus := model.AtLower
	if e.vec[leavePos] >= e.up[leavePos]-e.cfg.Epsilon {
		leaveStatus = model.AtUpper
	}

	pivotRow := e.pivotRowWeights(leavePos)
	e.basis.Pivot(leavePos, enterID, leaveStatus)
	e.vec[leavePos] = enterOldValue + best.Sign*step
	e.low[leavePos], e.up[leavePos] = e.p.Lower(enterID), e.p.Upper(enterID)

	if err := e.factor.Update(leavePos, e.columnDense(enterID)); err != nil {
		if refErr := e.refactorize(); refErr != nil {
			return false, refErr
		}
	}

	e.pricer.UpdateWeights(leavePos, int(leavingID), int(enterID), d, pivotRow)

	// Residual-based refactorization would need an extra B^{-1} solve
	// purely to measure drift; the update-count and growth triggers
	// already bound how stale the eta chain can get, so only those two
	// fire here.
	if err := e.maybeRefactorize(0); err != nil {
		return false, err
	}

	if step <= e.cfg.Epsilon {
		e.numCycle++
	} else {
		e.numCycle = 0
	}
	e.st.Iterations++
	e.st.IterationsPrimal++
	return true, nil
}

// applyStep moves every basic position by -sign*step*d[i] (entering
// variable moves by step in its improving direction). Only e.vec
// changes; the caller sets the entering variable's new status or basic
// value.
func (e *Engine) applyStep(step, sign float64, d []float64) {
	theta := sign * step
	for i, v := range d {
		if v != 0 {
			e.vec[i] -= v * theta
		}
	}
}

// flipNonBasic snaps a non-basic variable that hit its own opposite
// bound (a bound flip, no basis change) to that bound's status.
func (e *Engine) flipNonBasic(id model.VarID) {
	if e.basis.StatusOf(id) == model.AtLower {
		e.basis.SetNonBasicStatus(id, model.AtUpper)
	} else {
		e.basis.SetNonBasicStatus(id, model.AtLower)
	}
}

// enterCandidates lists every non-basic variable eligible to move
// given its status and the sign of its reduced cost under cost.
func (e *Engine) enterCandidates(cost func(model.VarID) float64) []pricing.Candidate {
	var out []pricing.Candidate
	for id := 0; id < e.p.NumVars(); id++ {
		vid := model.VarID(id)
		switch e.basis.StatusOf(vid) {
		case model.AtLower:
			out = append(out, pricing.Candidate{ID: id, Sign: 1})
		case model.AtUpper:
			out = append(out, pricing.Candidate{ID: id, Sign: -1})
		case model.Free:
			rc := cost(vid)
			e.p.Column(vid).Visit(func(row int, a float64) {
				rc -= a * e.y[row]
			})
			sign := 1.0
			if rc > 0 {
				sign = -1
			}
			out = append(out, pricing.Candidate{ID: id, Sign: sign})
		}
	}
	return out
}

// pivotRowWeights returns the leavePos-th row of B^{-1}N restricted to
// the current candidate set, keyed by VarID, for the pricer's weight
// update.
func (e *Engine) pivotRowWeights(leavePos int) map[int]float64 {
	row := make(map[int]float64)
	unit := make([]float64, e.basis.Size())
	unit[leavePos] = 1
	start := time.Now()
	rowVec, err := e.factor.SolveLeft(unit)
	e.st.LUSolveTime += time.Since(start)
	e.st.LUSolves++
	if err != nil {
		return row
	}
	for id := 0; id < e.p.NumVars(); id++ {
		vid := model.VarID(id)
		if e.basis.IsBasic(vid) {
			continue
		}
		val := 0.0
		e.p.Column(vid).Visit(func(r int, a float64) {
			val += a * rowVec[r]
		})
		if val != 0 {
			row[id] = val
		}
	}
	return row
}

// columnDense materializes id's column in dense row-indexed form for
// the LU factor's rank-1 update.
func (e *Engine) columnDense(id model.VarID) []float64 {
	v := make([]float64, e.basis.Size())
	e.p.Column(id).Visit(func(row int, a float64) {
		v[row] = a
	})
	return v
}
