package ratiotest

import (
	"math"

	"github.com/qlog/revsimplex/vector"
)

// infinity mirrors model.Inf without importing the model package (the
// ratio test has no dependency on model, per the explicit-context
// design note); callers must use the same sentinel value.
const infinity = math.MaxFloat64

// maxDelta is phase 1 of the Harris ratio test for a positive step
// (θ > 0): the most tolerant feasible θ, allowing an infeasibility of
// up to delta (the user feasibility tolerance) on the far bound. Ported
// line-for-line from SPxHarrisRT<Real>::maxDelta in
// original_source/src/soplex/spxharrisrt.cpp — including leaving
// *maxabs untouched. The source's parameter is literally named
// `/*max*/`, commented out: it's dead in the original too, and every
// caller's maxabs stays at its fresh 1.0 for the life of the call
// (spec.md §9 Open Question — preserved verbatim rather than "fixed",
// since writing it back would silently change phase 2's useeps
// threshold from the source's constant epsilon to a dynamic one).
func maxDelta(maxabs *float64, val *float64, upd *vector.Update, vec, low, up []float64, epsilon, delta float64) {
	theval := *val

	for _, i := range upd.IndexMem() {
		x := upd.At(i)
		if x > epsilon {
			cand := (up[i] - vec[i] + delta) / x
			if cand < theval && up[i] < infinity {
				theval = cand
			}
		} else if x < -epsilon {
			cand := (low[i] - vec[i] - delta) / x
			if cand < theval && low[i] > -infinity {
				theval = cand
			}
		}
	}
	*val = theval
}

// minDelta is phase 1 for a negative step (θ < 0), the mirror image of
// maxDelta — *maxabs is likewise left untouched, for the same reason.
func minDelta(maxabs *float64, val *float64, upd *vector.Update, vec, low, up []float64, epsilon, delta float64) {
	theval := *val

	for _, i := range upd.IndexMem() {
		x := upd.At(i)
		if x > epsilon {
			cand := (low[i] - vec[i] - delta) / x
			if cand > theval && low[i] > -infinity {
				theval = cand
			}
		} else if x < -epsilon {
			cand := (up[i] - vec[i] + delta) / x
			if cand > theval && up[i] < infinity {
				theval = cand
			}
		}
	}
	*val = theval
}
