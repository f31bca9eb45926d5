package ratiotest

import (
	"math"

	"github.com/qlog/revsimplex/vector"
)

// Harris is the two-phase Harris ratio test with bound-shifting
// degeneracy handling (spec.md §4.4), ported from
// original_source/src/soplex/spxharrisrt.cpp.
type Harris struct{}

// degenerateEps computes spec.md §4.4's degeneracy window. Per the
// Open Question recorded in spec.md §9 (and the source's own
// "does not look ok" comment), this intentionally widens past zero
// and goes negative once numCycle exceeds maxCycle — preserved
// verbatim rather than "fixed", since the anti-cycling behavior the
// rest of the engine relies on depends on exactly this sign flip.
func degenerateEps(ctx LeaveContext) float64 {
	return ctx.Delta() * (1.0 - float64(ctx.NumCycle())/float64(ctx.MaxCycle()))
}

// enterDegenerateEps is degenerateEps's EnterContext counterpart, used by
// candidateScan the same way SelectLeave uses degenerateEps.
func enterDegenerateEps(ctx EnterContext) float64 {
	return ctx.Delta() * (1.0 - float64(ctx.NumCycle())/float64(ctx.MaxCycle()))
}

// SelectLeave runs the full two-phase Harris test for the leaving
// variable against the feasible vector's update direction upd, current
// values vec, and bounds low/up (all indexed by basic position). val
// is the caller's initial step bound (sign indicates direction: >0 for
// maxDelta, <0 for minDelta). Returns the leaving basic position and
// the accepted step, or ok=false if no pivot improves the objective
// (status is OPTIMAL in the current, possibly shifted, LP).
func (Harris) SelectLeave(ctx LeaveContext, val float64, upd *vector.Update, vec, low, up []float64) (leave int, step float64, ok bool) {
	epsilon := ctx.Epsilon()
	delta := ctx.Delta()
	degeneps := degenerateEps(ctx)

	max := val
	lastshift := ctx.Shift()
	upd.Setup()

	maxabs := 1.0

	switch {
	case max > epsilon:
		maxDelta(&maxabs, &max, upd, vec, low, up, epsilon, delta)
		if max == val {
			return -1, 0, false
		}

		stab := 0.0
		sel := math.Inf(-1)
		leaveIdx := -1
		useeps := maxabs * epsilon * 0.001
		if useeps < epsilon {
			useeps = epsilon
		}

		for k := upd.Size() - 1; k >= 0; k-- {
			i := upd.Index(k)
			x := upd.At(i)
			switch {
			case x > useeps:
				y := up[i] - vec[i]
				if y < -degeneps {
					ctx.ShiftUpperBound(i, vec[i])
				} else {
					y /= x
					if y <= max && y > sel-epsilon && x > stab {
						sel = y
						leaveIdx = i
						stab = x
					}
				}
			case x < -useeps:
				y := low[i] - vec[i]
				if y > degeneps {
					ctx.ShiftLowerBound(i, vec[i])
				} else {
					y /= x
					if y <= max && y > sel-epsilon && -x > stab {
						sel = y
						leaveIdx = i
						stab = -x
					}
				}
			default:
				upd.ClearNum(k)
			}
		}

		if lastshift != ctx.Shift() {
			return Harris{}.SelectLeave(ctx, val, upd, vec, low, up)
		}
		return leaveIdx, sel, leaveIdx >= 0

	case max < -epsilon:
		minDelta(&maxabs, &max, upd, vec, low, up, epsilon, delta)
		if max == val {
			return -1, 0, false
		}

		stab := 0.0
		sel := math.Inf(1)
		leaveIdx := -1
		useeps := maxabs * epsilon * 0.001
		if useeps < epsilon {
			useeps = epsilon
		}

		for k := upd.Size() - 1; k >= 0; k-- {
			i := upd.Index(k)
			x := upd.At(i)
			switch {
			case x < -useeps:
				y := up[i] - vec[i]
				if y < -degeneps {
					ctx.ShiftUpperBound(i, vec[i])
				} else {
					y /= x
					if y >= max && y < sel+epsilon && -x > stab {
						sel = y
						leaveIdx = i
						stab = -x
					}
				}
			case x > useeps:
				y := low[i] - vec[i]
				if y > degeneps {
					ctx.ShiftLowerBound(i, vec[i])
				} else {
					y /= x
					if y >= max && y < sel+epsilon && x > stab {
						sel = y
						leaveIdx = i
						stab = x
					}
				}
			default:
				upd.ClearNum(k)
			}
		}

		if lastshift != ctx.Shift() {
			return Harris{}.SelectLeave(ctx, val, upd, vec, low, up)
		}
		return leaveIdx, sel, leaveIdx >= 0
	}

	return -1, 0, false
}

// candidateScan runs one phase-1/phase-2 pass of SelectEnter restricted
// to a single index space (rows or columns), returning the same triple
// maxDelta/minDelta would for SelectLeave but against price vectors
// rather than primal bound slack. It does not itself enforce
// minStability — spxharrisrt.cpp only checks that post-selection,
// against a freshly recomputed price, and only for the row/price
// candidate; SelectEnter applies that check once it knows which
// candidate (if either) this scan contributed to the final choice.
func candidateScan(isRow bool, positive bool, ctx EnterContext, upd *vector.Update, vec, low, up []float64, val *float64) (id EnterID, alpha float64, sel float64, found bool) {
	epsilon := ctx.Epsilon()
	degeneps := enterDegenerateEps(ctx)

	// Drop already-basic candidates before the phase-1 scan: a basic
	// index's bound must not be allowed to tighten the running max, or a
	// legitimate non-basic candidate behind it in the active list gets
	// excluded by a window it was never eligible to set.
	for k := upd.Size() - 1; k >= 0; k-- {
		if ctx.IsBasic(isRow, upd.Index(k)) {
			upd.ClearNum(k)
		}
	}

	maxabs := 1.0
	if positive {
		maxDelta(&maxabs, val, upd, vec, low, up, epsilon, ctx.Delta())
	} else {
		minDelta(&maxabs, val, upd, vec, low, up, epsilon, ctx.Delta())
	}

	useeps := maxabs * epsilon * 0.001
	if useeps < epsilon {
		useeps = epsilon
	}

	id = InvalidEnterID
	stab := 0.0
	if positive {
		sel = math.Inf(-1)
	} else {
		sel = math.Inf(1)
	}

	// shiftUpper/shiftLower push the candidate's far bound onto the
	// engine's journal instead of admitting it into the ratio test,
	// mirroring spxharrisrt.cpp's selectEnter phase 2 (shiftUPbound/
	// shiftLPbound for row candidates, shiftUCbound/shiftLCbound for
	// column candidates) exactly as SelectLeave's phase 2 does for the
	// leaving side.
	shiftUpper := ctx.ShiftUpperPrice
	shiftLower := ctx.ShiftLowerPrice
	if !isRow {
		shiftUpper = ctx.ShiftUpperCoPrice
		shiftLower = ctx.ShiftLowerCoPrice
	}

	for k := upd.Size() - 1; k >= 0; k-- {
		i := upd.Index(k)
		x := upd.At(i)
		ax := x
		if ax < 0 {
			ax = -ax
		}
		if ax <= useeps {
			continue
		}

		var yRaw float64
		degenerate := false
		if positive {
			if x > 0 {
				yRaw = up[i] - vec[i]
				if yRaw < -degeneps {
					shiftUpper(i, vec[i])
					degenerate = true
				}
			} else {
				yRaw = low[i] - vec[i]
				if yRaw > degeneps {
					shiftLower(i, vec[i])
					degenerate = true
				}
			}
		} else {
			if x > 0 {
				yRaw = low[i] - vec[i]
				if yRaw > degeneps {
					shiftLower(i, vec[i])
					degenerate = true
				}
			} else {
				yRaw = up[i] - vec[i]
				if yRaw < -degeneps {
					shiftUpper(i, vec[i])
					degenerate = true
				}
			}
		}
		if degenerate {
			continue
		}

		y := yRaw / x
		var accept bool
		if positive {
			accept = y <= *val && y > sel-epsilon && ax > stab
		} else {
			accept = y >= *val && y < sel+epsilon && ax > stab
		}
		if accept {
			sel = y
			stab = ax
			alpha = x
			id = EnterID{Row: isRow, Index: i}
			found = true
		}
	}
	return id, alpha, sel, found
}

// SelectEnter runs the dual ratio test that picks the entering variable
// for a dual-simplex (or Phase 1 primal) pivot, scanning both the row
// price vector (pvec, slack candidates) and the column price vector
// (cvec, structural candidates). val is the caller's initial dual step
// bound; positive selects the maxDelta branch, mirroring SelectLeave's
// split.
//
// Ported from spxharrisrt.cpp's selectEnter: the row scan runs before
// the column scan and both compare against one running stability
// threshold, so on a tie the later (column) candidate overwrites the
// earlier (row) one — a tie goes to the column/co-price side, not the
// row side.
//
// Once a candidate is chosen, if it came from the row/price side its
// price is recomputed from scratch (ctx.RecomputePrice, mirroring the
// source's `pvec[pnr] = vector(pnr)*cvec`) rather than trusted from the
// scan. If the recomputed price shows the pivot is too small relative
// to how close it already is to its bound (the instability check,
// against the running minStability threshold, seeded at 1e-4),
// minStability is halved, the offending bound is shifted to its
// current price, and the whole selection is redone. Otherwise the true
// step is re-derived from the recomputed price and checked against the
// phase-1 envelope; if it doesn't fit, the selection is redone without
// any shift. The column/co-price side never goes through this
// recompute — it accepts its scanned value directly, per the source.
func (Harris) SelectEnter(ctx EnterContext, pupd, cupd *vector.Update, pvec, cvec []float64, upb, lpb, ucb, lcb []float64, val float64, positive bool) (EnterID, float64) {
	delta := ctx.Delta()
	pupd.Setup()
	cupd.Setup()

	minStability := 1e-4

	for {
		shiftBefore := ctx.Shift()

		v := val
		rowID, rowAlpha, rowSel, rowFound := candidateScan(true, positive, ctx, pupd, pvec, lpb, upb, &v)

		v2 := val
		colID, colAlpha, colSel, colFound := candidateScan(false, positive, ctx, cupd, cvec, lcb, ucb, &v2)

		var chosen EnterID
		var chosenSel, envelope float64
		found := false
		switch {
		case rowFound && colFound:
			rax, cax := math.Abs(rowAlpha), math.Abs(colAlpha)
			if cax >= rax {
				chosen, chosenSel, envelope, found = colID, colSel, v2, true
			} else {
				chosen, chosenSel, envelope, found = rowID, rowSel, v, true
			}
		case rowFound:
			chosen, chosenSel, envelope, found = rowID, rowSel, v, true
		case colFound:
			chosen, chosenSel, envelope, found = colID, colSel, v2, true
		}

		// Phase 2 of either scan may have shifted a bound instead of
		// accepting a candidate (the degeneracy case). That changes the
		// LP the ratio test is running against, so the whole selection
		// — phase 1 included — must be redone against the shifted
		// prices, exactly as SelectLeave recurses on
		// lastshift != ctx.Shift().
		if ctx.Shift() != shiftBefore {
			continue
		}

		if !found {
			return InvalidEnterID, val
		}

		if chosen.Row {
			truePrice := ctx.RecomputePrice(chosen.Index)
			pvec[chosen.Index] = truePrice

			x := pupd.At(chosen.Index)
			var bound float64
			unstable := false
			switch {
			case positive && x > 0:
				bound = upb[chosen.Index] - truePrice
				unstable = x < minStability && bound < delta
			case positive:
				bound = lpb[chosen.Index] - truePrice
				unstable = -x < minStability && -bound < delta
			case x > 0:
				bound = lpb[chosen.Index] - truePrice
				unstable = x < minStability && -bound < delta
			default:
				bound = upb[chosen.Index] - truePrice
				unstable = -x < minStability && bound < delta
			}

			if unstable {
				minStability /= 2
				if (x > 0) == positive {
					ctx.ShiftUpperPrice(chosen.Index, truePrice)
				} else {
					ctx.ShiftLowerPrice(chosen.Index, truePrice)
				}
				continue
			}

			trueSel := bound / x
			if positive {
				if trueSel > envelope {
					continue
				}
			} else if trueSel < envelope {
				continue
			}
			chosenSel = trueSel
		}

		return chosen, chosenSel
	}
}
