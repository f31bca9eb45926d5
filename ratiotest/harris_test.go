package ratiotest

import (
	"testing"

	"github.com/qlog/revsimplex/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveContext struct {
	delta    float64
	epsilon  float64
	numCycle int
	maxCycle int
	shift    float64
	up, low  []float64
}

func (f *fakeLeaveContext) Delta() float64   { return f.delta }
func (f *fakeLeaveContext) Epsilon() float64 { return f.epsilon }
func (f *fakeLeaveContext) NumCycle() int    { return f.numCycle }
func (f *fakeLeaveContext) MaxCycle() int    { return f.maxCycle }
func (f *fakeLeaveContext) Shift() float64   { return f.shift }
func (f *fakeLeaveContext) ShiftUpperBound(basicPos int, newBound float64) {
	f.up[basicPos] = newBound
	f.shift += 1
}
func (f *fakeLeaveContext) ShiftLowerBound(basicPos int, newBound float64) {
	f.low[basicPos] = newBound
	f.shift += 1
}

func newFakeLeaveContext() *fakeLeaveContext {
	return &fakeLeaveContext{delta: 1e-6, epsilon: 1e-9, numCycle: 0, maxCycle: 1000}
}

func TestSelectLeavePositiveStepPicksFirstBlockingBound(t *testing.T) {
	ctx := newFakeLeaveContext()
	upd := vector.NewUpdate(3)
	upd.SetValue(0, 1.0)
	upd.SetValue(1, 2.0)
	vec := []float64{0, 0, 0}
	low := []float64{-10, -10, -10}
	up := []float64{5, 2, 10}

	pos, step, ok := Harris{}.SelectLeave(ctx, 100, upd, vec, low, up)
	require.True(t, ok)
	// row 1 reaches its upper bound of 2 at theta=1 (x=2 per unit theta);
	// row 0 would only reach its bound of 5 at theta=5. The tighter bound wins.
	assert.Equal(t, 1, pos)
	assert.InDelta(t, 1.0, step, 1e-9)
}

func TestSelectLeaveNegativeStep(t *testing.T) {
	ctx := newFakeLeaveContext()
	upd := vector.NewUpdate(2)
	upd.SetValue(0, 1.0)
	vec := []float64{0, 0}
	low := []float64{-3, -10}
	up := []float64{10, 10}

	pos, step, ok := Harris{}.SelectLeave(ctx, -100, upd, vec, low, up)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
	assert.InDelta(t, -3.0, step, 1e-9)
}

func TestSelectLeaveNoBlockingRowIsUnbounded(t *testing.T) {
	ctx := newFakeLeaveContext()
	upd := vector.NewUpdate(1)
	upd.SetValue(0, 1.0)
	vec := []float64{0}
	low := []float64{-10}
	up := []float64{10}

	// no row's bound is reached before the caller's own step bound of 5,
	// so the scan leaves max unchanged and reports no leaving variable.
	_, _, ok := Harris{}.SelectLeave(ctx, 5, upd, vec, low, up)
	assert.False(t, ok)
}

func TestSelectLeaveShiftsFarBoundWithinDegeneracyWindow(t *testing.T) {
	ctx := newFakeLeaveContext()
	ctx.delta = 0.1 // degeneracy window: a bound violated by more than this is shifted, not selected
	upd := vector.NewUpdate(2)
	upd.SetValue(0, 1.0)
	upd.SetValue(1, 1.0)
	vec := []float64{0, 0}
	// row 0's upper bound is already violated by 0.5, more than the 0.1
	// degeneracy window, so it must be shifted out to vec[0] rather than
	// chosen as the (near-zero-step) pivot row. Row 1 blocks cleanly.
	ctx.up = []float64{-0.5, 5}
	ctx.low = []float64{-10, -10}

	pos, step, ok := Harris{}.SelectLeave(ctx, 100, upd, vec, ctx.low, ctx.up)
	require.True(t, ok)
	assert.Greater(t, ctx.shift, 0.0)
	assert.Equal(t, 0.0, ctx.up[0]) // shifted to the current value, clearing the violation
	// row 0 now blocks at step 0 (its shifted bound coincides with vec[0]),
	// a degenerate but valid pivot.
	assert.Equal(t, 0, pos)
	assert.InDelta(t, 0.0, step, 1e-12)
}

func TestDegenerateEpsNarrowsAsCyclingGrows(t *testing.T) {
	ctx := newFakeLeaveContext()
	wide := degenerateEps(ctx)
	ctx.numCycle = ctx.maxCycle
	narrow := degenerateEps(ctx)
	assert.Greater(t, wide, narrow)
}

type fakeEnterContext struct {
	delta    float64
	epsilon  float64
	numCycle int
	maxCycle int
	shift    float64
	basic    map[int]bool

	upb, lpb, ucb, lcb []float64
	recomputed         []int
	recomputeReturn    float64
}

func (f *fakeEnterContext) Delta() float64   { return f.delta }
func (f *fakeEnterContext) Epsilon() float64 { return f.epsilon }
func (f *fakeEnterContext) NumCycle() int    { return f.numCycle }
func (f *fakeEnterContext) MaxCycle() int    { return f.maxCycle }
func (f *fakeEnterContext) Shift() float64   { return f.shift }

func (f *fakeEnterContext) ShiftUpperPrice(rowIdx int, newBound float64) {
	f.upb[rowIdx] = newBound
	f.shift += 1
}
func (f *fakeEnterContext) ShiftLowerPrice(rowIdx int, newBound float64) {
	f.lpb[rowIdx] = newBound
	f.shift += 1
}
func (f *fakeEnterContext) ShiftUpperCoPrice(idx int, newBound float64) {
	f.ucb[idx] = newBound
	f.shift += 1
}
func (f *fakeEnterContext) ShiftLowerCoPrice(idx int, newBound float64) {
	f.lcb[idx] = newBound
	f.shift += 1
}
func (f *fakeEnterContext) IsBasic(isRow bool, idx int) bool {
	return f.basic[idx]
}
func (f *fakeEnterContext) RecomputePrice(idx int) float64 {
	f.recomputed = append(f.recomputed, idx)
	return f.recomputeReturn
}

func newFakeEnterContext() *fakeEnterContext {
	return &fakeEnterContext{delta: 1e-6, epsilon: 1e-9, maxCycle: 1000, basic: map[int]bool{}}
}

func TestSelectEnterPicksMostStableAcrossRowsAndColumns(t *testing.T) {
	ctx := newFakeEnterContext()
	pupd := vector.NewUpdate(2)
	pupd.SetValue(0, 0.5)
	cupd := vector.NewUpdate(2)
	cupd.SetValue(0, 3.0)

	pvec := []float64{0, 0}
	cvec := []float64{0, 0}
	lpb := []float64{-10, -10}
	upb := []float64{10, 10}
	lcb := []float64{-10, -10}
	ucb := []float64{10, 10}

	id, _ := Harris{}.SelectEnter(ctx, pupd, cupd, pvec, cvec, upb, lpb, ucb, lcb, 100, true)
	require.True(t, id.Valid())
	assert.False(t, id.Row) // the column candidate has the larger pivot magnitude
	assert.Equal(t, 0, id.Index)
}

func TestSelectEnterSkipsBasicCandidates(t *testing.T) {
	ctx := newFakeEnterContext()
	ctx.basic[0] = true
	pupd := vector.NewUpdate(2)
	pupd.SetValue(0, 5.0)
	pupd.SetValue(1, 1.0)
	cupd := vector.NewUpdate(1)

	pvec := []float64{0, 0}
	cvec := []float64{0}
	lpb := []float64{-10, -10}
	upb := []float64{10, 10}
	lcb := []float64{-10}
	ucb := []float64{10}

	id, _ := Harris{}.SelectEnter(ctx, pupd, cupd, pvec, cvec, upb, lpb, ucb, lcb, 100, true)
	require.True(t, id.Valid())
	assert.True(t, id.Row)
	assert.Equal(t, 1, id.Index)
}

func TestSelectEnterShiftsFarPriceBoundWithinDegeneracyWindow(t *testing.T) {
	ctx := newFakeEnterContext()
	ctx.delta = 0.1
	pupd := vector.NewUpdate(2)
	pupd.SetValue(0, 1.0) // row 0's upper price bound is already violated by 0.5, more than the 0.1 degeneracy window
	pupd.SetValue(1, 1.0) // row 1 blocks cleanly
	cupd := vector.NewUpdate(1)

	pvec := []float64{0, 0}
	cvec := []float64{0}
	ctx.upb = []float64{-0.5, 5}
	ctx.lpb = []float64{-10, -10}
	ctx.ucb = []float64{10}
	ctx.lcb = []float64{-10}

	id, sel := Harris{}.SelectEnter(ctx, pupd, cupd, pvec, cvec, ctx.upb, ctx.lpb, ctx.ucb, ctx.lcb, 100, true)
	require.True(t, id.Valid())
	assert.Greater(t, ctx.shift, 0.0)
	assert.Equal(t, 0.0, ctx.upb[0]) // shifted to the current price, clearing the violation
	// after the shift clears row 0's violation, it re-enters the retried
	// scan as a degenerate, zero-step candidate and wins over row 1.
	assert.True(t, id.Row)
	assert.Equal(t, 0, id.Index)
	assert.InDelta(t, 0.0, sel, 1e-9)
}

func TestSelectEnterBreaksTiesTowardColumnCandidate(t *testing.T) {
	ctx := newFakeEnterContext()
	pupd := vector.NewUpdate(1)
	pupd.SetValue(0, 2.0)
	cupd := vector.NewUpdate(1)
	cupd.SetValue(0, 2.0) // exact tie in pivot magnitude with the row candidate

	pvec := []float64{0}
	cvec := []float64{0}
	lpb := []float64{-10}
	upb := []float64{10}
	lcb := []float64{-10}
	ucb := []float64{10}

	id, _ := Harris{}.SelectEnter(ctx, pupd, cupd, pvec, cvec, upb, lpb, ucb, lcb, 100, true)
	require.True(t, id.Valid())
	// spxharrisrt.cpp scans rows before columns against one shared
	// stability threshold, so a column candidate that only matches
	// (not exceeds) the best row magnitude overwrites it.
	assert.False(t, id.Row)
	assert.Equal(t, 0, id.Index)
}

func TestSelectEnterRecomputesPriceAndRetriesOnInstability(t *testing.T) {
	ctx := newFakeEnterContext()
	ctx.delta = 0.01
	ctx.recomputeReturn = 0.00005 // the "true" price once recomputed, close to upb[0]
	pupd := vector.NewUpdate(1)
	pupd.SetValue(0, 1e-5) // a pivot small enough to trip the post-selection minStability check
	cupd := vector.NewUpdate(1)

	pvec := []float64{0}
	cvec := []float64{0}
	ctx.upb = []float64{0.0001}
	ctx.lpb = []float64{-1000}
	ctx.ucb = []float64{10}
	ctx.lcb = []float64{-10}

	id, sel := Harris{}.SelectEnter(ctx, pupd, cupd, pvec, cvec, ctx.upb, ctx.lpb, ctx.ucb, ctx.lcb, 2000, true)
	require.True(t, id.Valid())
	assert.True(t, id.Row)
	assert.Equal(t, 0, id.Index)
	// the recomputed price (not the value used during the scan) drives
	// the instability check and, once stable, the accepted step.
	assert.Greater(t, len(ctx.recomputed), 1)
	assert.Greater(t, ctx.shift, 0.0)
	assert.Equal(t, ctx.recomputeReturn, ctx.upb[0]) // shifted to the recomputed price
	assert.InDelta(t, 0.0, sel, 1e-9)
}

func TestSelectEnterReturnsInvalidWhenNoCandidateExists(t *testing.T) {
	ctx := newFakeEnterContext()
	pupd := vector.NewUpdate(1)
	cupd := vector.NewUpdate(1)

	id, _ := Harris{}.SelectEnter(ctx, pupd, cupd, []float64{0}, []float64{0}, []float64{10}, []float64{-10}, []float64{10}, []float64{-10}, 100, true)
	assert.False(t, id.Valid())
}
