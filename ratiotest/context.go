// Package ratiotest implements the Harris ratio test with
// bound-shifting degeneracy handling (spec.md §4.4), ported directly
// from original_source/src/soplex/spxharrisrt.cpp. The back-pointer
// from the ratio test to the owning engine that the original carries
// (this->solver()) is replaced, per spec.md §9's design note, with an
// explicit capability interface passed into every call — the ratio
// test package imports nothing from the engine.
package ratiotest

// LeaveContext is everything SelectLeave needs from the owning engine
// besides the vectors passed explicitly: the tolerances, the cycling
// counters that drive the degeneracy window, and the ability to push a
// bound shift onto the engine's journal.
type LeaveContext interface {
	Delta() float64
	Epsilon() float64
	NumCycle() int
	MaxCycle() int
	// Shift returns the current total journaled shift magnitude, used
	// to detect whether phase 2 issued a shift (in which case the
	// whole selection must be redone on the shifted LP).
	Shift() float64
	ShiftUpperBound(basicPos int, newBound float64)
	ShiftLowerBound(basicPos int, newBound float64)
}

// EnterContext is everything SelectEnter needs. It mirrors LeaveContext
// plus the extra hooks the dual-vector (coPvec) scan and the
// instability-recovery loop require.
type EnterContext interface {
	Delta() float64
	Epsilon() float64
	NumCycle() int
	MaxCycle() int
	Shift() float64

	ShiftUpperPrice(rowIdx int, newBound float64)
	ShiftLowerPrice(rowIdx int, newBound float64)
	ShiftUpperCoPrice(rowIdx int, newBound float64)
	ShiftLowerCoPrice(rowIdx int, newBound float64)

	// IsBasic reports whether the candidate identified by (isRow, idx)
	// is basic — the source re-derives pVec/coPvec lazily and must
	// skip a candidate that turned out to already be basic.
	IsBasic(isRow bool, idx int) bool

	// RecomputePrice recomputes pVec[idx] = column(idx)·coPvec, used by
	// the instability-recovery loop after it shifts a bound and must
	// re-derive the affected entry before re-testing it.
	RecomputePrice(idx int) float64
}

// EnterID names the chosen entering candidate: a structural column
// index (Row=false) or a row/dual index (Row=true), mirroring SoPlex's
// SPxId duality between solver().id(i) and solver().coId(i).
type EnterID struct {
	Row   bool
	Index int
}

// Valid reports whether id names a real candidate. Only a negative
// Index (InvalidEnterID) is invalid; the zero value names column 0 and
// is valid.
func (id EnterID) Valid() bool { return id.Index >= 0 }

// InvalidEnterID is the sentinel "no candidate" result.
var InvalidEnterID = EnterID{Index: -1}
