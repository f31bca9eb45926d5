package simplex

import "github.com/qlog/revsimplex/model"

// leaveCtx adapts an Engine to ratiotest.LeaveContext, replacing the
// back-pointer spxharrisrt.cpp gives its ratio tester into the owning
// solver (spec.md §9's Design Note).
type leaveCtx struct {
	e *Engine
}

func (c leaveCtx) Delta() float64   { return c.e.cfg.Delta }
func (c leaveCtx) Epsilon() float64 { return c.e.cfg.Epsilon }
func (c leaveCtx) NumCycle() int    { return c.e.numCycle }
func (c leaveCtx) MaxCycle() int    { return c.e.cfg.MaxCycle }
func (c leaveCtx) Shift() float64   { return c.e.shifts.Total() }

func (c leaveCtx) ShiftUpperBound(basicPos int, newBound float64) {
	id := c.e.basis.At(basicPos)
	c.e.shifts.ShiftUpper(id, newBound)
}

func (c leaveCtx) ShiftLowerBound(basicPos int, newBound float64) {
	id := c.e.basis.At(basicPos)
	c.e.shifts.ShiftLower(id, newBound)
}

// enterCtx adapts an Engine to ratiotest.EnterContext for the dual
// simplex's entering-variable ratio test.
type enterCtx struct {
	e *Engine
}

func (c enterCtx) Delta() float64   { return c.e.cfg.Delta }
func (c enterCtx) Epsilon() float64 { return c.e.cfg.Epsilon }
func (c enterCtx) NumCycle() int    { return c.e.numCycle }
func (c enterCtx) MaxCycle() int    { return c.e.cfg.MaxCycle }
func (c enterCtx) Shift() float64   { return c.e.shifts.Total() }

func (c enterCtx) ShiftUpperPrice(rowIdx int, newBound float64) {
	id := model.VarID(c.e.p.NumCols() + rowIdx)
	c.e.shifts.ShiftUpper(id, newBound)
}

func (c enterCtx) ShiftLowerPrice(rowIdx int, newBound float64) {
	id := model.VarID(c.e.p.NumCols() + rowIdx)
	c.e.shifts.ShiftLower(id, newBound)
}

func (c enterCtx) ShiftUpperCoPrice(rowIdx int, newBound float64) {
	c.e.shifts.ShiftUpper(model.VarID(rowIdx), newBound)
}

func (c enterCtx) ShiftLowerCoPrice(rowIdx int, newBound float64) {
	c.e.shifts.ShiftLower(model.VarID(rowIdx), newBound)
}

func (c enterCtx) IsBasic(isRow bool, idx int) bool {
	if isRow {
		return c.e.basis.IsBasic(model.VarID(c.e.p.NumCols() + idx))
	}
	return c.e.basis.IsBasic(model.VarID(idx))
}

func (c enterCtx) RecomputePrice(idx int) float64 {
	return c.e.reducedCostOf(model.VarID(c.e.p.NumCols() + idx))
}
