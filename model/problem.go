package model

import "math"

// Inf is the sentinel used for an unbounded row or variable bound.
// Comparisons use it directly rather than math.IsInf so that bound
// arithmetic (e.g. u[i] - fVec[i]) stays well-defined without special
// casing ±Inf everywhere.
const Inf = math.MaxFloat64

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// VarID names one of the n structural columns or m row slacks in a
// single flat space, the way SoPlex's SPxId unifies "column or row"
// (original_source/src/soplex/spxharrisrt.cpp calls solver().id(i) for
// structural and solver().coId(i) for row duals without the caller
// needing to know which). Structural columns are IDs [0, n); row
// slacks are IDs [n, n+m).
type VarID int

// Problem is the LP: minimize/maximize cᵀx subject to
// lhs ≤ Ax ≤ rhs, ℓ ≤ x ≤ u. Row bounds are folded into slack-variable
// bounds at load time (§3), so the simplex core only ever reasons
// about one uniform [lower,upper] per VarID. Everything is fixed after
// NewProblem except the lo/hi bounds, which a ShiftStack edits in place
// and restores on Unwind.
type Problem struct {
	A    *Matrix
	Sense Sense

	n, m int // structural columns, rows

	c      []float64 // length n
	lo, hi []float64 // length n+m, structural then slack bounds

	lhs, rhs []float64 // length m, original row bounds (kept for reporting)
}

// NewProblem builds a Problem from a structural objective/column
// matrix and row bounds. Row i's slack variable s_i = (Ax)_i gets
// bounds [lhs[i], rhs[i]], folding the row constraint into a bound —
// the standard revised-simplex reduction which is why VarID spans
// both structural and slack variables uniformly.
func NewProblem(sense Sense, c []float64, a *Matrix, lhs, rhs []float64, lo, hi []float64) *Problem {
	m, n := a.Dims()
	p := &Problem{
		A:     a,
		Sense: sense,
		n:     n,
		m:     m,
		c:     append([]float64(nil), c...),
		lhs:   append([]float64(nil), lhs...),
		rhs:   append([]float64(nil), rhs...),
	}
	p.lo = make([]float64, n+m)
	p.hi = make([]float64, n+m)
	copy(p.lo, lo)
	copy(p.hi, hi)
	for i := 0; i < m; i++ {
		p.lo[n+i] = lhs[i]
		p.hi[n+i] = rhs[i]
	}
	return p
}

// NumCols returns the structural variable count n.
func (p *Problem) NumCols() int { return p.n }

// NumRows returns the constraint count m.
func (p *Problem) NumRows() int { return p.m }

// NumVars returns n+m, the size of the unified VarID space.
func (p *Problem) NumVars() int { return p.n + p.m }

// IsSlack reports whether id names a row slack rather than a
// structural column.
func (p *Problem) IsSlack(id VarID) bool { return int(id) >= p.n }

// RowOf returns the row index a slack VarID corresponds to; only
// valid when IsSlack(id).
func (p *Problem) RowOf(id VarID) int { return int(id) - p.n }

// Obj returns the objective coefficient of VarID id (zero for slacks:
// the objective is defined purely over structural variables).
func (p *Problem) Obj(id VarID) float64 {
	if p.IsSlack(id) {
		return 0
	}
	return p.c[id]
}

// Lower and Upper return id's bound, possibly ±Inf.
func (p *Problem) Lower(id VarID) float64 { return p.lo[id] }
func (p *Problem) Upper(id VarID) float64 { return p.hi[id] }

// Column returns the unified-space column for VarID id: the
// structural column from A for id < n, or the i-th unit vector
// (negated, since s_i - (Ax)_i = 0 is the slack's defining row) for a
// slack id.
func (p *Problem) Column(id VarID) *columnView {
	if !p.IsSlack(id) {
		return &columnView{sparse: p.A.Column(int(id))}
	}
	row := p.RowOf(id)
	return &columnView{unit: true, unitRow: row, unitSign: -1}
}

// columnView lets callers treat a structural column and a slack's
// implicit unit column uniformly without materializing an (n+m)-long
// sparse vector for every slack.
type columnView struct {
	sparse   interface{ Indices() []int; Values() []float64 }
	unit     bool
	unitRow  int
	unitSign float64
}

// Visit calls f(row, value) for every nonzero entry of the column.
func (c *columnView) Visit(f func(row int, val float64)) {
	if c.unit {
		f(c.unitRow, c.unitSign)
		return
	}
	idx := c.sparse.Indices()
	val := c.sparse.Values()
	for k, i := range idx {
		f(i, val[k])
	}
}
