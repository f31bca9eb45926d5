// Package pricing selects the entering (primal) or leaving (dual)
// variable from reduced-cost or infeasibility information, weighted
// by a per-basic-position γ that approximates the column's norm in
// the current basis so the chosen pivot tends to make real progress
// rather than a numerically tiny one (spec.md §4.5).
package pricing

// Candidate is one eligible pricing candidate: a VarID-space index
// (structural or slack, in the caller's unified numbering) together
// with the improving sign (+1 if increasing the variable from its
// current bound improves the objective, -1 if decreasing does).
type Candidate struct {
	ID   int
	Sign float64
}

// Pricer is the capability record spec.md §4.5/§9 asks for in place of
// a class hierarchy: a tagged, cloneable set of selection and
// weight-update operations. The Simplex Engine is polymorphic only
// over this interface and never inspects which concrete variant it
// holds.
type Pricer interface {
	// SelectEnter returns the best-priced improving candidate among
	// candidates, given reducedCost(id) for each candidate's ID, or ok=false
	// if none improves the objective (i.e. the current basis is
	// primal optimal for this pricing rule).
	SelectEnter(candidates []Candidate, reducedCost func(id int) float64) (Candidate, bool)

	// SelectLeave returns the basic position with the largest
	// weighted infeasibility, given infeasibility(pos) for every basic
	// position (zero or the signed bound violation), or ok=false if
	// every basic variable is feasible.
	SelectLeave(m int, infeasibility func(pos int) float64) (int, bool)

	// UpdateWeights adjusts the γ weights after a pivot that moved
	// enterID into basic position leavePos (displacing leaveID, which
	// becomes non-basic), given the pivot column (B^{-1} a_enter,
	// dense, length m) and the pivot row (the leavePos-th row of
	// B^{-1}N restricted to currently-relevant nonbasic candidates,
	// keyed by VarID).
	UpdateWeights(leavePos int, leaveID, enterID int, pivotColumn []float64, pivotRow map[int]float64)

	// Reset reinitializes every weight to the rule's default (1.0),
	// called after a refactorization invalidates incremental weights
	// beyond repair.
	Reset(m int)

	// Clone returns an independent copy, so the engine can snapshot
	// pricing state across a scratch-arena solve/refine boundary
	// without aliasing the live weights (spec.md §5).
	Clone() Pricer
}
