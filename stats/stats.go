// Package stats collects the timing, iteration-count, and solution
// quality measures spec.md §6 asks the engine to surface, plus a
// Snapshot type pairing the two, following the
// original_source/src/statistics.cpp and spxquality.cpp supplement
// described in SPEC_FULL.md §4.6.
package stats

import (
	"fmt"
	"io"
	"time"
)

// Stats accumulates the solve statistics simplex.Engine records during
// Solve and SolveDual. All duration fields are wall-clock time spent in
// the named phase. refine.Driver does not fill in Refinements or
// StallRefinements; it reports those counts in refine.Result.
type Stats struct {
	ReadingTime       time.Duration
	PreprocessingTime time.Duration
	SimplexTime       time.Duration
	SyncTime          time.Duration
	TransformTime     time.Duration
	SolvingTime       time.Duration

	Iterations          int
	IterationsFromBasis int
	IterationsPrimal    int
	IterationsDual      int

	LUFactorizations   int
	LUSolves           int
	LUFactorizationTime time.Duration
	LUSolveTime        time.Duration

	Refinements      int
	StallRefinements int
}

// Quality is the point-in-time violation snapshot spxquality.cpp
// tracks during (not only after) the solve.
type Quality struct {
	ConstraintViolation float64
	BoundViolation      float64
	SlackViolation      float64
	ReducedCostViolation float64

	// ShadowSize and DenominatorBits describe the exact rational
	// shadow's own arithmetic weight (rational.TotalSize/LCMDenSize),
	// not a feasibility measure — tracked so growth toward
	// Config.MaxDenominatorBits is visible before it forces a stall.
	ShadowSize      int
	DenominatorBits int
	// ResidualMagnitude is rational.OrderOfMagnitude of the worst
	// constraint residual (numerator digit count minus denominator digit
	// count, 0 when they match), a coarse human-readable scale independent of
	// ConstraintViolation's exact float value.
	ResidualMagnitude int
}

// Snapshot is a Stats/Quality pair (SPEC_FULL.md §4.6). Neither the
// engine nor the refinement driver builds one; refine.Driver recomputes
// its Quality from the rational shadow every round.
type Snapshot struct {
	Stats
	Quality
}

// Report writes the percentage-breakdown layout spec.md §6 describes,
// generalized from the teacher's PrintC/PrintA/PrintSolution raw
// matrix dumps to a timing/iteration summary.
func (s Stats) Report(w io.Writer) {
	total := s.SolvingTime
	pct := func(d time.Duration) float64 {
		if total <= 0 {
			return 0
		}
		return 100 * float64(d) / float64(total)
	}
	fmt.Fprintf(w, "solving time       : %12s (100.00%%)\n", total)
	fmt.Fprintf(w, "  reading          : %12s (%6.2f%%)\n", s.ReadingTime, pct(s.ReadingTime))
	fmt.Fprintf(w, "  preprocessing    : %12s (%6.2f%%)\n", s.PreprocessingTime, pct(s.PreprocessingTime))
	fmt.Fprintf(w, "  simplex          : %12s (%6.2f%%)\n", s.SimplexTime, pct(s.SimplexTime))
	fmt.Fprintf(w, "  sync             : %12s (%6.2f%%)\n", s.SyncTime, pct(s.SyncTime))
	fmt.Fprintf(w, "  transform        : %12s (%6.2f%%)\n", s.TransformTime, pct(s.TransformTime))
	fmt.Fprintf(w, "iterations         : %d (primal %d, dual %d, from basis %d)\n",
		s.Iterations, s.IterationsPrimal, s.IterationsDual, s.IterationsFromBasis)
	fmt.Fprintf(w, "LU factorizations  : %d (%s), solves: %d (%s)\n",
		s.LUFactorizations, s.LUFactorizationTime, s.LUSolves, s.LUSolveTime)
	fmt.Fprintf(w, "refinements        : %d (%d stalled)\n", s.Refinements, s.StallRefinements)
}

// ReportQuality writes q's violation measures and shadow arithmetic
// size, the mid-solve snapshot spxquality.cpp prints alongside Stats.
func (q Quality) ReportQuality(w io.Writer) {
	fmt.Fprintf(w, "constraint violation: %g\n", q.ConstraintViolation)
	fmt.Fprintf(w, "bound violation     : %g\n", q.BoundViolation)
	fmt.Fprintf(w, "slack violation     : %g\n", q.SlackViolation)
	fmt.Fprintf(w, "reduced cost violation: %g\n", q.ReducedCostViolation)
	fmt.Fprintf(w, "shadow size (bits)  : %d (max denominator %d)\n", q.ShadowSize, q.DenominatorBits)
}
