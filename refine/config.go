package refine

// Config controls the iterative refinement driver (spec.md §4.7).
type Config struct {
	// Target is the exact tolerance τ_exact on the worst rational
	// violation; refinement stops once every quality measure is at or
	// below it.
	Target float64
	// MaxRefinements bounds the number of correction rounds.
	MaxRefinements int
	// StallFactor is the minimum violation-reduction factor a round
	// must achieve to not count toward stalling; two consecutive
	// rounds below it end refinement early.
	StallFactor float64
	// MaxDenominatorBits caps the base-2 digit size of the LCM of the
	// shadow's denominators (rational.LCMDenSize); once exceeded,
	// refinement stops as Stalled rather than let the exact arithmetic
	// grow without bound. Zero disables the cap.
	MaxDenominatorBits int
}

// DefaultConfig mirrors the teacher's default tolerances, tightened to
// the rational driver's own exactness target.
func DefaultConfig() Config {
	return Config{
		Target:             1e-12,
		MaxRefinements:     50,
		StallFactor:        2.0,
		MaxDenominatorBits: 4096,
	}
}
