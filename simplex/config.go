package simplex

import "github.com/qlog/revsimplex/lu"

// Config publishes every threshold spec.md §9 says must stay visible
// rather than buried in conditional compilation.
type Config struct {
	LU lu.Config

	// Epsilon is the zero-comparison tolerance used throughout pricing
	// and the ratio test.
	Epsilon float64
	// Delta (δ₀) is the feasibility tolerance the Harris ratio test is
	// allowed to overstep on the far bound.
	Delta float64
	// MaxCycle bounds the degeneracy counter that narrows
	// degenerateEps toward (and past) zero.
	MaxCycle int
	// MaxIterations aborts the solve with AbortLimit once reached, a
	// backstop independent of ctx deadlines.
	MaxIterations int

	Verbose bool
}

// DefaultConfig matches the defaults spec.md names explicitly.
func DefaultConfig() Config {
	return Config{
		LU:            lu.DefaultConfig(),
		Epsilon:       1e-9,
		Delta:         1e-6,
		MaxCycle:      1000,
		MaxIterations: 10000,
	}
}
