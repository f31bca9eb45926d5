package refine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/pricing"
	"github.com/qlog/revsimplex/simplex"
)

func thirdsProblem() *model.Problem {
	// minimize x s.t. 3x >= 1, 0 <= x <= 1; optimum x = 1/3, a value
	// IEEE-754 doubles cannot hold exactly, so the floating solve's
	// basic value is necessarily off by a rounding error refinement
	// must correct.
	a := model.NewMatrixFromColumns(1, [][]float64{{3}})
	return model.NewProblem(model.Minimize, []float64{1}, a, []float64{1}, []float64{model.Inf}, []float64{0}, []float64{1})
}

func TestRefineSatisfiesTargetToleranceOnADoubleUnrepresentableOptimum(t *testing.T) {
	// 1/3 has no exact IEEE-754 double representation, but the
	// relative error of the nearest double is far below the default
	// target, so refinement should certify it exact without needing a
	// correction round.
	p := thirdsProblem()
	e := simplex.New(p, pricing.NewDevex(p.NumRows()), simplex.DefaultConfig())
	status, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, status)

	d, err := New(e, DefaultConfig())
	require.NoError(t, err)
	result, err := d.Refine(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Exact, result.Status)
	assert.LessOrEqual(t, result.Quality.ConstraintViolation, DefaultConfig().Target)
	assert.InDelta(t, 1.0/3.0, result.X[0].Float64(), 1e-9)
	assert.True(t, result.FloatAdjacent)
	assert.Greater(t, result.Quality.ShadowSize, 0)
}

func TestRefineStopsWhenDenominatorCapIsExceeded(t *testing.T) {
	p := thirdsProblem()
	e := simplex.New(p, pricing.NewDevex(p.NumRows()), simplex.DefaultConfig())
	status, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, status)

	cfg := DefaultConfig()
	cfg.Target = 0             // forces past the Exact check so the cap check runs
	cfg.MaxDenominatorBits = 1 // the shadow's own float64-derived denominators already exceed this
	d, err := New(e, cfg)
	require.NoError(t, err)
	result, err := d.Refine(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stalled, result.Status)
}

func TestNewRejectsNonOptimalEngine(t *testing.T) {
	p := thirdsProblem()
	e := simplex.New(p, pricing.NewDevex(p.NumRows()), simplex.DefaultConfig())
	_, err := New(e, DefaultConfig())
	assert.ErrorIs(t, err, ErrNotOptimal)
}

func TestRefineStopsAtMaxRefinementsWhenTargetIsUnreachable(t *testing.T) {
	p := thirdsProblem()
	e := simplex.New(p, pricing.NewDevex(p.NumRows()), simplex.DefaultConfig())
	status, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, simplex.Optimal, status)

	cfg := DefaultConfig()
	cfg.Target = 0           // never reached exactly by a float64-approximate 1/3
	cfg.MaxRefinements = 0   // so round 0 must hit the limit, not iterate
	d, err := New(e, cfg)
	require.NoError(t, err)
	result, err := d.Refine(context.Background())
	require.NoError(t, err)

	assert.Equal(t, LimitReached, result.Status)
	assert.Equal(t, 0, result.Refinements)
}
