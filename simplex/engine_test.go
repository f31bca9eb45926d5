package simplex

import (
	"context"
	"testing"

	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoVarProblem() *model.Problem {
	// minimize x+y s.t. 1 <= x+y <= Inf, 0<=x,y<=10
	a := model.NewMatrixFromColumns(1, [][]float64{{1}, {1}})
	return model.NewProblem(model.Minimize, []float64{1, 1}, a, []float64{1}, []float64{model.Inf}, []float64{0, 0}, []float64{10, 10})
}

func TestSolveTwoVarOptimal(t *testing.T) {
	p := twoVarProblem()
	e := New(p, pricing.NewDevex(p.NumRows()), DefaultConfig())
	status, err := e.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Optimal, status)
	assert.InDelta(t, 1.0, e.Value(), 1e-6)
}

func TestSolveInfeasible(t *testing.T) {
	// minimize x s.t. 5 <= x <= 10 but x fixed in [0,1]: infeasible.
	a := model.NewMatrixFromColumns(1, [][]float64{{1}})
	p := model.NewProblem(model.Minimize, []float64{1}, a, []float64{5}, []float64{10}, []float64{0}, []float64{1})
	e := New(p, pricing.NewDevex(p.NumRows()), DefaultConfig())
	status, err := e.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Infeasible, status)
}

func TestSolveUnbounded(t *testing.T) {
	// maximize x s.t. x >= 0 unbounded above, with no constraining row.
	a := model.NewMatrixFromColumns(1, [][]float64{{0}})
	p := model.NewProblem(model.Maximize, []float64{1}, a, []float64{0}, []float64{model.Inf}, []float64{0}, []float64{model.Inf})
	e := New(p, pricing.NewDevex(p.NumRows()), DefaultConfig())
	status, err := e.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Unbounded, status)
}

func TestSolveRespectsCancelledContext(t *testing.T) {
	p := twoVarProblem()
	e := New(p, pricing.NewDevex(p.NumRows()), DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	status, err := e.Solve(ctx)
	require.NoError(t, err)
	assert.Equal(t, AbortLimit, status)
}

func TestSolveDualReachesSameOptimumAsPrimal(t *testing.T) {
	// The slack basis here starts primal infeasible (x=y=0 violates
	// the row's lower bound of 1) but happens to already be dual
	// feasible (both structural reduced costs are +1 at their lower
	// bound, in a minimize problem with zero-cost slacks), so the dual
	// loop can restore primal feasibility on its own and should land
	// on the same optimum as Solve.
	p := twoVarProblem()
	e := New(p, pricing.NewDevex(p.NumRows()), DefaultConfig())
	status, err := e.SolveDual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Optimal, status)
	assert.InDelta(t, 1.0, e.Value(), 1e-6)
}
