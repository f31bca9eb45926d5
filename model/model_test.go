package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleProblem() *Problem {
	// minimize x+y s.t. 1 <= x+y <= Inf, 0<=x,y<=1
	a := NewMatrixFromColumns(1, [][]float64{{1}, {1}})
	return NewProblem(Minimize, []float64{1, 1}, a, []float64{1}, []float64{Inf}, []float64{0, 0}, []float64{1, 1})
}

func TestNewBasisSlackStart(t *testing.T) {
	p := simpleProblem()
	b := NewBasis(p)
	require.Equal(t, 1, b.Size())
	assert.True(t, b.IsBasic(VarID(2))) // slack for the single row
	assert.Equal(t, AtLower, b.StatusOf(VarID(0)))
	assert.Equal(t, AtLower, b.StatusOf(VarID(1)))
}

func TestBasisPivot(t *testing.T) {
	p := simpleProblem()
	b := NewBasis(p)
	leaving := b.Pivot(0, VarID(0), AtUpper)
	assert.Equal(t, VarID(2), leaving)
	assert.True(t, b.IsBasic(VarID(0)))
	assert.Equal(t, AtUpper, b.StatusOf(VarID(2)))
}

func TestShiftStackUnwind(t *testing.T) {
	p := simpleProblem()
	s := NewShiftStack(p)
	s.ShiftUpper(VarID(0), 0.999)
	assert.InDelta(t, 0.001, s.Total(), 1e-12)
	assert.Equal(t, 0.999, p.Upper(VarID(0)))
	s.Unwind()
	assert.Equal(t, 1.0, p.Upper(VarID(0)))
	assert.Equal(t, 0.0, s.Total())
}

func TestValidateDimsRejectsMismatch(t *testing.T) {
	a := NewMatrixFromColumns(1, [][]float64{{1}})
	err := ValidateDims([]float64{1, 2}, a, []float64{0}, []float64{1}, []float64{0}, []float64{1})
	assert.Error(t, err)
}

func TestColumnView(t *testing.T) {
	p := simpleProblem()
	col := p.Column(VarID(0))
	seen := map[int]float64{}
	col.Visit(func(row int, val float64) { seen[row] = val })
	assert.Equal(t, 1.0, seen[0])

	slack := p.Column(VarID(2))
	seen2 := map[int]float64{}
	slack.Visit(func(row int, val float64) { seen2[row] = val })
	assert.Equal(t, -1.0, seen2[0])
}
