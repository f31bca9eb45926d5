package rational

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalExponent(t *testing.T) {
	r, err := Parse(".5e-2")
	require.NoError(t, err)
	want, err := NewFromFrac(1, 200)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(want))
}

func TestParseFraction(t *testing.T) {
	r, err := Parse("1/3")
	require.NoError(t, err)
	want, err := NewFromFrac(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Cmp(want))
}

func TestParseInfinity(t *testing.T) {
	r, err := Parse("-inf")
	require.NoError(t, err)
	assert.True(t, r.Sign() < 0)

	bound, err := NewFromFloat64(-1e200)
	require.NoError(t, err)
	assert.True(t, r.Cmp(bound) > 0)
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "3", "-7", "1/3", "22/7", "-5/9"} {
		r, err := Parse(s)
		require.NoError(t, err)
		r2, err := Parse(r.String())
		require.NoError(t, err)
		assert.Equal(t, 0, r.Cmp(r2))
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "abc", "1/0", "1..2"} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestInvZero(t *testing.T) {
	_, err := Zero().Inv()
	assert.ErrorIs(t, err, ErrArithDomain)
}

func TestQuoByZero(t *testing.T) {
	one := NewFromInt64(1)
	_, err := one.Quo(Zero())
	assert.ErrorIs(t, err, ErrArithDomain)
}

func TestIsAdjacentToExactDouble(t *testing.T) {
	half, err := NewFromFloat64(0.5)
	require.NoError(t, err)
	assert.True(t, IsAdjacentTo(half, 0.5))
	assert.False(t, IsAdjacentTo(half, 0.25))
}

func TestIsAdjacentToBracket(t *testing.T) {
	third, err := NewFromFrac(1, 3)
	require.NoError(t, err)
	x := third.Float64()
	// x, the nearest double to 1/3, is itself adjacent, as is whichever
	// of its neighbors lies on the other side of the exact value...
	assert.True(t, IsAdjacentTo(third, x))
	up := math.Nextafter(x, math.Inf(1))
	down := math.Nextafter(x, math.Inf(-1))
	// ...exactly one of the two neighbors brackets 1/3 together with x.
	assert.True(t, IsAdjacentTo(third, up) != IsAdjacentTo(third, down))
}

func TestPowRoundGreaterThanOne(t *testing.T) {
	r, err := NewFromFrac(10, 1)
	require.NoError(t, err)
	p, err := PowRound(r)
	require.NoError(t, err)
	// 2^3 = 8 < 10 <= 16 = 2^4
	want := NewFromInt64(16)
	assert.Equal(t, 0, p.Cmp(want))
}

func TestPowRoundFraction(t *testing.T) {
	r, err := NewFromFrac(1, 5) // 0.2 -> smallest power of two >= 0.2 is 0.25
	require.NoError(t, err)
	p, err := PowRound(r)
	require.NoError(t, err)
	want, err := NewFromFrac(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(want))
}

func TestPowRoundRejectsNonPositive(t *testing.T) {
	_, err := PowRound(Zero())
	assert.ErrorIs(t, err, ErrArithDomain)
}

func TestOrderOfMagnitude(t *testing.T) {
	r, err := NewFromFrac(1000, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, OrderOfMagnitude(r))
	assert.Equal(t, 0, OrderOfMagnitude(Zero()))
}

func TestSizeInBaseZero(t *testing.T) {
	assert.Equal(t, 3, SizeInBase(Zero(), 10))
}

func TestAddProductSubProduct(t *testing.T) {
	a := NewFromInt64(2)
	b := NewFromInt64(3)
	base := NewFromInt64(1)
	sum := base.AddProduct(a, b)
	assert.Equal(t, 0, sum.Cmp(NewFromInt64(7)))
	back := sum.SubProduct(a, b)
	assert.Equal(t, 0, back.Cmp(base))
}

func TestAddQuotientDivZero(t *testing.T) {
	_, err := Zero().AddQuotient(NewFromInt64(1), Zero())
	assert.ErrorIs(t, err, ErrArithDomain)
}
