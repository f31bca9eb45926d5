package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDenseScaledAddSparse(t *testing.T) {
	d := NewDense(4)
	d.Set(0, 1)
	s := NewSparse(4)
	s.Append(1, 2)
	s.Append(3, -1)
	d.ScaledAddSparse(2, s)
	assert.Equal(t, 1.0, d.At(0))
	assert.Equal(t, 4.0, d.At(1))
	assert.Equal(t, 0.0, d.At(2))
	assert.Equal(t, -2.0, d.At(3))
}

func TestDenseDotSparse(t *testing.T) {
	d := NewDense(3)
	d.Set(0, 2)
	d.Set(1, 3)
	d.Set(2, 5)
	s := NewSparse(3)
	s.Append(0, 1)
	s.Append(2, -1)
	assert.Equal(t, -3.0, d.DotSparse(s))
}

func TestUpdateSetValueTracksActive(t *testing.T) {
	u := NewUpdate(5)
	u.SetValue(2, 3.5)
	u.SetValue(4, -1)
	assert.Equal(t, 2, u.Size())
	assert.Equal(t, 3.5, u.At(2))

	seen := map[int]bool{}
	for k := 0; k < u.Size(); k++ {
		seen[u.Index(k)] = true
	}
	assert.True(t, seen[2])
	assert.True(t, seen[4])
}

func TestUpdateClearNum(t *testing.T) {
	u := NewUpdate(3)
	u.SetValue(0, 1)
	u.SetValue(1, 2)
	u.SetValue(2, 3)
	require3 := u.Size()
	assert.Equal(t, 3, require3)

	// remove the middle one
	for k := 0; k < u.Size(); k++ {
		if u.Index(k) == 1 {
			u.ClearNum(k)
			break
		}
	}
	assert.Equal(t, 2, u.Size())
	assert.Equal(t, 0.0, u.At(1))
}

func TestUpdateSetupDropsStaleIndices(t *testing.T) {
	u := NewUpdate(3)
	u.SetValue(0, 1)
	u.SetValue(1, 2)
	// Writing zero over an active index does not shrink the list...
	u.SetValue(1, 1)
	u.vals[1] = 0 // simulate an in-flight write landing on zero directly
	assert.Equal(t, 2, u.Size())
	// ...until Setup rebuilds it from the dense values.
	u.Setup()
	assert.Equal(t, 1, u.Size())
	assert.Equal(t, 0, u.Index(0))
}

func TestUpdateLoadDense(t *testing.T) {
	d := NewDense(4)
	d.Set(0, 1)
	d.Set(2, -2)
	u := NewUpdate(4)
	u.LoadDense(d)
	assert.Equal(t, 2, u.Size())
}
