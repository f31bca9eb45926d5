package model

import "github.com/pkg/errors"

// ErrInvalidInput is returned when a Problem's dimensions are
// inconsistent (column/row/bound slice length mismatches).
var ErrInvalidInput = errors.New("model: invalid input")

// ValidateDims checks that c, lo, hi, lhs, rhs agree with a's shape,
// wrapping ErrInvalidInput with the offending dimension on mismatch.
func ValidateDims(c []float64, a *Matrix, lhs, rhs, lo, hi []float64) error {
	m, n := a.Dims()
	if len(c) != n {
		return errors.Wrapf(ErrInvalidInput, "objective length %d != %d columns", len(c), n)
	}
	if len(lhs) != m || len(rhs) != m {
		return errors.Wrapf(ErrInvalidInput, "row bound length (%d,%d) != %d rows", len(lhs), len(rhs), m)
	}
	if len(lo) != n || len(hi) != n {
		return errors.Wrapf(ErrInvalidInput, "column bound length (%d,%d) != %d columns", len(lo), len(hi), n)
	}
	for i := 0; i < m; i++ {
		if lhs[i] > rhs[i] {
			return errors.Wrapf(ErrInvalidInput, "row %d: lhs %v > rhs %v", i, lhs[i], rhs[i])
		}
	}
	for j := 0; j < n; j++ {
		if lo[j] > hi[j] {
			return errors.Wrapf(ErrInvalidInput, "column %d: lo %v > hi %v", j, lo[j], hi[j])
		}
	}
	return nil
}
