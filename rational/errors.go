// Package rational provides exact rational and arbitrary-precision
// integer arithmetic for the iterative-refinement driver. Values are
// kept in lowest terms at all times via math/big's own reduction.
package rational

import "github.com/pkg/errors"

// ErrArithDomain is returned by operations that would divide by zero
// or invert a zero rational. It is a programmer error in the solver's
// own arithmetic and the caller should treat it as unrecoverable.
var ErrArithDomain = errors.New("rational: arithmetic domain error")

// ErrInvalidInput is returned when a string does not match the
// rational grammar accepted by Parse.
var ErrInvalidInput = errors.New("rational: invalid input")
