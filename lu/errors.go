// Package lu maintains the factorized inverse of the current basis
// matrix: an exact-pivot dense factorization recomputed from scratch
// at refactorization points, kept current between those points by
// cheap rank-1 eta updates (the product-form-of-the-inverse technique
// spec.md §4.3 calls "Forrest–Tomlin-style").
package lu

import "github.com/pkg/errors"

// ErrSingular is returned by Factor when no pivot of magnitude >= the
// stability threshold can be found.
var ErrSingular = errors.New("lu: basis matrix is singular")

// ErrUpdateRejected is returned by Update when replacing a column
// would make the basis numerically unacceptable (the eta's pivot
// entry is too small relative to the stability threshold). The
// caller is expected to refactorize from scratch and retry.
var ErrUpdateRejected = errors.New("lu: rank-1 update rejected")
