package simplex

import "github.com/pkg/errors"

// ErrCancelled names cancellation of the caller's context.Context
// (spec.md §5). Solve and SolveDual do not return it: a cancelled or
// expired context ends the solve with status AbortLimit and a nil error.
var ErrCancelled = errors.New("simplex: cancelled")

// ErrNumericalFailure names an unrecoverable LU failure (anything
// other than the recoverable lu.ErrUpdateRejected). The engine does not
// return it; LU failures reach the caller as the lu package's own
// errors, wrapped with call-site context.
var ErrNumericalFailure = errors.New("simplex: numerical failure")
