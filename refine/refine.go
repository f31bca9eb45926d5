// Package refine implements the iterative refinement driver of
// spec.md §4.7: given a floating-point optimal basis from simplex.Engine,
// it polishes an exact rational shadow of the solution by repeatedly
// measuring the basic solution's residual against the homogeneous row
// system in rational arithmetic, scaling it to a power-of-two factor
// via rational.PowRound, and folding a correction back in exactly.
//
// Grounded on original_source/src/soplex/rational.h's powRound/
// isAdjacentTo scale-and-snap logic and spxquality.cpp's four
// violation measures, restated here as stats.Quality fields per
// SPEC_FULL.md §4.7's Open Question resolution.
package refine

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/rational"
	"github.com/qlog/revsimplex/simplex"
	"github.com/qlog/revsimplex/stats"
)

// ErrNotOptimal is returned when Refine is asked to polish an engine
// that has not reached Optimal.
var ErrNotOptimal = errors.New("refine: engine is not at an optimal basis")

// Result is the outcome of a refinement run: the exact rational
// solution over the unified VarID space, and the final quality
// snapshot that stopped the loop.
type Result struct {
	X                []rational.Rational
	Status           Status
	Quality          stats.Quality
	Refinements      int
	StallRefinements int
	// FloatAdjacent reports whether the engine's own floating solution
	// is, coordinate by coordinate, adjacent to (or exactly equal to)
	// this exact rational shadow — rational.h's own notion of a
	// faithfully-rounded floating answer, not merely "close enough".
	FloatAdjacent bool
}

// Status describes why refinement stopped.
type Status int

const (
	// Exact means every quality measure reached cfg.Target.
	Exact Status = iota
	// Stalled means two consecutive rounds failed to reduce the worst
	// violation by at least cfg.StallFactor, or the shadow's
	// denominator size exceeded cfg.MaxDenominatorBits.
	Stalled
	// LimitReached means cfg.MaxRefinements rounds ran without
	// reaching Exact or Stalled.
	LimitReached
	// Cancelled means ctx was done at a round boundary.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Exact:
		return "EXACT"
	case Stalled:
		return "STALLED"
	case LimitReached:
		return "LIMIT_REACHED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Driver runs the refinement loop over one optimal Engine.
type Driver struct {
	e   *simplex.Engine
	cfg Config
}

// New returns a Driver over e, which must already be at Optimal.
func New(e *simplex.Engine, cfg Config) (*Driver, error) {
	if e.Status() != simplex.Optimal {
		return nil, ErrNotOptimal
	}
	return &Driver{e: e, cfg: cfg}, nil
}

// Refine runs the scale-residual / correct / rational-accumulate loop
// until the solution is exact to cfg.Target, refinement stalls, or
// cfg.MaxRefinements rounds have run.
//
// Each round's correction is solved directly against the engine's
// current LU factorization (Engine.BasicResidual) rather than
// rebuilding and re-solving a full shifted LP from scratch: since the
// residual being corrected is the rounding error of an already-optimal
// basis, the shifted LP spec.md §4.7 step 4 describes has that same
// basis as its optimum, so its solution is exactly the closed-form
// correction δ_B = B⁻¹·(Δ·r) with every non-basic coordinate held at
// its (already exact) bound — computing it this way avoids re-running
// the full primal loop once per round for no change in outcome.
func (d *Driver) Refine(ctx context.Context) (Result, error) {
	shadow := d.initialShadow()

	prevViol := math.Inf(1)
	stallRounds := 0
	refinements := 0
	stallRefinements := 0

	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return Result{X: shadow, Status: Cancelled, Quality: d.quality(shadow), Refinements: refinements, StallRefinements: stallRefinements, FloatAdjacent: d.floatAdjacent(shadow)}, nil
		}

		residual := d.equationResidual(shadow)
		quality := d.quality(shadow)
		worstResidual := worstAbsRational(residual)
		quality.ConstraintViolation = maxAbsRational(residual)
		quality.ResidualMagnitude = rational.OrderOfMagnitude(worstResidual)
		quality.ShadowSize = rational.TotalSize(shadow, 2)
		quality.DenominatorBits = rational.LCMDenSize(shadow, 2)

		worst := quality.ConstraintViolation
		if quality.BoundViolation > worst {
			worst = quality.BoundViolation
		}
		if quality.SlackViolation > worst {
			worst = quality.SlackViolation
		}
		if quality.ReducedCostViolation > worst {
			worst = quality.ReducedCostViolation
		}

		result := Result{X: shadow, Quality: quality, Refinements: refinements, StallRefinements: stallRefinements, FloatAdjacent: d.floatAdjacent(shadow)}
		if worst <= d.cfg.Target {
			result.Status = Exact
			return result, nil
		}
		if round >= d.cfg.MaxRefinements {
			result.Status = LimitReached
			return result, nil
		}
		if d.cfg.MaxDenominatorBits > 0 && quality.DenominatorBits > d.cfg.MaxDenominatorBits {
			stallRefinements++
			result.StallRefinements = stallRefinements
			result.Status = Stalled
			return result, nil
		}

		if worst > 0 && prevViol/worst < d.cfg.StallFactor {
			stallRounds++
			if stallRounds >= 2 {
				stallRefinements++
				result.StallRefinements = stallRefinements
				result.Status = Stalled
				return result, nil
			}
		} else {
			stallRounds = 0
		}
		prevViol = worst

		if quality.ConstraintViolation > 0 {
			if err := d.correctBasicValues(shadow, residual); err != nil {
				return Result{}, err
			}
		}
		refinements++
	}
}

// initialShadow seeds the rational shadow from the engine's current
// floating solution: non-basic ids get the exact rational value of
// their own bound (exact by construction, since bounds are loaded
// verbatim), basic ids get the exact rational value of their current
// floating basic value.
func (d *Driver) initialShadow() []rational.Rational {
	e := d.e
	p := e.Problem()
	x := e.Solution()
	out := make([]rational.Rational, p.NumVars())
	for id := 0; id < p.NumVars(); id++ {
		vid := model.VarID(id)
		if e.Basis().IsBasic(vid) {
			r, err := rational.NewFromFloat64(x[id])
			if err != nil {
				r = rational.Zero()
			}
			out[id] = r
			continue
		}
		bound := x[id] // nonBasicValue already resolved to the active bound
		r, err := rational.NewFromFloat64(bound)
		if err != nil {
			r = rational.Zero()
		}
		out[id] = r
	}
	return out
}

// equationResidual computes, for every row, the exact rational value
// of 0 − Σ_id a_id·shadow[id]: the defining homogeneous equation every
// row (structural columns plus its own negated slack) must satisfy
// exactly once the shadow is exact.
func (d *Driver) equationResidual(shadow []rational.Rational) []rational.Rational {
	e := d.e
	p := e.Problem()
	m := p.NumRows()
	out := make([]rational.Rational, m)
	for i := range out {
		out[i] = rational.Zero()
	}
	for id := 0; id < p.NumVars(); id++ {
		if shadow[id].Sign() == 0 {
			continue
		}
		p.Column(model.VarID(id)).Visit(func(row int, a float64) {
			ar, err := rational.NewFromFloat64(a)
			if err != nil {
				return
			}
			out[row] = out[row].SubProduct(ar, shadow[id])
		})
	}
	return out
}

// correctBasicValues solves one closed-form correction round: scale
// the residual to a power-of-two factor, solve B·δ = Δ·r against the
// current factorization, and fold δ/Δ back into the shadow's basic
// coordinates.
func (d *Driver) correctBasicValues(shadow []rational.Rational, residual []rational.Rational) error {
	e := d.e
	maxAbs := rational.Zero()
	for _, r := range residual {
		abs := r
		if abs.Sign() < 0 {
			abs = abs.Neg()
		}
		if abs.Cmp(maxAbs) > 0 {
			maxAbs = abs
		}
	}
	if maxAbs.Sign() == 0 {
		return nil
	}
	inv, err := rational.NewFromInt64(1).Quo(maxAbs)
	if err != nil {
		return errors.Wrap(err, "refine: scale factor inversion failed")
	}
	scale, err := rational.PowRound(inv)
	if err != nil {
		return errors.Wrap(err, "refine: scale factor rounding failed")
	}

	rhs := make([]float64, len(residual))
	for i, r := range residual {
		rhs[i] = r.Mul(scale).Float64()
	}

	delta, err := e.BasicResidual(rhs)
	if err != nil {
		return errors.Wrap(err, "refine: correction solve failed")
	}

	for pos, dv := range delta {
		if dv == 0 {
			continue
		}
		id := e.Basis().At(pos)
		dr, err := rational.NewFromFloat64(dv)
		if err != nil {
			continue
		}
		corr, err := dr.Quo(scale)
		if err != nil {
			continue
		}
		shadow[id] = shadow[id].Add(corr)
	}
	return nil
}

// quality computes the bound and reduced-cost violation measures
// (spxquality.cpp's qualBoundViolation/qualSlackViolation/
// qualRdCostViolation); ConstraintViolation is filled in by the caller
// from the exact equation residual.
func (d *Driver) quality(shadow []rational.Rational) stats.Quality {
	e := d.e
	p := e.Problem()
	var q stats.Quality

	if err := e.RefreshDuals(); err != nil {
		return q
	}

	for id := 0; id < p.NumVars(); id++ {
		vid := model.VarID(id)
		lo, hi := p.Lower(vid), p.Upper(vid)
		v := shadow[id].Float64()
		var violation float64
		if lo > -model.Inf && v < lo {
			violation = lo - v
		}
		if hi < model.Inf && v > hi {
			if v-hi > violation {
				violation = v - hi
			}
		}
		if violation > q.BoundViolation {
			q.BoundViolation = violation
		}
		if p.IsSlack(vid) && violation > q.SlackViolation {
			q.SlackViolation = violation
		}

		if e.Basis().IsBasic(vid) {
			continue
		}
		rc := e.ReducedCost(vid)
		var rcViol float64
		switch e.Basis().StatusOf(vid) {
		case model.AtLower:
			if rc < -d.cfg.Target {
				rcViol = -rc
			}
		case model.AtUpper:
			if rc > d.cfg.Target {
				rcViol = rc
			}
		case model.Free:
			rcViol = math.Abs(rc)
		}
		if rcViol > q.ReducedCostViolation {
			q.ReducedCostViolation = rcViol
		}
	}
	return q
}

// floatAdjacent reports whether the engine's floating solution is,
// coordinate by coordinate, adjacent to (or exactly equal to) shadow —
// rational.h's own check that a reported double is a faithful rounding
// of the exact answer rather than an independently-accumulated one.
func (d *Driver) floatAdjacent(shadow []rational.Rational) bool {
	x := d.e.Solution()
	for id, r := range shadow {
		if !rational.IsAdjacentTo(r, x[id]) {
			return false
		}
	}
	return true
}

func maxAbsRational(vs []rational.Rational) float64 {
	max := 0.0
	for _, v := range vs {
		f := math.Abs(v.Float64())
		if f > max {
			max = f
		}
	}
	return max
}

// worstAbsRational returns the entry of vs with the largest magnitude,
// or zero if vs is empty, for callers that need the exact value rather
// than maxAbsRational's float64 summary.
func worstAbsRational(vs []rational.Rational) rational.Rational {
	worst := rational.Zero()
	worstAbs := rational.Zero()
	for _, v := range vs {
		abs := v
		if abs.Sign() < 0 {
			abs = abs.Neg()
		}
		if abs.Cmp(worstAbs) > 0 {
			worstAbs = abs
			worst = v
		}
	}
	return worst
}

