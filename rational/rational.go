package rational

import (
	"math"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// Rational is an exact p/q value, q > 0, gcd(p,q) = 1, backed by
// math/big.Rat. The reduction invariant is maintained by big.Rat
// itself on every mutation, so callers never need to normalize.
type Rational struct {
	v big.Rat
}

// infMagnitude is the finite stand-in for ±infinity used by Parse,
// matching spec.md's "inf"/"-inf" → ±10^100 grammar rule.
var infMagnitude = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(100), nil))

// Zero returns the rational 0/1.
func Zero() Rational { return Rational{} }

// NewFromInt64 returns the rational n/1.
func NewFromInt64(n int64) Rational {
	var r Rational
	r.v.SetInt64(n)
	return r
}

// NewFromFrac returns the rational p/q, reduced to lowest terms.
// Fails with ErrArithDomain if q == 0.
func NewFromFrac(p, q int64) (Rational, error) {
	if q == 0 {
		return Rational{}, errors.Wrap(ErrArithDomain, "rational: zero denominator")
	}
	var r Rational
	r.v.SetFrac(big.NewInt(p), big.NewInt(q))
	return r, nil
}

// NewFromFloat64 returns the exact rational equal to f (the value f
// actually holds as an IEEE-754 double, not a decimal approximation).
func NewFromFloat64(f float64) (Rational, error) {
	var r Rational
	if r.v.SetFloat64(f) == nil {
		return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: %v is not finite", f)
	}
	return r, nil
}

// IsPosInf reports whether r is the +inf sentinel 10^100.
func (r Rational) IsPosInf() bool { return r.v.Cmp(infMagnitude) >= 0 }

// IsNegInf reports whether r is the -inf sentinel -10^100.
func (r Rational) IsNegInf() bool {
	neg := new(big.Rat).Neg(infMagnitude)
	return r.v.Cmp(neg) <= 0
}

// Parse implements the grammar from spec.md §6:
//
//	rat    := "inf" | "-inf" | signed
//	signed := ['+'|'-'] mantissa [exp]
//	mantissa := digits | digits '.' digits | '.' digits | digits '.'
//	exp    := ('e'|'E') ['+'|'-'] digits
//
// A string lacking '.', 'e', 'E' is parsed as p/q if it contains '/',
// otherwise as a plain integer.
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, errors.Wrap(ErrInvalidInput, "rational: empty string")
	}

	switch s {
	case "inf":
		return Rational{v: *infMagnitude}, nil
	case "-inf":
		return Rational{v: *new(big.Rat).Neg(infMagnitude)}, nil
	}

	if !strings.ContainsAny(s, ".eE") {
		if strings.Contains(s, "/") {
			return parseFraction(s)
		}
		return parseInteger(s)
	}
	return parseDecimal(s)
}

func parseFraction(s string) (Rational, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: malformed fraction %q", s)
	}
	num, ok1 := new(big.Int).SetString(stripLeadingZeros(parts[0]), 10)
	den, ok2 := new(big.Int).SetString(stripLeadingZeros(parts[1]), 10)
	if !ok1 || !ok2 {
		return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: malformed fraction %q", s)
	}
	if den.Sign() == 0 {
		return Rational{}, errors.Wrapf(ErrArithDomain, "rational: zero denominator in %q", s)
	}
	var r Rational
	r.v.SetFrac(num, den)
	return r, nil
}

func parseInteger(s string) (Rational, error) {
	n, ok := new(big.Int).SetString(stripLeadingZeros(s), 10)
	if !ok {
		return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: malformed integer %q", s)
	}
	var r Rational
	r.v.SetInt(n)
	return r, nil
}

func parseDecimal(s string) (Rational, error) {
	sign := ""
	rest := s
	if strings.HasPrefix(rest, "+") || strings.HasPrefix(rest, "-") {
		if rest[0] == '-' {
			sign = "-"
		}
		rest = rest[1:]
	}

	mantissa := rest
	exp := int64(0)
	if idx := strings.IndexAny(rest, "eE"); idx >= 0 {
		mantissa = rest[:idx]
		expStr := rest[idx+1:]
		e, ok := new(big.Int).SetString(expStr, 10)
		if !ok {
			return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: malformed exponent in %q", s)
		}
		exp = e.Int64()
	}

	intPart := mantissa
	fracPart := ""
	if idx := strings.IndexByte(mantissa, '.'); idx >= 0 {
		intPart = mantissa[:idx]
		fracPart = mantissa[idx+1:]
	}
	if intPart == "" && fracPart == "" {
		return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: malformed mantissa in %q", s)
	}
	if intPart == "" {
		intPart = "0"
	}

	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	num, ok := new(big.Int).SetString(stripLeadingZeros(sign+digits), 10)
	if !ok {
		return Rational{}, errors.Wrapf(ErrInvalidInput, "rational: malformed digits in %q", s)
	}

	// value = num * 10^(exp - len(fracPart))
	scale := exp - int64(len(fracPart))
	ten := big.NewInt(10)
	var r Rational
	if scale >= 0 {
		mul := new(big.Int).Exp(ten, big.NewInt(scale), nil)
		r.v.SetInt(new(big.Int).Mul(num, mul))
	} else {
		div := new(big.Int).Exp(ten, big.NewInt(-scale), nil)
		r.v.SetFrac(num, div)
	}
	return r, nil
}

// stripLeadingZeros removes redundant leading zeros from the digit
// run of s while preserving a leading sign, so canonical fraction
// output never carries them (spec.md §6).
func stripLeadingZeros(s string) string {
	sign := ""
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign = s[:1]
		s = s[1:]
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return sign + s
}

// String renders r in canonical "p/q" form (or plain "p" when q == 1).
func (r Rational) String() string {
	if r.v.IsInt() {
		return r.v.Num().String()
	}
	return r.v.RatString()
}

// Float64 returns the nearest double to r.
func (r Rational) Float64() float64 {
	f, _ := r.v.Float64()
	return f
}

// Num and Den expose the reduced numerator/denominator.
func (r Rational) Num() *big.Int { return new(big.Int).Set(r.v.Num()) }
func (r Rational) Den() *big.Int { return new(big.Int).Set(r.v.Denom()) }

// Sign returns -1, 0, or 1.
func (r Rational) Sign() int { return r.v.Sign() }

// Cmp compares r to other.
func (r Rational) Cmp(other Rational) int { return r.v.Cmp(&other.v) }

// Add returns r + other.
func (r Rational) Add(other Rational) Rational {
	var out Rational
	out.v.Add(&r.v, &other.v)
	return out
}

// Sub returns r - other.
func (r Rational) Sub(other Rational) Rational {
	var out Rational
	out.v.Sub(&r.v, &other.v)
	return out
}

// Mul returns r * other.
func (r Rational) Mul(other Rational) Rational {
	var out Rational
	out.v.Mul(&r.v, &other.v)
	return out
}

// Quo returns r / other. Fails with ErrArithDomain if other is zero.
func (r Rational) Quo(other Rational) (Rational, error) {
	if other.Sign() == 0 {
		return Rational{}, errors.Wrap(ErrArithDomain, "rational: division by zero")
	}
	var out Rational
	out.v.Quo(&r.v, &other.v)
	return out, nil
}

// Inv returns 1/r (numerator and denominator swapped). Fails with
// ErrArithDomain if r is zero.
func (r Rational) Inv() (Rational, error) {
	if r.Sign() == 0 {
		return Rational{}, errors.Wrap(ErrArithDomain, "rational: inversion of zero")
	}
	var out Rational
	out.v.Inv(&r.v)
	return out, nil
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	var out Rational
	out.v.Neg(&r.v)
	return out
}

// AddProduct returns r + a*b without an intermediate rounding step;
// r itself is left unchanged (there is no rounding in exact arithmetic,
// but this mirrors the fused accumulation API spec.md §4.1 asks for, so
// call sites read the same way they would over doubles).
func (r Rational) AddProduct(a, b Rational) Rational {
	var prod big.Rat
	prod.Mul(&a.v, &b.v)
	var out Rational
	out.v.Add(&r.v, &prod)
	return out
}

// SubProduct returns r - a*b; r itself is left unchanged.
func (r Rational) SubProduct(a, b Rational) Rational {
	var prod big.Rat
	prod.Mul(&a.v, &b.v)
	var out Rational
	out.v.Sub(&r.v, &prod)
	return out
}

// AddQuotient returns r + a/b; r itself is left unchanged. Fails with
// ErrArithDomain if b == 0.
func (r Rational) AddQuotient(a, b Rational) (Rational, error) {
	if b.Sign() == 0 {
		return Rational{}, errors.Wrap(ErrArithDomain, "rational: division by zero in add-quotient")
	}
	var quot big.Rat
	quot.Quo(&a.v, &b.v)
	var out Rational
	out.v.Add(&r.v, &quot)
	return out, nil
}

// SubQuotient returns r - a/b; r itself is left unchanged. Fails with
// ErrArithDomain if b == 0.
func (r Rational) SubQuotient(a, b Rational) (Rational, error) {
	if b.Sign() == 0 {
		return Rational{}, errors.Wrap(ErrArithDomain, "rational: division by zero in sub-quotient")
	}
	var quot big.Rat
	quot.Quo(&a.v, &b.v)
	var out Rational
	out.v.Sub(&r.v, &quot)
	return out, nil
}

// IsAdjacentTo reports whether d == r exactly, or d is one of the two
// doubles bracketing r (spec.md §4.1). x is the nearest double to r;
// if converting x back exactly reproduces r, r is itself representable
// and only x qualifies. Otherwise the bracket is (x, nextUp(x)) when
// x < r, or (nextDown(x), x) when x > r.
func IsAdjacentTo(r Rational, d float64) bool {
	x := r.Float64()
	xExact, err := NewFromFloat64(x)
	if err == nil && xExact.Cmp(r) == 0 {
		return d == x
	}
	var a, b float64
	if cmpFloatRational(x, r) < 0 {
		a, b = x, math.Nextafter(x, math.Inf(1))
	} else {
		a, b = math.Nextafter(x, math.Inf(-1)), x
	}
	return d == a || d == b
}

func cmpFloatRational(x float64, r Rational) int {
	xr, err := NewFromFloat64(x)
	if err != nil {
		return 0
	}
	return xr.Cmp(r)
}

// PowRound replaces r (r > 0) by the smallest power of two ≥ r, i.e.
// 2^⌈log2 r⌉, computed exactly via repeated doubling/halving on the
// big.Rat rather than through floating-point log2 (which would defeat
// the purpose of an exact refinement scale factor).
func PowRound(r Rational) (Rational, error) {
	if r.Sign() <= 0 {
		return Rational{}, errors.Wrap(ErrArithDomain, "rational: pow_round requires r > 0")
	}
	one := NewFromInt64(1)
	two := NewFromInt64(2)
	if r.Cmp(one) == 0 {
		return one, nil
	}
	p := one
	if r.Cmp(one) > 0 {
		for p.Cmp(r) < 0 {
			p = p.Mul(two)
		}
		return p, nil
	}
	// 0 < r < 1: find the smallest power of two >= r by halving from 1.
	for {
		half, err := p.Quo(two)
		if err != nil {
			return Rational{}, err
		}
		if half.Cmp(r) < 0 {
			return p, nil
		}
		p = half
	}
}

// OrderOfMagnitude returns ⌊log10|num|⌋ − ⌊log10|den|⌋, or 0 if num is
// zero or the two magnitudes tie.
func OrderOfMagnitude(r Rational) int {
	if r.Sign() == 0 {
		return 0
	}
	numDigits := digitCount10(r.Num())
	denDigits := digitCount10(r.Den())
	if numDigits == denDigits {
		return 0
	}
	return (numDigits - 1) - (denDigits - 1)
}

func digitCount10(n *big.Int) int {
	abs := new(big.Int).Abs(n)
	if abs.Sign() == 0 {
		return 1
	}
	return len(abs.Text(10))
}

// SizeInBase returns the digit count in base b of |num|+|den|. Zero is
// defined to have size 3, matching spec.md §4.1.
func SizeInBase(r Rational, base int) int {
	if r.Sign() == 0 {
		return 3
	}
	sum := new(big.Int).Add(new(big.Int).Abs(r.Num()), new(big.Int).Abs(r.Den()))
	if sum.Sign() == 0 {
		return 3
	}
	return len(sum.Text(base))
}

// TotalSize returns the sum of SizeInBase over vec.
func TotalSize(vec []Rational, base int) int {
	total := 0
	for _, r := range vec {
		total += SizeInBase(r, base)
	}
	return total
}

// LCMDenSize returns the base-b digit size of the LCM of all
// denominators in vec.
func LCMDenSize(vec []Rational, base int) int {
	lcm := big.NewInt(1)
	for _, r := range vec {
		d := r.Den()
		if d.Sign() == 0 {
			continue
		}
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Div(d, g))
	}
	return len(new(big.Int).Abs(lcm).Text(base))
}

// MaxDenSize returns the largest base-b digit size among vec's
// denominators.
func MaxDenSize(vec []Rational, base int) int {
	max := 0
	for _, r := range vec {
		if s := len(new(big.Int).Abs(r.Den()).Text(base)); s > max {
			max = s
		}
	}
	return max
}
