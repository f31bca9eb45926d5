package rational

import "math/big"

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// LCM returns the least common multiple of a and b, or zero if either
// is zero.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	g := GCD(a, b)
	out := new(big.Int).Div(new(big.Int).Abs(a), g)
	out.Mul(out, new(big.Int).Abs(b))
	return out
}

// SizeInBits returns the number of bits required to represent |n|,
// treating zero as size 1.
func SizeInBits(n *big.Int) int {
	if n.Sign() == 0 {
		return 1
	}
	return new(big.Int).Abs(n).BitLen()
}
