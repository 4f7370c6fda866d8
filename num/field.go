// Package num defines the numeric domains that equilibrium computations
// are carried out in. Enumeration, pairing and reduction are written once
// against Field and instantiated with either exact rationals or float64.
package num

import (
	"math"
	"math/big"
	"strconv"
)

// Field is the set of arithmetic capabilities the solvers need from a
// numeric domain. Cmp and Sign are tolerance-aware for inexact domains.
type Field[T any] interface {
	Zero() T
	One() T
	FromInt(x int64) T
	FromRat(x *big.Rat) T

	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Quo(a, b T) T
	Neg(a T) T

	// Cmp returns -1, 0 or +1 as a is less than, equal to, or greater than b.
	Cmp(a, b T) int
	// Sign returns -1, 0 or +1 as a is negative, zero or positive.
	Sign(a T) int

	// IsExact reports whether arithmetic in this domain is exact.
	IsExact() bool
	Float64(a T) float64
	// Key returns a canonical representation of a, such that values that
	// compare equal have equal keys.
	Key(a T) string
	String(a T) string
}

// Rational is the exact domain over *big.Rat. Operations never modify
// their arguments.
type Rational struct{}

var _ Field[*big.Rat] = Rational{}

func (Rational) Zero() *big.Rat { return new(big.Rat) }
func (Rational) One() *big.Rat { return big.NewRat(1, 1) }
func (Rational) FromInt(x int64) *big.Rat { return big.NewRat(x, 1) }
func (Rational) FromRat(x *big.Rat) *big.Rat { return new(big.Rat).Set(x) }

func (Rational) Add(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }
func (Rational) Sub(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }
func (Rational) Mul(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }
func (Rational) Neg(a *big.Rat) *big.Rat { return new(big.Rat).Neg(a) }

func (Rational) Quo(a, b *big.Rat) *big.Rat {
	if b.Sign() == 0 {
		panic("num: division by zero")
	}
	return new(big.Rat).Quo(a, b)
}

func (Rational) Cmp(a, b *big.Rat) int { return a.Cmp(b) }
func (Rational) Sign(a *big.Rat) int { return a.Sign() }
func (Rational) IsExact() bool { return true }

func (Rational) Float64(a *big.Rat) float64 {
	f, _ := a.Float64()
	return f
}

func (Rational) Key(a *big.Rat) string { return a.RatString() }
func (Rational) String(a *big.Rat) string { return a.RatString() }

// DefaultEpsilon is the tolerance used by NewFloat.
const DefaultEpsilon = 1e-9

// Float is the floating-point domain. Values within Epsilon of each
// other compare equal.
type Float struct {
	Epsilon float64
}

var _ Field[float64] = Float{}

// NewFloat returns a Float domain with the default tolerance.
func NewFloat() Float {
	return Float{Epsilon: DefaultEpsilon}
}

func (Float) Zero() float64 { return 0 }
func (Float) One() float64 { return 1 }
func (Float) FromInt(x int64) float64 { return float64(x) }
func (Float) Add(a, b float64) float64 { return a + b }
func (Float) Sub(a, b float64) float64 { return a - b }
func (Float) Mul(a, b float64) float64 { return a * b }
func (Float) Neg(a float64) float64 { return -a }
func (Float) IsExact() bool { return false }
func (Float) Float64(a float64) float64 { return a }
func (Float) String(a float64) string { return strconv.FormatFloat(a, 'g', -1, 64) }

func (Float) FromRat(x *big.Rat) float64 {
	f, _ := x.Float64()
	return f
}

func (Float) Quo(a, b float64) float64 {
	if b == 0 {
		panic("num: division by zero")
	}
	return a / b
}

func (f Float) Sign(a float64) int {
	switch {
	case a > f.Epsilon:
		return 1
	case a < -f.Epsilon:
		return -1
	default:
		return 0
	}
}

func (f Float) Cmp(a, b float64) int {
	return f.Sign(a - b)
}

// Key rounds a to a multiple of Epsilon. Values straddling a rounding
// boundary get different keys, so Key is for display and not a tolerant
// equality.
func (f Float) Key(a float64) string {
	if f.Sign(a) == 0 {
		return "0"
	}
	r := math.Round(a/f.Epsilon) * f.Epsilon
	return strconv.FormatFloat(r, 'g', 12, 64)
}

// Sum returns the sum of xs in the field f.
func Sum[T any](f Field[T], xs []T) T {
	total := f.Zero()
	for _, x := range xs {
		total = f.Add(total, x)
	}
	return total
}

// Dot returns the inner product of a and b, which must have equal length.
func Dot[T any](f Field[T], a, b []T) T {
	total := f.Zero()
	for i := range a {
		total = f.Add(total, f.Mul(a[i], b[i]))
	}
	return total
}

// Abs returns |a|.
func Abs[T any](f Field[T], a T) T {
	if f.Sign(a) < 0 {
		return f.Neg(a)
	}
	return a
}
