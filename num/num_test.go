package num

import (
	"math"
	"math/big"
	"testing"
)

func rats(xs ...int64) []*big.Rat {
	result := make([]*big.Rat, len(xs))
	for i, x := range xs {
		result[i] = big.NewRat(x, 1)
	}
	return result
}

func TestSolveRational(t *testing.T) {
	f := Rational{}
	a := [][]*big.Rat{
		rats(3, 0),
		rats(2, 3),
	}
	x, ok := Solve[*big.Rat](f, a, rats(1, 1))
	if !ok {
		t.Fatal("expected nonsingular system")
	}

	expected := []*big.Rat{big.NewRat(1, 3), big.NewRat(1, 9)}
	for i := range expected {
		if x[i].Cmp(expected[i]) != 0 {
			t.Errorf("x[%d]: expected %v, got %v", i, expected[i], x[i])
		}
	}
}

func TestSolveSingular(t *testing.T) {
	f := Rational{}
	a := [][]*big.Rat{
		rats(1, 2),
		rats(2, 4),
	}
	if _, ok := Solve[*big.Rat](f, a, rats(1, 1)); ok {
		t.Error("expected singular system to be rejected")
	}
}

func TestSolveDoesNotModifyInput(t *testing.T) {
	f := NewFloat()
	a := [][]float64{{0, 2}, {4, 1}}
	b := []float64{2, 9}
	x, ok := Solve[float64](f, a, b)
	if !ok {
		t.Fatal("expected nonsingular system")
	}
	if math.Abs(x[0]-2) > 1e-12 || math.Abs(x[1]-1) > 1e-12 {
		t.Errorf("expected [2 1], got %v", x)
	}
	if a[0][0] != 0 || a[1][0] != 4 || b[0] != 2 {
		t.Errorf("input was modified: a=%v b=%v", a, b)
	}
}

func TestRank(t *testing.T) {
	f := Rational{}
	testCases := []struct {
		rows     [][]*big.Rat
		expected int
	}{
		{nil, 0},
		{[][]*big.Rat{rats(0, 0, 0)}, 0},
		{[][]*big.Rat{rats(1, 2, 3), rats(2, 4, 6)}, 1},
		{[][]*big.Rat{rats(1, 0, 0), rats(0, 1, 0), rats(1, 1, 0)}, 2},
		{[][]*big.Rat{rats(1, 0, 0), rats(0, 1, 0), rats(0, 0, 1)}, 3},
	}

	for _, tc := range testCases {
		if r := Rank[*big.Rat](f, tc.rows); r != tc.expected {
			t.Errorf("rank of %v: expected %d, got %d", tc.rows, tc.expected, r)
		}
	}
}

func TestFloatTolerance(t *testing.T) {
	f := NewFloat()
	if f.Sign(1e-12) != 0 {
		t.Error("expected value below tolerance to be zero")
	}
	if f.Cmp(0.3, 0.1+0.2) != 0 {
		t.Error("expected 0.3 == 0.1+0.2 within tolerance")
	}
	if f.Key(0.1+0.2) != f.Key(0.3) {
		t.Errorf("expected equal keys, got %q and %q", f.Key(0.1+0.2), f.Key(0.3))
	}
}

func TestRationalDoesNotAlias(t *testing.T) {
	f := Rational{}
	a := big.NewRat(1, 2)
	b := f.Add(a, a)
	if a.Cmp(big.NewRat(1, 2)) != 0 {
		t.Errorf("argument modified: %v", a)
	}
	if b.Cmp(big.NewRat(1, 1)) != 0 {
		t.Errorf("expected 1, got %v", b)
	}
}
