// Package polytope builds the best-response polytopes of a bimatrix game
// and enumerates their vertices.
//
// Every polytope handled here has the form
//
//	P = { z in R^d : z >= 0, M z <= 1 }
//
// with one constraint per row of M followed by one non-negativity
// constraint per coordinate. Each constraint carries a label, the pure
// strategy it represents; a vertex is labelled by its tight constraints.
package polytope

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/timpalpant/nash/num"
)

// Polytope is { z >= 0, M z <= 1 } over the field F.
type Polytope[T any] struct {
	field num.Field[T]
	rows  [][]T
	dim   int
	// labels[c] is the label of constraint c. Constraints [0, len(rows))
	// are the rows of M, the rest are the coordinates.
	labels    []uint
	numLabels uint
}

// New creates a polytope from the rows of M. rowLabels and coordLabels
// assign a label in [0, numLabels) to each row and coordinate constraint.
func New[T any](f num.Field[T], rows [][]T, rowLabels, coordLabels []uint, numLabels uint) *Polytope[T] {
	if len(rows) != len(rowLabels) {
		panic(fmt.Sprintf("polytope: %d rows but %d row labels", len(rows), len(rowLabels)))
	}
	for _, row := range rows {
		if len(row) != len(coordLabels) {
			panic(fmt.Sprintf("polytope: row of width %d in dimension %d", len(row), len(coordLabels)))
		}
	}

	labels := make([]uint, 0, len(rowLabels)+len(coordLabels))
	labels = append(labels, rowLabels...)
	labels = append(labels, coordLabels...)
	return &Polytope[T]{
		field:     f,
		rows:      rows,
		dim:       len(coordLabels),
		labels:    labels,
		numLabels: numLabels,
	}
}

// Field returns the numeric domain of the polytope.
func (p *Polytope[T]) Field() num.Field[T] { return p.field }

// Dim returns the dimension of the ambient space.
func (p *Polytope[T]) Dim() int { return p.dim }

// NumConstraints returns the number of inequalities, rows and coordinates.
func (p *Polytope[T]) NumConstraints() int { return len(p.labels) }

// NumLabels returns the size of the label universe.
func (p *Polytope[T]) NumLabels() uint { return p.numLabels }

// Label returns the label of constraint c.
func (p *Polytope[T]) Label(c int) uint { return p.labels[c] }

// constraint returns constraint c written as a . z <= b.
func (p *Polytope[T]) constraint(c int) (a []T, b T) {
	f := p.field
	if c < len(p.rows) {
		return p.rows[c], f.One()
	}

	a = make([]T, p.dim)
	for j := range a {
		a[j] = f.Zero()
	}
	a[c-len(p.rows)] = f.FromInt(-1)
	return a, f.Zero()
}

// slack returns b - a . z for constraint c, which is non-negative
// exactly when z satisfies c.
func (p *Polytope[T]) slack(c int, z []T) T {
	f := p.field
	if c < len(p.rows) {
		return f.Sub(f.One(), num.Dot(f, p.rows[c], z))
	}
	return z[c-len(p.rows)]
}

// solveBasis returns the point at which the given constraints are all
// tight, or false if they are not linearly independent.
func (p *Polytope[T]) solveBasis(basis []int) ([]T, bool) {
	a := make([][]T, len(basis))
	b := make([]T, len(basis))
	for i, c := range basis {
		a[i], b[i] = p.constraint(c)
	}
	return num.Solve(p.field, a, b)
}

// infeasibleConstraint returns the first constraint violated by z,
// or -1 if z lies in the polytope.
func (p *Polytope[T]) infeasibleConstraint(z []T) int {
	for c := range p.labels {
		if p.field.Sign(p.slack(c, z)) < 0 {
			return c
		}
	}
	return -1
}

// newVertex describes the point z, which must lie in the polytope.
func (p *Polytope[T]) newVertex(z []T) Vertex[T] {
	v := Vertex[T]{
		Coords: z,
		Labels: bitset.New(p.numLabels),
		Origin: true,
	}
	for c := range p.labels {
		if p.field.Sign(p.slack(c, z)) == 0 {
			v.Tight = append(v.Tight, c)
			v.Labels.Set(p.labels[c])
		}
	}
	for _, x := range z {
		if p.field.Sign(x) != 0 {
			v.Origin = false
			break
		}
	}
	return v
}

// key renders the point z. Vertices are deduplicated by their tight
// constraints instead, which do not depend on rounding.
func (p *Polytope[T]) key(z []T) string {
	buf := make([]byte, 0, 8*len(z))
	for i, x := range z {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, p.field.Key(x)...)
	}
	return string(buf)
}

// BuildPair constructs the best-response polytopes of the bimatrix game
// (a, b) with m rows and n columns. Each matrix is first normalised into
// [1/2, 1], which bounds both polytopes and keeps their coordinates of
// order one without changing best responses.
//
// P1 lives in player 2's strategy space: { y >= 0, A y <= 1 }, with row i
// labelled i and coordinate j labelled m+j. P2 lives in player 1's
// strategy space: { x >= 0, B^T x <= 1 }, with coordinate i labelled i
// and row j labelled m+j.
func BuildPair[T any](f num.Field[T], a, b [][]T) (p1, p2 *Polytope[T]) {
	m := len(a)
	n := len(a[0])
	a = Normalize(f, a)
	b = Normalize(f, b)

	bt := make([][]T, n)
	for j := range bt {
		bt[j] = make([]T, m)
		for i := 0; i < m; i++ {
			bt[j][i] = b[i][j]
		}
	}

	rowLabels1 := labelRange(0, m)
	coordLabels1 := labelRange(m, n)
	p1 = New(f, a, rowLabels1, coordLabels1, uint(m+n))

	rowLabels2 := labelRange(m, n)
	coordLabels2 := labelRange(0, m)
	p2 = New(f, bt, rowLabels2, coordLabels2, uint(m+n))
	return p1, p2
}

func labelRange(start, n int) []uint {
	result := make([]uint, n)
	for i := range result {
		result[i] = uint(start + i)
	}
	return result
}

// Normalize returns a copy of a mapped affinely onto [1/2, 1]:
// x -> (x - lo + span) / 2span, where span = max(a) - min(a). A constant
// matrix maps to all ones. Payoffs of any magnitude thus reach the
// enumerator on the same scale as the tolerance of an inexact field.
func Normalize[T any](f num.Field[T], a [][]T) [][]T {
	lo, hi := a[0][0], a[0][0]
	for _, row := range a {
		for _, x := range row {
			if f.Cmp(x, lo) < 0 {
				lo = x
			}
			if f.Cmp(x, hi) > 0 {
				hi = x
			}
		}
	}

	span := f.Sub(hi, lo)
	constant := f.Sign(span) == 0
	result := make([][]T, len(a))
	for i, row := range a {
		result[i] = make([]T, len(row))
		for j, x := range row {
			if constant {
				result[i][j] = f.One()
			} else {
				result[i][j] = f.Quo(f.Add(f.Sub(x, lo), span), f.Add(span, span))
			}
		}
	}
	return result
}
