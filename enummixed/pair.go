package enummixed

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/num"
	"github.com/timpalpant/nash/polytope"
)

// Candidate is a complementary pair of vertices: X is a vertex of the
// polytope over player 1's strategies and Y a vertex of the polytope over
// player 2's strategies.
type Candidate struct {
	X, Y int
}

// Pair returns every complementary pair of non-origin vertices, where
// x ranges over px (player 1's mixed strategies) and y over py (player
// 2's). A pair is complementary when between them the vertices carry
// every label: each pure strategy is either unplayed or a best response.
//
// Before testing the union, y is required to contain every label missing
// from x, which rejects most pairs with a single superset test.
func Pair[T any](px, py *polytope.Graph[T]) []Candidate {
	numLabels := px.Polytope.NumLabels()
	all := bitset.New(numLabels)
	for l := uint(0); l < numLabels; l++ {
		all.Set(l)
	}

	var result []Candidate
	for _, x := range px.Vertices {
		if x.Origin {
			continue
		}

		missing := all.Difference(x.Labels)
		for _, y := range py.Vertices {
			if y.Origin || !y.Labels.IsSuperSet(missing) {
				continue
			}
			if x.Labels.Union(y.Labels).Count() == numLabels {
				result = append(result, Candidate{X: x.ID, Y: y.ID})
			}
		}
	}

	return result
}

// toProfile normalises the vertices of c into a mixed-strategy profile of
// the bimatrix game.
func toProfile[T any](f num.Field[T], c Candidate, px, py *polytope.Graph[T]) nash.Profile[T] {
	return nash.Profile[T]{
		normalize(f, px.Vertices[c.X].Coords),
		normalize(f, py.Vertices[c.Y].Coords),
	}
}

// normalize scales z to sum to one. Coordinates within tolerance of zero
// are treated as exactly zero so that an inexact field never reports a
// negative weight.
func normalize[T any](f num.Field[T], z []T) []T {
	result := make([]T, len(z))
	for i, x := range z {
		if f.Sign(x) > 0 {
			result[i] = x
		} else {
			result[i] = f.Zero()
		}
	}

	total := num.Sum(f, result)
	for i, x := range result {
		result[i] = f.Quo(x, total)
	}
	return result
}

// validate checks that every strategy played with positive probability in
// p is a best response in the bimatrix game (a, b). In an exact field a
// failure means the enumerator or pairer is broken; in an inexact one it
// means the tolerance could not separate two payoffs.
func validate[T any](f num.Field[T], a, b [][]T, p nash.Profile[T]) error {
	m, n := len(a), len(a[0])

	rowValues := make([]T, m)
	for i := 0; i < m; i++ {
		rowValues[i] = num.Dot(f, a[i], p[1])
	}
	colValues := make([]T, n)
	for j := 0; j < n; j++ {
		v := f.Zero()
		for i := 0; i < m; i++ {
			v = f.Add(v, f.Mul(b[i][j], p[0][i]))
		}
		colValues[j] = v
	}

	if err := checkBestResponses(f, rowValues, p[0], 1); err != nil {
		return err
	}
	return checkBestResponses(f, colValues, p[1], 2)
}

func checkBestResponses[T any](f num.Field[T], values, weights []T, player int) error {
	best := values[0]
	for _, v := range values[1:] {
		if f.Cmp(v, best) > 0 {
			best = v
		}
	}

	for s, w := range weights {
		if f.Sign(w) > 0 && f.Cmp(values[s], best) != 0 {
			return errors.Errorf("player %d strategy %d has weight %v but earns %v < %v",
				player, s+1, f.String(w), f.String(values[s]), f.String(best))
		}
	}
	return nil
}
