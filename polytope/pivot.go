package polytope

import (
	"sort"
	"strconv"
	"strings"

	"github.com/timpalpant/nash/num"
)

// PivotEngine enumerates vertices by breadth-first search over the graph
// of feasible bases, starting from the basis of non-negativity
// constraints at the origin. Two bases are neighbors when they differ in
// one constraint; degenerate pivots are followed, so every feasible basis
// and therefore every vertex is reached regardless of degeneracy.
type PivotEngine[T any] struct{}

type pivotNode[T any] struct {
	basis []int
	z     []T
}

// Enumerate implements Enumerator.
func (PivotEngine[T]) Enumerate(p *Polytope[T], visit func(Vertex[T]) error) error {
	f := p.field
	start := make([]int, p.dim)
	origin := make([]T, p.dim)
	for j := range start {
		start[j] = len(p.rows) + j
		origin[j] = f.Zero()
	}

	seenBases := map[string]struct{}{indexKey(start): {}}
	seenVertices := make(map[string]struct{})
	queue := []pivotNode[T]{{basis: start, z: origin}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		v := p.newVertex(cur.z)
		vk := indexKey(v.Tight)
		if _, ok := seenVertices[vk]; !ok {
			seenVertices[vk] = struct{}{}
			if err := visit(v); err != nil {
				return err
			}
		}

		for _, next := range p.neighborBases(cur.basis, cur.z) {
			bk := indexKey(next)
			if _, ok := seenBases[bk]; ok {
				continue
			}
			seenBases[bk] = struct{}{}

			z, ok := p.solveBasis(next)
			if !ok {
				continue
			}
			if c := p.infeasibleConstraint(z); c >= 0 {
				if f.IsExact() {
					panic("exact pivot left the polytope")
				}
				return &NumericInstabilityError{
					Basis:      next,
					Constraint: c,
					Slack:      f.Float64(p.slack(c, z)),
				}
			}
			queue = append(queue, pivotNode[T]{basis: next, z: z})
		}
	}

	return nil
}

// neighborBases returns every basis obtained from basis by exchanging one
// constraint such that the new basic solution is feasible.
//
// Dropping constraint r moves z along the edge direction on which the
// remaining constraints stay tight. Constraints that block that direction
// first (minimum ratio, with ties) may enter. Constraints already tight at
// z that the direction moves away from may also enter; that exchange is a
// degenerate pivot which keeps z in place.
func (p *Polytope[T]) neighborBases(basis []int, z []T) [][]int {
	f := p.field
	inBasis := make(map[int]bool, len(basis))
	a := make([][]T, len(basis))
	for i, c := range basis {
		inBasis[c] = true
		a[i], _ = p.constraint(c)
	}

	var result [][]int
	for r := range basis {
		rhs := make([]T, len(basis))
		for i := range rhs {
			rhs[i] = f.Zero()
		}
		rhs[r] = f.FromInt(-1)
		dir, ok := num.Solve(f, a, rhs)
		if !ok {
			panic("singular basis in pivot search")
		}

		var blocking, degenerate []int
		var minRatio T
		for c := 0; c < p.NumConstraints(); c++ {
			if inBasis[c] {
				continue
			}
			coeffs, _ := p.constraint(c)
			rate := num.Dot(f, coeffs, dir)
			slack := p.slack(c, z)
			switch f.Sign(rate) {
			case 1:
				ratio := f.Quo(slack, rate)
				if len(blocking) == 0 || f.Cmp(ratio, minRatio) < 0 {
					blocking = append(blocking[:0], c)
					minRatio = ratio
				} else if f.Cmp(ratio, minRatio) == 0 {
					blocking = append(blocking, c)
				}
			case -1:
				if f.Sign(slack) == 0 {
					degenerate = append(degenerate, c)
				}
			}
		}

		for _, c := range append(blocking, degenerate...) {
			next := make([]int, len(basis))
			copy(next, basis)
			next[r] = c
			sort.Ints(next)
			result = append(result, next)
		}
	}

	return result
}

// indexKey identifies a sorted set of constraints.
func indexKey(set []int) string {
	var sb strings.Builder
	for i, c := range set {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}
