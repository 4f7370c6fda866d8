package polytope

import (
	"gonum.org/v1/gonum/stat/combin"
)

// BasisEngine enumerates vertices by solving every choice of d constraints
// and keeping the feasible solutions. It does not depend on pivoting rules,
// so degenerate and badly scaled polytopes cannot make it cycle or skip a
// vertex; the cost is one linear solve per candidate basis.
type BasisEngine[T any] struct{}

// Enumerate implements Enumerator. Vertices are visited in the
// lexicographic order of the first basis that defines them.
func (BasisEngine[T]) Enumerate(p *Polytope[T], visit func(Vertex[T]) error) error {
	seen := make(map[string]struct{})
	gen := combin.NewCombinationGenerator(p.NumConstraints(), p.dim)
	basis := make([]int, p.dim)
	for gen.Next() {
		gen.Combination(basis)
		z, ok := p.solveBasis(basis)
		if !ok || p.infeasibleConstraint(z) >= 0 {
			continue
		}

		v := p.newVertex(z)
		key := indexKey(v.Tight)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := visit(v); err != nil {
			return err
		}
	}

	return nil
}
