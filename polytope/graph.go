package polytope

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/glog"

	"github.com/timpalpant/nash/num"
)

// Vertex is an extreme point of a polytope.
type Vertex[T any] struct {
	// ID is the index of the vertex in its Graph. Enumerators leave it zero.
	ID     int
	Coords []T
	// Tight lists the constraints satisfied with equality, in order.
	Tight []int
	// Labels is the set of labels of the tight constraints.
	Labels *bitset.BitSet
	// Origin is set for the zero vector, which is a vertex of every
	// polytope built here but never part of an equilibrium.
	Origin bool
}

// Graph is the vertex-edge graph of a polytope. Vertices are stored in an
// arena and edges as sorted lists of vertex indices.
type Graph[T any] struct {
	Polytope *Polytope[T]
	Vertices []Vertex[T]
	Adj      [][]int
}

// Collect enumerates every vertex of p with e and connects them by the
// edges of p.
func Collect[T any](e Enumerator[T], p *Polytope[T]) (*Graph[T], error) {
	g := &Graph[T]{Polytope: p}
	err := e.Enumerate(p, func(v Vertex[T]) error {
		v.ID = len(g.Vertices)
		g.Vertices = append(g.Vertices, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.buildEdges()
	glog.V(1).Infof("Polytope of dimension %d has %d vertices and %d edges",
		p.Dim(), len(g.Vertices), g.NumEdges())
	return g, nil
}

// buildEdges joins two vertices when the constraints tight at both have
// rank d-1: they then span a one-dimensional face whose endpoints are
// exactly those two vertices.
func (g *Graph[T]) buildEdges() {
	p := g.Polytope
	d := p.Dim()
	g.Adj = make([][]int, len(g.Vertices))
	for i := range g.Vertices {
		for j := i + 1; j < len(g.Vertices); j++ {
			common := intersectSorted(g.Vertices[i].Tight, g.Vertices[j].Tight)
			if len(common) < d-1 {
				continue
			}

			rows := make([][]T, len(common))
			for k, c := range common {
				rows[k], _ = p.constraint(c)
			}
			if num.Rank(p.field, rows) == d-1 {
				g.Adj[i] = append(g.Adj[i], j)
				g.Adj[j] = append(g.Adj[j], i)
			}
		}
	}

	for i := range g.Adj {
		sort.Ints(g.Adj[i])
	}
}

// Adjacent reports whether vertices a and b are joined by an edge.
func (g *Graph[T]) Adjacent(a, b int) bool {
	nbrs := g.Adj[a]
	k := sort.SearchInts(nbrs, b)
	return k < len(nbrs) && nbrs[k] == b
}

// NumEdges returns the number of edges in the graph.
func (g *Graph[T]) NumEdges() int {
	total := 0
	for _, nbrs := range g.Adj {
		total += len(nbrs)
	}
	return total / 2
}

func intersectSorted(a, b []int) []int {
	var result []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			result = append(result, a[i])
			i++
			j++
		}
	}
	return result
}
