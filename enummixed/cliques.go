package enummixed

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/timpalpant/nash/polytope"
)

// Adjacency selects when two equilibria are considered connected.
type Adjacency uint8

const (
	// EdgeAdjacency connects two equilibria that share the vertex of one
	// player and whose vertices for the other player are joined by an edge
	// of that player's polytope, i.e. are one pivot step apart.
	EdgeAdjacency Adjacency = iota
	// SharedVertexAdjacency connects two equilibria that share the vertex
	// of either player.
	SharedVertexAdjacency
)

var adjacencyStr = [...]string{
	"edge",
	"shared-vertex",
}

func (a Adjacency) String() string {
	return adjacencyStr[a]
}

// ParseAdjacency parses the String form of an Adjacency.
func ParseAdjacency(s string) (Adjacency, error) {
	for i, name := range adjacencyStr {
		if name == s {
			return Adjacency(i), nil
		}
	}
	return 0, errors.Errorf("unknown adjacency %q", s)
}

// Clique is a connected component of the equilibrium set. Members are
// indices into the list of equilibria, in increasing order.
type Clique struct {
	Members []int
}

// CliqueLabel returns the label of the k'th clique (counting from 0).
func CliqueLabel(k int) string {
	return fmt.Sprintf("convex-%d", k+1)
}

// Cliques partitions the candidates into connected components under the
// given adjacency. Components are ordered by their smallest member.
func Cliques[T any](candidates []Candidate, px, py *polytope.Graph[T], adj Adjacency) []Clique {
	connected := func(c, d Candidate) bool {
		switch {
		case c.X == d.X:
			return adj == SharedVertexAdjacency || py.Adjacent(c.Y, d.Y)
		case c.Y == d.Y:
			return adj == SharedVertexAdjacency || px.Adjacent(c.X, d.X)
		default:
			return false
		}
	}

	neighbors := make([][]int, len(candidates))
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if connected(candidates[i], candidates[j]) {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	var result []Clique
	visited := make([]bool, len(candidates))
	for start := range candidates {
		if visited[start] {
			continue
		}

		visited[start] = true
		component := []int{start}
		for head := 0; head < len(component); head++ {
			for _, next := range neighbors[component[head]] {
				if !visited[next] {
					visited[next] = true
					component = append(component, next)
				}
			}
		}

		sort.Ints(component)
		result = append(result, Clique{Members: component})
	}

	return result
}
