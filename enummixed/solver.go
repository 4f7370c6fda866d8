// Package enummixed computes all Nash equilibria of a two-player game by
// enumerating the vertices of the players' best-response polytopes and
// pairing complementary vertices.
package enummixed

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/num"
	"github.com/timpalpant/nash/polytope"
)

// ErrNotBimatrix is returned when the game does not have two players.
var ErrNotBimatrix = errors.New("game must have exactly two players")

// State is the progress of a Solver through one solve.
type State uint8

const (
	Unsolved State = iota
	Reducing
	Enumerating
	Pairing
	GroupingCliques
	Solved
	Failed
)

var stateStr = [...]string{
	"Unsolved",
	"Reducing",
	"Enumerating",
	"Pairing",
	"GroupingCliques",
	"Solved",
	"Failed",
}

func (s State) String() string {
	return stateStr[s]
}

// Options configure a Solver.
type Options struct {
	// Reduce controls elimination of dominated strategies before
	// enumeration.
	Reduce nash.ReduceOptions
	// Engine selects the vertex enumeration algorithm.
	Engine polytope.Engine
	// Connectedness groups the equilibria into cliques during Solve.
	// Cliques are otherwise computed on first use.
	Connectedness bool
	Adjacency     Adjacency
	// ParallelEnumeration enumerates the two polytopes concurrently.
	ParallelEnumeration bool
}

// DefaultOptions eliminates strictly dominated strategies and enumerates
// by pivoting.
func DefaultOptions() Options {
	return Options{
		Reduce: nash.ReduceOptions{
			Eliminate: true,
			Dominance: nash.StrictDominance,
		},
		Engine:    polytope.Pivoting,
		Adjacency: EdgeAdjacency,
	}
}

// Solver finds all equilibria of two-player games in the numeric domain F.
// A Solver may be reused but not shared between goroutines.
type Solver[T any] struct {
	field num.Field[T]
	opts  Options
	state State
}

// NewSolver returns a Solver computing in f.
func NewSolver[T any](f num.Field[T], opts Options) *Solver[T] {
	return &Solver[T]{field: f, opts: opts}
}

// State returns the state reached by the most recent call to Solve.
func (s *Solver[T]) State() State {
	return s.state
}

func (s *Solver[T]) transition(next State) {
	glog.V(2).Infof("enummixed: %v -> %v", s.state, next)
	s.state = next
}

// Solve returns every extreme Nash equilibrium of g, as profiles over the
// original strategies of g. In a degenerate game whose equilibria form
// faces of positive dimension, each face is reported through its extreme
// points; Solution.Cliques groups them.
func (s *Solver[T]) Solve(g *nash.Game) (*Solution[T], error) {
	s.state = Unsolved
	if g.NumPlayers() != 2 {
		return nil, errors.Wrapf(ErrNotBimatrix, "game has %d players", g.NumPlayers())
	}

	f := s.field
	s.transition(Reducing)
	reduction := nash.Reduce(g, f, s.opts.Reduce)
	a, b := nash.Bimatrix(reduction.Game, f)

	s.transition(Enumerating)
	p1, p2 := polytope.BuildPair(f, a, b)
	// p1 lives in player 2's strategy space and p2 in player 1's.
	py, px, err := s.enumerate(p1, p2)
	if err != nil {
		s.transition(Failed)
		return nil, err
	}

	s.transition(Pairing)
	candidates := Pair(px, py)
	solution := &Solution[T]{
		Game:       g,
		Reduction:  reduction,
		Equilibria: make([]nash.Profile[T], 0, len(candidates)),
		candidates: candidates,
		px:         px,
		py:         py,
		adjacency:  s.opts.Adjacency,
	}
	// Best responses are checked on the scale the polytopes were built at.
	na, nb := polytope.Normalize(f, a), polytope.Normalize(f, b)
	for _, c := range candidates {
		p := toProfile(f, c, px, py)
		if err := validate(f, na, nb, p); err != nil {
			if f.IsExact() {
				panic(err)
			}
			s.transition(Failed)
			return nil, &polytope.NumericInstabilityError{
				Reason: fmt.Sprintf("vertices %d and %d are not complementary: %v", c.X, c.Y, err),
			}
		}
		solution.Equilibria = append(solution.Equilibria, nash.Expand(reduction, f, p))
	}

	if s.opts.Connectedness {
		s.transition(GroupingCliques)
		solution.Cliques()
	}

	s.transition(Solved)
	glog.Infof("Found %d equilibria from %d and %d vertices",
		len(solution.Equilibria), len(px.Vertices), len(py.Vertices))
	return solution, nil
}

func (s *Solver[T]) enumerate(p1, p2 *polytope.Polytope[T]) (g1, g2 *polytope.Graph[T], err error) {
	e := polytope.NewEnumerator[T](s.opts.Engine)
	collect1 := func() (err error) {
		g1, err = polytope.Collect(e, p1)
		return errors.Wrap(err, "enumerating player 1 best-response polytope")
	}
	collect2 := func() (err error) {
		g2, err = polytope.Collect(e, p2)
		return errors.Wrap(err, "enumerating player 2 best-response polytope")
	}

	if !s.opts.ParallelEnumeration {
		if err := collect1(); err != nil {
			return nil, nil, err
		}
		if err := collect2(); err != nil {
			return nil, nil, err
		}
		return g1, g2, nil
	}

	var eg errgroup.Group
	eg.Go(collect1)
	eg.Go(collect2)
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return g1, g2, nil
}

// Solution is the result of a successful Solve.
type Solution[T any] struct {
	Game      *nash.Game
	Reduction *nash.Reduction
	// Equilibria are the extreme equilibria in discovery order.
	Equilibria []nash.Profile[T]

	candidates []Candidate
	px, py     *polytope.Graph[T]
	adjacency  Adjacency
	cliques    []Clique
}

// Candidates returns the vertex pairs underlying each equilibrium.
func (s *Solution[T]) Candidates() []Candidate {
	return s.candidates
}

// Cliques partitions the equilibria into connected components.
func (s *Solution[T]) Cliques() []Clique {
	if s.cliques == nil && len(s.candidates) > 0 {
		s.cliques = Cliques(s.candidates, s.px, s.py, s.adjacency)
		glog.V(1).Infof("Grouped %d equilibria into %d cliques", len(s.candidates), len(s.cliques))
	}
	return s.cliques
}

// CliqueProfiles returns the equilibria of each clique.
func (s *Solution[T]) CliqueProfiles() [][]nash.Profile[T] {
	cliques := s.Cliques()
	result := make([][]nash.Profile[T], len(cliques))
	for k, c := range cliques {
		for _, i := range c.Members {
			result[k] = append(result[k], s.Equilibria[i])
		}
	}
	return result
}
