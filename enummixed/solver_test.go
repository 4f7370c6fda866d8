package enummixed

import (
	"math"
	"math/big"
	"reflect"
	"sort"
	"testing"

	"github.com/pkg/errors"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/num"
	"github.com/timpalpant/nash/polytope"
)

func toRats(rows [][]int64) [][]*big.Rat {
	result := make([][]*big.Rat, len(rows))
	for i, row := range rows {
		result[i] = make([]*big.Rat, len(row))
		for j, x := range row {
			result[i][j] = big.NewRat(x, 1)
		}
	}
	return result
}

func bimatrix(t testing.TB, a, b [][]int64) *nash.Game {
	g, err := nash.NewBimatrix("test", toRats(a), toRats(b))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func coordinationGame(t testing.TB) *nash.Game {
	return bimatrix(t,
		[][]int64{{3, 0}, {0, 2}},
		[][]int64{{2, 0}, {0, 3}})
}

func formatAll(f num.Field[*big.Rat], profiles []nash.Profile[*big.Rat]) []string {
	result := make([]string, len(profiles))
	for i, p := range profiles {
		result[i] = nash.Format(f, p)
	}
	sort.Strings(result)
	return result
}

func TestCoordinationGame(t *testing.T) {
	f := num.Rational{}
	for _, engine := range []polytope.Engine{polytope.Pivoting, polytope.BasisEnumeration} {
		opts := DefaultOptions()
		opts.Engine = engine
		solver := NewSolver[*big.Rat](f, opts)
		solution, err := solver.Solve(coordinationGame(t))
		if err != nil {
			t.Fatal(err)
		}

		// Each player mixes to make the other indifferent, so player 1
		// plays (3/5, 2/5) and player 2 plays (2/5, 3/5).
		expected := []string{
			"0,1,0,1",
			"1,0,1,0",
			"3/5,2/5,2/5,3/5",
		}
		if result := formatAll(f, solution.Equilibria); !reflect.DeepEqual(result, expected) {
			t.Errorf("%v: expected equilibria %v, got %v", engine, expected, result)
		}
		if solver.State() != Solved {
			t.Errorf("expected state %v, got %v", Solved, solver.State())
		}
	}
}

func TestCoordinationGameFloat(t *testing.T) {
	f := num.NewFloat()
	solution, err := NewSolver[float64](f, DefaultOptions()).Solve(coordinationGame(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(solution.Equilibria) != 3 {
		t.Fatalf("expected 3 equilibria, got %d", len(solution.Equilibria))
	}

	found := false
	for _, p := range solution.Equilibria {
		if math.Abs(p[0][0]-0.6) < 1e-9 && math.Abs(p[1][0]-0.4) < 1e-9 {
			found = true
		}
		if !nash.IsNash[float64](solution.Game, f, p) {
			t.Errorf("%v is not an equilibrium", p)
		}
	}
	if !found {
		t.Errorf("mixed equilibrium missing from %v", solution.Equilibria)
	}
}

func TestFloatLargePayoffs(t *testing.T) {
	games := []*nash.Game{
		bimatrix(t,
			[][]int64{{1000000, 0}, {0, 1}},
			[][]int64{{1, 0}, {0, 1000000}}),
		bimatrix(t,
			[][]int64{{1000000, 750000, 1250000}, {1250000, 1000000, 750000}, {750000, 1250000, 1000000}},
			[][]int64{{-37, 0, -74}, {-74, -37, 0}, {0, -74, -37}}),
		bimatrix(t,
			[][]int64{{401907, 1, 0, -24793}, {-3000, 250000, 17, 9}, {12, -5, 310000, 4}, {-70000, 2, 3, 180000}},
			[][]int64{{-52000, 3, 1, 90000}, {8, -41000, 66000, 2}, {130000, 6, -9, 5}, {1, 72000, -3, 11}}),
	}

	exact := num.Rational{}
	inexact := num.NewFloat()
	for _, g := range games {
		expected, err := NewSolver[*big.Rat](exact, DefaultOptions()).Solve(g)
		if err != nil {
			t.Fatal(err)
		}

		for _, engine := range []polytope.Engine{polytope.Pivoting, polytope.BasisEnumeration} {
			opts := DefaultOptions()
			opts.Engine = engine
			solution, err := NewSolver[float64](inexact, opts).Solve(g)
			if err != nil {
				t.Fatalf("%v: %v", engine, err)
			}
			if len(solution.Equilibria) != len(expected.Equilibria) {
				t.Errorf("%v: expected %d equilibria, got %d", engine, len(expected.Equilibria), len(solution.Equilibria))
			}
			for _, p := range solution.Equilibria {
				if err := nash.Validate[float64](g, inexact, p); err != nil {
					t.Errorf("%v: %v", engine, err)
				}
				for _, weights := range p {
					for _, w := range weights {
						if w < 0 {
							t.Errorf("%v: negative weight in %v", engine, p)
						}
					}
				}
			}
		}
	}
}

// skewedFloat rounds every quotient slightly up, as an ill-conditioned
// solve would.
type skewedFloat struct {
	num.Float
}

func (f skewedFloat) Quo(a, b float64) float64 {
	return f.Float.Quo(a, b) * (1 + 1e-3)
}

func TestNumericInstability(t *testing.T) {
	f := skewedFloat{num.NewFloat()}
	solver := NewSolver[float64](f, DefaultOptions())
	_, err := solver.Solve(coordinationGame(t))
	if _, ok := errors.Cause(err).(*polytope.NumericInstabilityError); !ok {
		t.Errorf("expected NumericInstabilityError, got %v", err)
	}
	if solver.State() != Failed {
		t.Errorf("expected state %v, got %v", Failed, solver.State())
	}
}

func TestValidate(t *testing.T) {
	a := [][]float64{{3, 0}, {0, 2}}
	b := [][]float64{{2, 0}, {0, 3}}
	f := num.NewFloat()

	if err := validate[float64](f, a, b, nash.Profile[float64]{{0.6, 0.4}, {0.4, 0.6}}); err != nil {
		t.Errorf("expected equilibrium to validate, got %v", err)
	}
	if err := validate[float64](f, a, b, nash.Profile[float64]{{1, 0}, {0, 1}}); err == nil {
		t.Error("expected error for a profile that is not a best response")
	}
}

func TestNormalizeClipsWithinTolerance(t *testing.T) {
	f := num.NewFloat()
	result := normalize[float64](f, []float64{0.5, -1e-12, 0.5})
	expected := []float64{0.5, 0, 0.5}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %v, got %v", expected, result)
	}
}

func TestEquilibriaSatisfyComplementarity(t *testing.T) {
	games := []*nash.Game{
		coordinationGame(t),
		bimatrix(t,
			[][]int64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}},
			[][]int64{{0, 1, -1}, {-1, 0, 1}, {1, -1, 0}}),
		bimatrix(t,
			[][]int64{{3, 3}, {2, 5}, {0, 6}},
			[][]int64{{3, 2}, {2, 6}, {3, 1}}),
	}

	f := num.Rational{}
	for _, g := range games {
		solution, err := NewSolver[*big.Rat](f, DefaultOptions()).Solve(g)
		if err != nil {
			t.Fatal(err)
		}
		if len(solution.Equilibria) == 0 {
			t.Errorf("%v: no equilibria found", g)
		}
		for _, p := range solution.Equilibria {
			if err := nash.Validate[*big.Rat](g, f, p); err != nil {
				t.Errorf("%v: invalid profile: %v", g, err)
			}
			if !nash.IsNash[*big.Rat](g, f, p) {
				t.Errorf("%v: %s is not an equilibrium", g, nash.Format[*big.Rat](f, p))
			}
		}
	}
}

func TestRockPaperScissors(t *testing.T) {
	f := num.Rational{}
	g := bimatrix(t,
		[][]int64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}},
		[][]int64{{0, 1, -1}, {-1, 0, 1}, {1, -1, 0}})
	solution, err := NewSolver[*big.Rat](f, DefaultOptions()).Solve(g)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"1/3,1/3,1/3,1/3,1/3,1/3"}
	if result := formatAll(f, solution.Equilibria); !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %v, got %v", expected, result)
	}
}

func TestDominatedStrategyNeverPlayed(t *testing.T) {
	f := num.Rational{}
	g := bimatrix(t,
		[][]int64{{3, 0}, {0, 2}, {-1, -1}},
		[][]int64{{2, 0}, {0, 3}, {5, 5}})

	expected := []string{
		"0,1,0,0,1",
		"1,0,0,1,0",
		"3/5,2/5,0,2/5,3/5",
	}
	for _, eliminate := range []bool{true, false} {
		opts := DefaultOptions()
		opts.Reduce.Eliminate = eliminate
		solution, err := NewSolver[*big.Rat](f, opts).Solve(g)
		if err != nil {
			t.Fatal(err)
		}

		if result := formatAll(f, solution.Equilibria); !reflect.DeepEqual(result, expected) {
			t.Errorf("eliminate=%v: expected %v, got %v", eliminate, expected, result)
		}
		if eliminate && solution.Reduction.Game.NumStrategies(0) != 2 {
			t.Errorf("expected dominated strategy to be removed, reduced shape %v",
				solution.Reduction.Game.Shape())
		}
	}
}

func TestDegenerateGameCliques(t *testing.T) {
	// Player 1 is indifferent, so a continuum of equilibria joins the two
	// pure coordination outcomes through x = (1/2, 1/2).
	f := num.Rational{}
	g := bimatrix(t,
		[][]int64{{1, 1}, {1, 1}},
		[][]int64{{1, 0}, {0, 1}})

	for _, adj := range []Adjacency{EdgeAdjacency, SharedVertexAdjacency} {
		opts := DefaultOptions()
		opts.Connectedness = true
		opts.Adjacency = adj
		solver := NewSolver[*big.Rat](f, opts)
		solution, err := solver.Solve(g)
		if err != nil {
			t.Fatal(err)
		}

		expected := []string{
			"0,1,0,1",
			"1,0,1,0",
			"1/2,1/2,0,1",
			"1/2,1/2,1,0",
		}
		if result := formatAll(f, solution.Equilibria); !reflect.DeepEqual(result, expected) {
			t.Errorf("expected %v, got %v", expected, result)
		}

		cliques := solution.Cliques()
		if len(cliques) != 1 || len(cliques[0].Members) != 4 {
			t.Errorf("%v: expected a single clique of 4, got %v", adj, cliques)
		}
	}
}

func TestCliquesPartitionEquilibria(t *testing.T) {
	f := num.Rational{}
	games := []*nash.Game{
		coordinationGame(t),
		bimatrix(t,
			[][]int64{{1, 1}, {1, 1}},
			[][]int64{{1, 0}, {0, 1}}),
		bimatrix(t,
			[][]int64{{1, 1, 0}, {1, 1, 0}, {0, 0, 1}},
			[][]int64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}),
	}

	for _, g := range games {
		solution, err := NewSolver[*big.Rat](f, DefaultOptions()).Solve(g)
		if err != nil {
			t.Fatal(err)
		}

		seen := make(map[int]int)
		for k, c := range solution.Cliques() {
			if len(c.Members) == 0 {
				t.Errorf("clique %d is empty", k)
			}
			for _, i := range c.Members {
				if prev, ok := seen[i]; ok {
					t.Errorf("equilibrium %d in cliques %d and %d", i, prev, k)
				}
				seen[i] = k
			}
		}
		if len(seen) != len(solution.Equilibria) {
			t.Errorf("cliques cover %d of %d equilibria", len(seen), len(solution.Equilibria))
		}
	}
}

func TestCoordinationGameCliques(t *testing.T) {
	f := num.Rational{}
	opts := DefaultOptions()
	opts.Connectedness = true
	solution, err := NewSolver[*big.Rat](f, opts).Solve(coordinationGame(t))
	if err != nil {
		t.Fatal(err)
	}

	profiles := solution.CliqueProfiles()
	if len(profiles) != 3 {
		t.Fatalf("expected 3 isolated equilibria, got %d cliques", len(profiles))
	}
	for k, c := range profiles {
		if len(c) != 1 {
			t.Errorf("%s: expected 1 member, got %d", CliqueLabel(k), len(c))
		}
	}
	if CliqueLabel(0) != "convex-1" {
		t.Errorf("expected label convex-1, got %s", CliqueLabel(0))
	}
}

func TestParallelEnumeration(t *testing.T) {
	f := num.Rational{}
	g := bimatrix(t,
		[][]int64{{3, 3}, {2, 5}, {0, 6}},
		[][]int64{{3, 2}, {2, 6}, {3, 1}})

	serial, err := NewSolver[*big.Rat](f, DefaultOptions()).Solve(g)
	if err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.ParallelEnumeration = true
	parallel, err := NewSolver[*big.Rat](f, opts).Solve(g)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(formatAll(f, serial.Equilibria), formatAll(f, parallel.Equilibria)) {
		t.Errorf("serial %v != parallel %v",
			formatAll(f, serial.Equilibria), formatAll(f, parallel.Equilibria))
	}
}

func TestRejectsNonBimatrixGame(t *testing.T) {
	players := []nash.Player{
		{Label: "1", Strategies: []string{"a"}},
		{Label: "2", Strategies: []string{"a"}},
		{Label: "3", Strategies: []string{"a"}},
	}
	g, err := nash.NewGame("three", players, [][]*big.Rat{
		{big.NewRat(1, 1), big.NewRat(1, 1), big.NewRat(1, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewSolver[*big.Rat](num.Rational{}, DefaultOptions()).Solve(g)
	if errors.Cause(err) != ErrNotBimatrix {
		t.Errorf("expected ErrNotBimatrix, got %v", err)
	}
}

func TestParseAdjacency(t *testing.T) {
	for _, adj := range []Adjacency{EdgeAdjacency, SharedVertexAdjacency} {
		parsed, err := ParseAdjacency(adj.String())
		if err != nil || parsed != adj {
			t.Errorf("expected %v, got %v (%v)", adj, parsed, err)
		}
	}
	if _, err := ParseAdjacency("facet"); err == nil {
		t.Error("expected error for unknown adjacency")
	}
}

func BenchmarkSolve(b *testing.B) {
	g := bimatrix(b,
		[][]int64{{3, 3, 1}, {2, 5, 0}, {0, 6, 2}},
		[][]int64{{3, 2, 1}, {2, 6, 0}, {3, 1, 4}})
	solver := NewSolver[*big.Rat](num.Rational{}, DefaultOptions())
	for i := 0; i < b.N; i++ {
		if _, err := solver.Solve(g); err != nil {
			b.Fatal(err)
		}
	}
}
