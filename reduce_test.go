package nash

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/timpalpant/nash/num"
)

func TestReduceIterated(t *testing.T) {
	// Column 2 is strictly dominated for player 2. Once it is gone, row 2
	// is strictly dominated for player 1.
	g := newBimatrix(t,
		[][]int64{{3, 0}, {1, 5}},
		[][]int64{{2, 1}, {2, 1}})

	r := Reduce[*big.Rat](g, num.Rational{}, ReduceOptions{Eliminate: true})
	expected := [][]int{{0}, {0}}
	if !reflect.DeepEqual(r.Strategies, expected) {
		t.Errorf("expected strategies %v, got %v", expected, r.Strategies)
	}
	if !reflect.DeepEqual(r.Game.Shape(), []int{1, 1}) {
		t.Errorf("expected shape [1 1], got %v", r.Game.Shape())
	}
}

func TestReduceDisabled(t *testing.T) {
	g := newBimatrix(t,
		[][]int64{{3, 0}, {1, 5}},
		[][]int64{{2, 1}, {2, 1}})

	r := Reduce[*big.Rat](g, num.Rational{}, ReduceOptions{Eliminate: false})
	if r.Game != g {
		t.Error("expected the original game when elimination is disabled")
	}
	if !reflect.DeepEqual(r.Strategies, [][]int{{0, 1}, {0, 1}}) {
		t.Errorf("expected identity map, got %v", r.Strategies)
	}
}

func TestReduceWeakDominance(t *testing.T) {
	g := newBimatrix(t,
		[][]int64{{1, 1}, {1, 0}},
		[][]int64{{0, 0}, {0, 0}})
	f := num.Rational{}

	strict := Reduce[*big.Rat](g, f, ReduceOptions{Eliminate: true, Dominance: StrictDominance})
	if !reflect.DeepEqual(strict.Strategies, [][]int{{0, 1}, {0, 1}}) {
		t.Errorf("strict: expected nothing removed, got %v", strict.Strategies)
	}

	weak := Reduce[*big.Rat](g, f, ReduceOptions{Eliminate: true, Dominance: WeakDominance})
	if !reflect.DeepEqual(weak.Strategies, [][]int{{0}, {0, 1}}) {
		t.Errorf("weak: expected row 2 removed, got %v", weak.Strategies)
	}
}

func TestReduceThreePlayers(t *testing.T) {
	// Every player prefers strategy 2 regardless of the others.
	players := []Player{
		{Label: "1", Strategies: []string{"a", "b"}},
		{Label: "2", Strategies: []string{"a", "b"}},
		{Label: "3", Strategies: []string{"a", "b"}},
	}
	payoffs := make([][]*big.Rat, 8)
	for idx := range payoffs {
		payoffs[idx] = make([]*big.Rat, 3)
		for p := 0; p < 3; p++ {
			s := (idx >> uint(p)) & 1
			payoffs[idx][p] = big.NewRat(int64(10*s+idx%3), 1)
		}
	}
	g, err := NewGame("three", players, payoffs)
	if err != nil {
		t.Fatal(err)
	}

	r := Reduce[float64](g, num.NewFloat(), ReduceOptions{Eliminate: true})
	if !reflect.DeepEqual(r.Strategies, [][]int{{1}, {1}, {1}}) {
		t.Errorf("expected only strategy 2 to survive, got %v", r.Strategies)
	}
}

func TestExpandRestrictRoundTrip(t *testing.T) {
	g := newBimatrix(t,
		[][]int64{{3, 0}, {0, 2}, {-1, -1}},
		[][]int64{{2, 0}, {0, 3}, {5, 5}})
	f := num.Rational{}
	r := Reduce[*big.Rat](g, f, ReduceOptions{Eliminate: true})
	if !reflect.DeepEqual(r.Strategies, [][]int{{0, 1}, {0, 1}}) {
		t.Fatalf("expected row 3 removed, got %v", r.Strategies)
	}

	reduced := Profile[*big.Rat]{
		{big.NewRat(3, 5), big.NewRat(2, 5)},
		{big.NewRat(2, 5), big.NewRat(3, 5)},
	}
	expanded := Expand[*big.Rat](r, f, reduced)
	if s := Format[*big.Rat](f, expanded); s != "3/5,2/5,0,2/5,3/5" {
		t.Errorf("unexpected expanded profile %s", s)
	}
	if err := Validate[*big.Rat](g, f, expanded); err != nil {
		t.Error(err)
	}

	restored := Restrict(r, expanded)
	for p := range reduced {
		for s := range reduced[p] {
			if restored[p][s].Cmp(reduced[p][s]) != 0 {
				t.Errorf("player %d strategy %d: expected %v, got %v", p, s, reduced[p][s], restored[p][s])
			}
		}
	}
}
