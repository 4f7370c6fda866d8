package polymatrix

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/num"
)

// approximation is the polymatrix game obtained by linearising a game
// around a profile sigma: every player interacts with each other player
// separately, with the remaining players frozen at sigma.
type approximation struct {
	// pairwise[i][j][si][sj] is the payoff to i of playing si when j plays
	// sj and everyone else follows sigma. nil when i == j.
	pairwise [][][][]float64
	// values[i][si] is the payoff to i of playing si against sigma.
	values [][]float64
}

func newApproximation(g *nash.Game) *approximation {
	n := g.NumPlayers()
	a := &approximation{
		pairwise: make([][][][]float64, n),
		values:   make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		a.pairwise[i] = make([][][]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			a.pairwise[i][j] = make([][]float64, g.NumStrategies(i))
			for si := range a.pairwise[i][j] {
				a.pairwise[i][j][si] = make([]float64, g.NumStrategies(j))
			}
		}
	}
	return a
}

// build recomputes player i's rows of the approximation at sigma. Calls for
// different players touch disjoint memory and may run concurrently.
func (a *approximation) build(g *nash.Game, table [][]float64, sigma nash.Profile[float64], i int) error {
	for j, rows := range a.pairwise[i] {
		if j == i {
			continue
		}
		for _, row := range rows {
			for sj := range row {
				row[sj] = 0
			}
		}
	}

	var profile []int
	for idx, payoffs := range table {
		profile = g.Profile(idx, profile)
		u := payoffs[i]
		si := profile[i]
		for j, rows := range a.pairwise[i] {
			if j == i {
				continue
			}
			w := 1.0
			for k, sk := range profile {
				if k != i && k != j {
					w *= sigma[k][sk]
				}
			}
			rows[si][profile[j]] += w * u
		}
	}

	a.values[i] = nash.StrategyValues[float64](g, num.NewFloat(), table, sigma, i)
	for si, v := range a.values[i] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("player %d strategy %d has non-finite value %v", i+1, si+1, v)
		}
	}
	return nil
}

// gradient writes into dst the payoff to player i of each pure strategy in
// the polymatrix game when the others play tau:
//
//	sum_{j != i} P_ij tau_j - (n-2) c_i
//
// At tau == sigma this equals the true payoff vector c_i.
func (a *approximation) gradient(tau nash.Profile[float64], i int, dst []float64) {
	n := float64(len(tau))
	for si := range dst {
		dst[si] = -(n - 2) * a.values[i][si]
		for j, rows := range a.pairwise[i] {
			if j != i {
				dst[si] += floats.Dot(rows[si], tau[j])
			}
		}
	}
}

// projectSimplex writes into dst the Euclidean projection of y onto the
// probability simplex.
func projectSimplex(y, dst []float64) {
	u := allocFloatSlice(len(y))
	copy(u, y)
	sort.Sort(sort.Reverse(sort.Float64Slice(u)))

	cumsum, theta := 0.0, 0.0
	for k, v := range u {
		cumsum += v
		if t := (cumsum - 1) / float64(k+1); v-t > 0 {
			theta = t
		}
	}
	freeFloatSlice(u)

	for s, v := range y {
		dst[s] = math.Max(v-theta, 0)
	}
}
