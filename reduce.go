package nash

import (
	"github.com/golang/glog"

	"github.com/timpalpant/nash/num"
)

// Dominance selects which notion of dominance is used to eliminate strategies.
type Dominance uint8

const (
	// StrictDominance removes a strategy when another strategy earns strictly
	// more against every profile of the opponents. Elimination preserves the
	// set of Nash equilibria.
	StrictDominance Dominance = iota
	// WeakDominance removes a strategy when another earns at least as much
	// everywhere and strictly more somewhere. Some equilibria may be lost.
	WeakDominance
)

var dominanceStr = [...]string{
	"strict",
	"weak",
}

func (d Dominance) String() string {
	return dominanceStr[d]
}

// ReduceOptions configure iterated elimination of dominated strategies.
type ReduceOptions struct {
	Eliminate bool
	Dominance Dominance
}

// Reduction is a game with dominated strategies removed, together with the
// map from each player's reduced strategy indices to original indices.
type Reduction struct {
	Game     *Game
	Original *Game
	// Strategies[p][i] is the original index of player p's i'th
	// remaining strategy.
	Strategies [][]int
}

// Identity returns the trivial reduction of g.
func Identity(g *Game) *Reduction {
	strategies := make([][]int, g.NumPlayers())
	for p := range strategies {
		strategies[p] = make([]int, g.NumStrategies(p))
		for s := range strategies[p] {
			strategies[p][s] = s
		}
	}
	return &Reduction{Game: g, Original: g, Strategies: strategies}
}

// Reduce iteratively removes dominated pure strategies from g, comparing
// payoffs in the field f. Each pass strictly shrinks some player's strategy
// set or ends the iteration, so at most NumStrategies-NumPlayers passes
// are made. A player left with a single strategy is not examined again.
func Reduce[T any](g *Game, f num.Field[T], opts ReduceOptions) *Reduction {
	r := Identity(g)
	if !opts.Eliminate {
		return r
	}

	table := PayoffTable(g, f)
	remaining := r.Strategies
	for pass := 1; ; pass++ {
		removed := 0
		for p := range remaining {
			if len(remaining[p]) == 1 {
				continue
			}

			var kept []int
			for _, s := range remaining[p] {
				if isDominated(g, f, table, remaining, p, s, opts.Dominance) {
					glog.V(1).Infof("Pass %d: eliminated %v-dominated strategy %q of player %q",
						pass, opts.Dominance, g.Player(p).Strategies[s], g.Player(p).Label)
					removed++
				} else {
					kept = append(kept, s)
				}
			}
			remaining[p] = kept
		}

		if removed == 0 {
			break
		}
	}

	r.Strategies = remaining
	r.Game = g.Subgame(remaining)
	glog.V(1).Infof("Reduced game shape from %v to %v", g.Shape(), r.Game.Shape())
	return r
}

// isDominated reports whether strategy s of player p is dominated by some
// other remaining strategy of p. All dominated strategies can be removed
// simultaneously since dominance is transitive: an undominated dominator
// always survives.
func isDominated[T any](g *Game, f num.Field[T], table [][]T, remaining [][]int, p, s int, d Dominance) bool {
	for _, t := range remaining[p] {
		if t != s && dominates(g, f, table, remaining, p, t, s, d) {
			return true
		}
	}
	return false
}

// dominates reports whether strategy t of player p dominates strategy s
// against every profile of the opponents' remaining strategies.
func dominates[T any](g *Game, f num.Field[T], table [][]T, remaining [][]int, p, t, s int, d Dominance) bool {
	strictSomewhere := false
	result := true
	forEachOpponentProfile(remaining, p, func(profile []int) bool {
		profile[p] = t
		ut := table[g.ProfileIndex(profile)][p]
		profile[p] = s
		us := table[g.ProfileIndex(profile)][p]
		switch c := f.Cmp(ut, us); {
		case c < 0:
			result = false
		case c == 0 && d == StrictDominance:
			result = false
		case c > 0:
			strictSomewhere = true
		}
		return result
	})

	return result && strictSomewhere
}

// forEachOpponentProfile calls fn with every combination of the remaining
// strategies of all players other than p. The entry for p is left for fn
// to fill. Iteration stops early if fn returns false.
func forEachOpponentProfile(remaining [][]int, p int, fn func(profile []int) bool) {
	profile := make([]int, len(remaining))
	pos := make([]int, len(remaining))
	for q := range remaining {
		if q != p {
			profile[q] = remaining[q][0]
		}
	}

	for {
		if !fn(profile) {
			return
		}

		q := 0
		for ; q < len(remaining); q++ {
			if q == p {
				continue
			}
			pos[q]++
			if pos[q] < len(remaining[q]) {
				profile[q] = remaining[q][pos[q]]
				break
			}
			pos[q] = 0
			profile[q] = remaining[q][0]
		}
		if q == len(remaining) {
			return
		}
	}
}

// Expand maps a profile of the reduced game back to the original game.
// Eliminated strategies receive zero weight.
func Expand[T any](r *Reduction, f num.Field[T], p Profile[T]) Profile[T] {
	result := make(Profile[T], r.Original.NumPlayers())
	for pl := range result {
		result[pl] = make([]T, r.Original.NumStrategies(pl))
		for s := range result[pl] {
			result[pl][s] = f.Zero()
		}
		for i, s := range r.Strategies[pl] {
			result[pl][s] = p[pl][i]
		}
	}
	return result
}

// Restrict maps a profile of the original game onto the reduced game,
// dropping the weights of eliminated strategies.
func Restrict[T any](r *Reduction, p Profile[T]) Profile[T] {
	result := make(Profile[T], len(r.Strategies))
	for pl, keep := range r.Strategies {
		result[pl] = make([]T, len(keep))
		for i, s := range keep {
			result[pl][i] = p[pl][s]
		}
	}
	return result
}
