package nash

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/timpalpant/nash/num"
)

// Profile is a mixed-strategy profile: for each player, a probability
// distribution over that player's pure strategies.
type Profile[T any] [][]T

// UniformProfile returns the profile in which every player mixes uniformly.
func UniformProfile[T any](g *Game, f num.Field[T]) Profile[T] {
	result := make(Profile[T], g.NumPlayers())
	for p := range result {
		n := g.NumStrategies(p)
		w := f.Quo(f.One(), f.FromInt(int64(n)))
		result[p] = make([]T, n)
		for s := range result[p] {
			result[p][s] = w
		}
	}
	return result
}

// Validate checks that p has the shape of g and that each player's weights
// are non-negative and sum to one.
func Validate[T any](g *Game, f num.Field[T], p Profile[T]) error {
	if len(p) != g.NumPlayers() {
		return errors.Errorf("profile has %d players, game has %d", len(p), g.NumPlayers())
	}
	for pl, weights := range p {
		if len(weights) != g.NumStrategies(pl) {
			return errors.Errorf("player %d has %d weights, expected %d", pl+1, len(weights), g.NumStrategies(pl))
		}
		for s, w := range weights {
			if f.Sign(w) < 0 {
				return errors.Errorf("player %d strategy %d has negative weight %v", pl+1, s+1, f.String(w))
			}
		}
		if f.Cmp(num.Sum(f, weights), f.One()) != 0 {
			return errors.Errorf("player %d weights sum to %v", pl+1, f.String(num.Sum(f, weights)))
		}
	}
	return nil
}

// StrategyValues returns, for each pure strategy of player, the expected
// payoff of playing it against the other players' mixtures in p.
func StrategyValues[T any](g *Game, f num.Field[T], table [][]T, p Profile[T], player int) []T {
	values := make([]T, g.NumStrategies(player))
	for s := range values {
		values[s] = f.Zero()
	}

	var profile []int
	for idx, payoffs := range table {
		profile = g.Profile(idx, profile)
		w := f.One()
		for pl, s := range profile {
			if pl == player {
				continue
			}
			w = f.Mul(w, p[pl][s])
			if f.Sign(w) == 0 {
				break
			}
		}
		if f.Sign(w) == 0 {
			continue
		}
		s := profile[player]
		values[s] = f.Add(values[s], f.Mul(w, payoffs[player]))
	}

	return values
}

// Regret returns the largest gain any player could obtain by deviating
// unilaterally from p to a pure strategy. p is a Nash equilibrium exactly
// when Regret compares equal to zero.
func Regret[T any](g *Game, f num.Field[T], p Profile[T]) T {
	table := PayoffTable(g, f)
	worst := f.Zero()
	for pl := range p {
		values := StrategyValues(g, f, table, p, pl)
		best := values[0]
		for _, v := range values[1:] {
			if f.Cmp(v, best) > 0 {
				best = v
			}
		}
		gain := f.Sub(best, num.Dot(f, values, p[pl]))
		if f.Cmp(gain, worst) > 0 {
			worst = gain
		}
	}
	return worst
}

// IsNash reports whether p is a Nash equilibrium of g.
func IsNash[T any](g *Game, f num.Field[T], p Profile[T]) bool {
	return f.Sign(Regret(g, f, p)) == 0
}

// Support returns the indices of player's strategies with positive weight.
func Support[T any](f num.Field[T], p Profile[T], player int) []int {
	var result []int
	for s, w := range p[player] {
		if f.Sign(w) > 0 {
			result = append(result, s)
		}
	}
	return result
}

// Format renders p as comma-separated weights, player by player.
func Format[T any](f num.Field[T], p Profile[T]) string {
	var parts []string
	for _, weights := range p {
		for _, w := range weights {
			parts = append(parts, f.String(w))
		}
	}
	return strings.Join(parts, ",")
}
