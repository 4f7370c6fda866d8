package nash

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/timpalpant/nash/num"
)

// Player is a participant in a strategic-form game together with its
// ordered set of pure strategies.
type Player struct {
	Label      string
	Strategies []string
}

// NumStrategies returns the number of pure strategies available to p.
func (p Player) NumStrategies() int {
	return len(p.Strategies)
}

// Game is a finite strategic-form game. A Game is immutable once constructed.
//
// Pure-strategy profiles are indexed in mixed radix with player 0's
// strategy varying fastest, matching the payoff order of .nfg files.
type Game struct {
	Title   string
	Comment string

	players []Player
	strides []int
	// payoffs[profile][player]
	payoffs [][]*big.Rat
}

// MaxProfiles bounds the number of pure-strategy profiles of a Game.
const MaxProfiles = 1 << 26

// NewGame creates a game with the given players and payoff table.
// payoffs must have one entry per pure-strategy profile, each holding one
// payoff per player. The payoffs are copied.
func NewGame(title string, players []Player, payoffs [][]*big.Rat) (*Game, error) {
	if len(players) == 0 {
		return nil, errors.Wrap(ErrMalformedGame, "game has no players")
	}

	g := &Game{
		Title:   title,
		players: make([]Player, len(players)),
		strides: make([]int, len(players)),
	}

	nProfiles := 1
	for i, p := range players {
		if len(p.Strategies) == 0 {
			return nil, errors.Wrapf(ErrMalformedGame, "player %d (%q) has no strategies", i+1, p.Label)
		}
		if len(p.Strategies) > MaxProfiles/nProfiles {
			return nil, errors.Wrapf(ErrMalformedGame, "game has more than %d pure-strategy profiles", MaxProfiles)
		}
		g.players[i] = Player{
			Label:      p.Label,
			Strategies: append([]string(nil), p.Strategies...),
		}
		g.strides[i] = nProfiles
		nProfiles *= len(p.Strategies)
	}

	if len(payoffs) != nProfiles {
		return nil, errors.Wrapf(ErrMalformedGame, "expected %d payoff profiles, got %d", nProfiles, len(payoffs))
	}

	g.payoffs = make([][]*big.Rat, nProfiles)
	for idx, row := range payoffs {
		if len(row) != len(players) {
			return nil, errors.Wrapf(ErrMalformedGame,
				"profile %d has %d payoffs, expected %d", idx, len(row), len(players))
		}
		g.payoffs[idx] = make([]*big.Rat, len(row))
		for pl, v := range row {
			if v == nil {
				return nil, errors.Wrapf(ErrMalformedGame, "profile %d is missing payoff for player %d", idx, pl+1)
			}
			g.payoffs[idx][pl] = new(big.Rat).Set(v)
		}
	}

	return g, nil
}

// NewBimatrix creates a two-player game where a[i][j] and b[i][j] are the
// payoffs to players 1 and 2 when player 1 plays i and player 2 plays j.
func NewBimatrix(title string, a, b [][]*big.Rat) (*Game, error) {
	if len(a) == 0 || len(a[0]) == 0 {
		return nil, errors.Wrap(ErrMalformedGame, "empty payoff matrix")
	}
	m, n := len(a), len(a[0])
	if len(b) != m {
		return nil, errors.Wrapf(ErrMalformedGame, "payoff matrices have %d and %d rows", m, len(b))
	}

	players := []Player{
		{Label: "1", Strategies: numberedStrategies(m)},
		{Label: "2", Strategies: numberedStrategies(n)},
	}
	payoffs := make([][]*big.Rat, m*n)
	for i := 0; i < m; i++ {
		if len(a[i]) != n || len(b[i]) != n {
			return nil, errors.Wrapf(ErrMalformedGame, "row %d has inconsistent length", i+1)
		}
		for j := 0; j < n; j++ {
			payoffs[i+j*m] = []*big.Rat{a[i][j], b[i][j]}
		}
	}

	return NewGame(title, players, payoffs)
}

func numberedStrategies(n int) []string {
	result := make([]string, n)
	for i := range result {
		result[i] = fmt.Sprint(i + 1)
	}
	return result
}

// NumPlayers returns the number of players in the game.
func (g *Game) NumPlayers() int {
	return len(g.players)
}

// Player returns the p'th player.
func (g *Game) Player(p int) Player {
	return g.players[p]
}

// NumStrategies returns the number of pure strategies of player p.
func (g *Game) NumStrategies(p int) int {
	return len(g.players[p].Strategies)
}

// Shape returns the number of strategies of each player.
func (g *Game) Shape() []int {
	result := make([]int, len(g.players))
	for i, p := range g.players {
		result[i] = len(p.Strategies)
	}
	return result
}

// NumProfiles returns the number of pure-strategy profiles.
func (g *Game) NumProfiles() int {
	return len(g.payoffs)
}

// ProfileIndex returns the index of the given pure-strategy profile.
func (g *Game) ProfileIndex(profile []int) int {
	idx := 0
	for p, s := range profile {
		idx += s * g.strides[p]
	}
	return idx
}

// Profile decodes a profile index into dst, which is grown if needed.
func (g *Game) Profile(idx int, dst []int) []int {
	dst = dst[:0]
	for _, p := range g.players {
		n := len(p.Strategies)
		dst = append(dst, idx%n)
		idx /= n
	}
	return dst
}

// Payoff returns the payoff to player when the given pure profile is played.
func (g *Game) Payoff(profile []int, player int) *big.Rat {
	return new(big.Rat).Set(g.payoffs[g.ProfileIndex(profile)][player])
}

// PayoffAt returns the payoff to player at the given profile index.
func (g *Game) PayoffAt(idx, player int) *big.Rat {
	return new(big.Rat).Set(g.payoffs[idx][player])
}

// Subgame returns the game restricted to the given strategies of each
// player, in the given order.
func (g *Game) Subgame(strategies [][]int) *Game {
	sub := &Game{
		Title:   g.Title,
		Comment: g.Comment,
		players: make([]Player, len(g.players)),
		strides: make([]int, len(g.players)),
	}

	nProfiles := 1
	for p, keep := range strategies {
		labels := make([]string, len(keep))
		for i, s := range keep {
			labels[i] = g.players[p].Strategies[s]
		}
		sub.players[p] = Player{Label: g.players[p].Label, Strategies: labels}
		sub.strides[p] = nProfiles
		nProfiles *= len(keep)
	}

	sub.payoffs = make([][]*big.Rat, nProfiles)
	var reduced []int
	original := make([]int, len(g.players))
	for idx := range sub.payoffs {
		reduced = sub.Profile(idx, reduced)
		for p, s := range reduced {
			original[p] = strategies[p][s]
		}
		sub.payoffs[idx] = g.payoffs[g.ProfileIndex(original)]
	}

	return sub
}

// PayoffTable converts the payoffs of g into the field f.
// The result is indexed by [profile][player].
func PayoffTable[T any](g *Game, f num.Field[T]) [][]T {
	result := make([][]T, len(g.payoffs))
	for idx, row := range g.payoffs {
		result[idx] = make([]T, len(row))
		for p, v := range row {
			result[idx][p] = f.FromRat(v)
		}
	}
	return result
}

// Bimatrix returns the payoff matrices of a two-player game in the field f:
// a[i][j] is player 1's payoff and b[i][j] player 2's payoff when player 1
// plays i and player 2 plays j.
func Bimatrix[T any](g *Game, f num.Field[T]) (a, b [][]T) {
	if g.NumPlayers() != 2 {
		panic(fmt.Sprintf("Bimatrix called on a %d-player game", g.NumPlayers()))
	}

	m, n := g.NumStrategies(0), g.NumStrategies(1)
	a = make([][]T, m)
	b = make([][]T, m)
	for i := 0; i < m; i++ {
		a[i] = make([]T, n)
		b[i] = make([]T, n)
		for j := 0; j < n; j++ {
			row := g.payoffs[i+j*m]
			a[i][j] = f.FromRat(row[0])
			b[i][j] = f.FromRat(row[1])
		}
	}
	return a, b
}

// String implements fmt.Stringer.
func (g *Game) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%q:", g.Title)
	for _, p := range g.players {
		fmt.Fprintf(&buf, " %q%v", p.Label, p.Strategies)
	}
	return buf.String()
}
