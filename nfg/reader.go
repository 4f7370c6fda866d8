// Package nfg reads and writes strategic-form games in the Gambit .nfg
// text format, version 1.
package nfg

import (
	"io"
	"math/big"
	"strconv"
	"text/scanner"

	"github.com/pkg/errors"

	"github.com/timpalpant/nash"
)

// Read parses a game from r. Both the payoff-list and the outcome forms of
// the format are accepted, with players' strategies given either as counts
// or as lists of names. Any syntax error is reported as a wrapped
// nash.ErrMalformedGame.
func Read(r io.Reader) (*nash.Game, error) {
	p := newParser(r)
	g, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.scanErr != nil {
		return nil, p.scanErr
	}
	return g, nil
}

type parser struct {
	s       scanner.Scanner
	tok     rune
	scanErr error
}

func newParser(r io.Reader) *parser {
	p := &parser{}
	p.s.Init(r)
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.scanErr == nil {
			p.scanErr = errors.Wrapf(nash.ErrMalformedGame, "line %d: %s", s.Position.Line, msg)
		}
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	if p.scanErr != nil {
		return p.scanErr
	}
	line := p.s.Position.Line
	return errors.Wrapf(nash.ErrMalformedGame, "line %d: "+format, append([]interface{}{line}, args...)...)
}

func (p *parser) expect(tok rune, text string) error {
	if p.tok != tok || (text != "" && p.s.TokenText() != text) {
		want := text
		if want == "" {
			want = scanner.TokenString(tok)
		}
		return p.errorf("expected %s, got %q", want, p.s.TokenText())
	}
	p.next()
	return nil
}

func (p *parser) str() (string, error) {
	if p.tok != scanner.String {
		return "", p.errorf("expected quoted string, got %q", p.s.TokenText())
	}
	s, err := strconv.Unquote(p.s.TokenText())
	if err != nil {
		return "", p.errorf("invalid string %s", p.s.TokenText())
	}
	p.next()
	return s, nil
}

// number parses an integer, decimal or exponent literal, or a ratio of two
// such literals, with an optional sign.
func (p *parser) number() (*big.Rat, error) {
	text := ""
	if p.tok == '-' || p.tok == '+' {
		text = p.s.TokenText()
		p.next()
	}
	if p.tok != scanner.Int && p.tok != scanner.Float {
		return nil, p.errorf("expected number, got %q", p.s.TokenText())
	}
	text += p.s.TokenText()
	p.next()

	if p.tok == '/' {
		p.next()
		if p.tok != scanner.Int {
			return nil, p.errorf("expected denominator, got %q", p.s.TokenText())
		}
		text += "/" + p.s.TokenText()
		p.next()
	}

	x, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, p.errorf("invalid number %q", text)
	}
	return x, nil
}

func (p *parser) integer() (int, error) {
	if p.tok != scanner.Int {
		return 0, p.errorf("expected integer, got %q", p.s.TokenText())
	}
	n, err := strconv.Atoi(p.s.TokenText())
	if err != nil {
		return 0, p.errorf("invalid integer %q", p.s.TokenText())
	}
	p.next()
	return n, nil
}

func (p *parser) parse() (*nash.Game, error) {
	if err := p.expect(scanner.Ident, "NFG"); err != nil {
		return nil, err
	}
	if err := p.expect(scanner.Int, "1"); err != nil {
		return nil, err
	}
	if p.tok != scanner.Ident || (p.s.TokenText() != "R" && p.s.TokenText() != "D") {
		return nil, p.errorf("expected R or D, got %q", p.s.TokenText())
	}
	p.next()

	title, err := p.str()
	if err != nil {
		return nil, err
	}
	players, err := p.players()
	if err != nil {
		return nil, err
	}
	if err := p.strategies(players); err != nil {
		return nil, err
	}

	comment := ""
	if p.tok == scanner.String {
		if comment, err = p.str(); err != nil {
			return nil, err
		}
	}

	nProfiles := 1
	for _, pl := range players {
		nProfiles *= len(pl.Strategies)
	}

	var payoffs [][]*big.Rat
	if p.tok == '{' {
		payoffs, err = p.outcomes(len(players), nProfiles)
	} else {
		payoffs, err = p.payoffs(len(players), nProfiles)
	}
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected %q after payoffs", p.s.TokenText())
	}

	g, err := nash.NewGame(title, players, payoffs)
	if err != nil {
		return nil, err
	}
	g.Comment = comment
	return g, nil
}

func (p *parser) players() ([]nash.Player, error) {
	if err := p.expect('{', ""); err != nil {
		return nil, err
	}
	var players []nash.Player
	for p.tok != '}' {
		label, err := p.str()
		if err != nil {
			return nil, err
		}
		players = append(players, nash.Player{Label: label})
	}
	p.next()

	if len(players) == 0 {
		return nil, p.errorf("game has no players")
	}
	return players, nil
}

func (p *parser) strategies(players []nash.Player) error {
	if err := p.expect('{', ""); err != nil {
		return err
	}

	nProfiles := 1
	for i := range players {
		switch p.tok {
		case scanner.Int:
			n, err := p.integer()
			if err != nil {
				return err
			}
			if n < 1 {
				return p.errorf("player %d has %d strategies", i+1, n)
			}
			if n > nash.MaxProfiles/nProfiles {
				return p.errorf("game has more than %d pure-strategy profiles", nash.MaxProfiles)
			}
			for s := 1; s <= n; s++ {
				players[i].Strategies = append(players[i].Strategies, strconv.Itoa(s))
			}
		case '{':
			p.next()
			for p.tok != '}' {
				name, err := p.str()
				if err != nil {
					return err
				}
				players[i].Strategies = append(players[i].Strategies, name)
			}
			p.next()
			if len(players[i].Strategies) == 0 {
				return p.errorf("player %d has no strategies", i+1)
			}
			if len(players[i].Strategies) > nash.MaxProfiles/nProfiles {
				return p.errorf("game has more than %d pure-strategy profiles", nash.MaxProfiles)
			}
		default:
			return p.errorf("expected strategies of player %d, got %q", i+1, p.s.TokenText())
		}
		nProfiles *= len(players[i].Strategies)
	}

	return p.expect('}', "")
}

func (p *parser) payoffs(nPlayers, nProfiles int) ([][]*big.Rat, error) {
	payoffs := make([][]*big.Rat, nProfiles)
	for idx := range payoffs {
		payoffs[idx] = make([]*big.Rat, nPlayers)
		for pl := range payoffs[idx] {
			x, err := p.number()
			if err != nil {
				return nil, errors.Wrapf(err, "payoff to player %d in profile %d", pl+1, idx+1)
			}
			payoffs[idx][pl] = x
		}
	}
	return payoffs, nil
}

func (p *parser) outcomes(nPlayers, nProfiles int) ([][]*big.Rat, error) {
	p.next()

	var outcomes [][]*big.Rat
	for p.tok != '}' {
		if err := p.expect('{', ""); err != nil {
			return nil, err
		}
		if _, err := p.str(); err != nil {
			return nil, err
		}

		outcome := make([]*big.Rat, 0, nPlayers)
		for p.tok != '}' {
			if p.tok == ',' {
				p.next()
				continue
			}
			x, err := p.number()
			if err != nil {
				return nil, errors.Wrapf(err, "outcome %d", len(outcomes)+1)
			}
			outcome = append(outcome, x)
		}
		p.next()

		if len(outcome) != nPlayers {
			return nil, p.errorf("outcome %d has %d payoffs, expected %d", len(outcomes)+1, len(outcome), nPlayers)
		}
		outcomes = append(outcomes, outcome)
	}
	p.next()

	zero := make([]*big.Rat, nPlayers)
	for i := range zero {
		zero[i] = new(big.Rat)
	}

	payoffs := make([][]*big.Rat, nProfiles)
	for idx := range payoffs {
		k, err := p.integer()
		if err != nil {
			return nil, errors.Wrapf(err, "outcome of profile %d", idx+1)
		}
		switch {
		case k == 0:
			payoffs[idx] = zero
		case k <= len(outcomes):
			payoffs[idx] = outcomes[k-1]
		default:
			return nil, p.errorf("profile %d refers to undefined outcome %d", idx+1, k)
		}
	}
	return payoffs, nil
}
