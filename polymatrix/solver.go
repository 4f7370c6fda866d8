// Package polymatrix approximates a single Nash equilibrium of an n-player
// game by repeatedly solving the polymatrix game that linearises each
// player's payoff around the current profile.
package polymatrix

import (
	"math"
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/num"
)

// State is the progress of a Solver through one solve.
type State uint8

const (
	Unsolved State = iota
	Iterating
	// Solved means the last update was smaller than the tolerance.
	Solved
	// NotConverged means the iteration limit was reached first. The
	// last iterate is still returned.
	NotConverged
)

var stateStr = [...]string{
	"Unsolved",
	"Iterating",
	"Solved",
	"NotConverged",
}

func (s State) String() string {
	return stateStr[s]
}

// Options configure a Solver.
type Options struct {
	Reduce nash.ReduceOptions
	// Alpha is the weight given to the solution of each approximation
	// when it is recombined with the current profile.
	Alpha float64
	// StepSize and InnerIterations control the projected gradient play
	// used to solve each approximation. Payoffs are first scaled to [0, 1].
	StepSize        float64
	InnerIterations int
	MaxIterations   int
	// Tolerance bounds the largest change of any weight in the final
	// iteration of a converged solve.
	Tolerance float64
	// Parallel builds each player's approximation concurrently.
	Parallel bool
}

func DefaultOptions() Options {
	return Options{
		Reduce: nash.ReduceOptions{
			Eliminate: true,
			Dominance: nash.StrictDominance,
		},
		Alpha:           0.5,
		StepSize:        0.1,
		InnerIterations: 50,
		MaxIterations:   1000,
		Tolerance:       1e-8,
		Parallel:        true,
	}
}

// Result is the outcome of a solve that ran to completion, converged or not.
type Result struct {
	// Profile is over the strategies of the game passed to Solve.
	Profile    nash.Profile[float64]
	State      State
	Iterations int
	// Delta is the magnitude of the last update.
	Delta float64
	// Regret is the largest gain available to any player by deviating
	// from Profile, in the game's own payoff units.
	Regret float64
}

// Solver computes approximate equilibria. It may be reused but not shared
// between goroutines.
type Solver struct {
	// OnIterate, if set, is called after every iteration with the current
	// profile over the original game's strategies.
	OnIterate func(iter int, p nash.Profile[float64], delta float64)

	opts  Options
	state State
}

func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts}
}

// State returns the state reached by the most recent call to Solve.
func (s *Solver) State() State {
	return s.state
}

func (s *Solver) transition(next State) {
	glog.V(2).Infof("polymatrix: %v -> %v", s.state, next)
	s.state = next
}

// Solve iterates from start, or from the uniform profile if start is nil.
// An error is returned only for invalid input; failing to converge within
// MaxIterations is reported through Result.State.
func (s *Solver) Solve(g *nash.Game, start nash.Profile[float64]) (*Result, error) {
	s.state = Unsolved
	if err := s.validateOptions(); err != nil {
		return nil, err
	}

	f := num.NewFloat()
	if start == nil {
		start = nash.UniformProfile[float64](g, f)
	} else if err := nash.Validate[float64](g, f, start); err != nil {
		return nil, errors.Wrap(err, "invalid starting profile")
	}

	reduction := nash.Reduce[float64](g, f, s.opts.Reduce)
	rg := reduction.Game
	sigma := renormalize(nash.Restrict(reduction, start))
	table, err := normalizedPayoffs(rg)
	if err != nil {
		return nil, err
	}

	s.transition(Iterating)
	approx := newApproximation(rg)
	next := clone(sigma)
	diff := make([][]float64, len(sigma))
	for i := range diff {
		diff[i] = make([]float64, len(sigma[i]))
	}

	result := &Result{State: NotConverged}
	logEvery := s.opts.MaxIterations / 10
	for iter := 1; iter <= s.opts.MaxIterations; iter++ {
		if err := s.buildApproximation(approx, rg, table, sigma); err != nil {
			return nil, err
		}
		tau := s.solveApproximation(approx, sigma)

		delta := 0.0
		for i := range sigma {
			floats.SubTo(diff[i], tau[i], sigma[i])
			floats.AddScaledTo(next[i], sigma[i], s.opts.Alpha, diff[i])
			delta = math.Max(delta, floats.Distance(next[i], sigma[i], math.Inf(1)))
		}
		sigma, next = next, sigma

		result.Iterations = iter
		result.Delta = delta
		if s.OnIterate != nil {
			s.OnIterate(iter, nash.Expand[float64](reduction, f, sigma), delta)
		}
		if logEvery > 0 && iter%logEvery == 0 {
			glog.Infof("After %d iterations, update magnitude %g, profile: %v", iter, delta, sigma)
		}
		if delta < s.opts.Tolerance {
			result.State = Solved
			break
		}
	}

	result.Profile = nash.Expand[float64](reduction, f, sigma)
	result.Regret = nash.Regret[float64](g, f, result.Profile)
	s.transition(result.State)
	glog.Infof("%v after %d iterations: update magnitude %g, regret %g",
		result.State, result.Iterations, result.Delta, result.Regret)
	return result, nil
}

func (s *Solver) validateOptions() error {
	switch {
	case s.opts.Alpha <= 0 || s.opts.Alpha > 1:
		return errors.Errorf("alpha must be in (0, 1], got %v", s.opts.Alpha)
	case s.opts.StepSize <= 0:
		return errors.Errorf("step size must be positive, got %v", s.opts.StepSize)
	case s.opts.InnerIterations < 1:
		return errors.Errorf("inner iterations must be positive, got %d", s.opts.InnerIterations)
	case s.opts.MaxIterations < 1:
		return errors.Errorf("max iterations must be positive, got %d", s.opts.MaxIterations)
	}
	return nil
}

func (s *Solver) buildApproximation(a *approximation, g *nash.Game, table [][]float64, sigma nash.Profile[float64]) error {
	if !s.opts.Parallel {
		for i := range sigma {
			if err := a.build(g, table, sigma, i); err != nil {
				return err
			}
		}
		return nil
	}

	var eg errgroup.Group
	for i := range sigma {
		i := i
		eg.Go(func() error {
			return a.build(g, table, sigma, i)
		})
	}
	return eg.Wait()
}

// solveApproximation runs simultaneous projected gradient play on the
// polymatrix game, starting from sigma.
func (s *Solver) solveApproximation(a *approximation, sigma nash.Profile[float64]) nash.Profile[float64] {
	tau := clone(sigma)
	next := clone(sigma)
	for iter := 0; iter < s.opts.InnerIterations; iter++ {
		for i := range tau {
			grad := allocFloatSlice(len(tau[i]))
			y := allocFloatSlice(len(tau[i]))
			a.gradient(tau, i, grad)
			floats.AddScaledTo(y, tau[i], s.opts.StepSize, grad)
			projectSimplex(y, next[i])
			freeFloatSlice(grad)
			freeFloatSlice(y)
		}
		tau, next = next, tau
	}
	return tau
}

// normalizedPayoffs returns the payoff table of g affinely scaled so that
// every payoff lies in [0, 1]. Scaling does not change the equilibria.
func normalizedPayoffs(g *nash.Game) ([][]float64, error) {
	table := nash.PayoffTable[float64](g, num.NewFloat())
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, payoffs := range table {
		for _, u := range payoffs {
			if math.IsInf(u, 0) {
				return nil, errors.Errorf("payoff %v is out of floating point range", u)
			}
			lo = math.Min(lo, u)
			hi = math.Max(hi, u)
		}
	}

	scale := 1.0
	if hi > lo {
		scale = 1 / (hi - lo)
	}
	for _, payoffs := range table {
		for p, u := range payoffs {
			payoffs[p] = (u - lo) * scale
		}
	}
	return table, nil
}

// RandomProfile returns a profile drawn uniformly from the product of the
// players' simplices.
func RandomProfile(g *nash.Game, rng *rand.Rand) nash.Profile[float64] {
	result := make(nash.Profile[float64], g.NumPlayers())
	for p := range result {
		result[p] = make([]float64, g.NumStrategies(p))
		for s := range result[p] {
			result[p][s] = rng.ExpFloat64()
		}
		floats.Scale(1/floats.Sum(result[p]), result[p])
	}
	return result
}

// renormalize rescales each player's weights to sum to one, falling back to
// the uniform distribution when none remain.
func renormalize(p nash.Profile[float64]) nash.Profile[float64] {
	for _, weights := range p {
		total := floats.Sum(weights)
		for s := range weights {
			if total > 0 {
				weights[s] /= total
			} else {
				weights[s] = 1 / float64(len(weights))
			}
		}
	}
	return p
}

func clone(p nash.Profile[float64]) nash.Profile[float64] {
	result := make(nash.Profile[float64], len(p))
	for i, weights := range p {
		result[i] = append([]float64(nil), weights...)
	}
	return result
}
