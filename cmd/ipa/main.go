// Compute an approximate Nash equilibrium of an n-player game by iterated
// polymatrix approximation.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/golang/glog"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/nfg"
	"github.com/timpalpant/nash/polymatrix"
	"github.com/timpalpant/nash/render"
)

const (
	version = "0.3.0"
	// Label of a final profile that did not converge.
	notConvergedLabel = "NC"
)

func printBanner() {
	fmt.Fprintln(os.Stderr, "Compute Nash equilibria using iterated polymatrix approximation")
	fmt.Fprintf(os.Stderr, "nash version %s\n\n", version)
}

func main() {
	defaults := polymatrix.DefaultOptions()
	decimals := flag.Int("d", 6, "Display results with this many decimals")
	quiet := flag.Bool("q", false, "Quiet mode (suppresses banner)")
	verbose := flag.Bool("V", false, "Verbose mode (shows intermediate profiles)")
	showVersion := flag.Bool("version", false, "Print version information")
	noElim := flag.Bool("D", false, "Don't eliminate dominated strategies first")
	alpha := flag.Float64("alpha", defaults.Alpha, "Weight of each approximation's solution when recombining")
	stepSize := flag.Float64("step_size", defaults.StepSize, "Step size of the inner projected gradient play")
	innerIter := flag.Int("inner_iter", defaults.InnerIterations, "Gradient steps per approximation")
	maxIter := flag.Int("max_iter", defaults.MaxIterations, "Maximum number of approximations to solve")
	tol := flag.Float64("tol", defaults.Tolerance, "Stop once no weight changes by more than this")
	randomStart := flag.Bool("random_start", false, "Start from a random profile instead of the uniform one")
	seed := flag.Int64("seed", 123, "Random seed for -random_start")
	pprofAddr := flag.String("pprof_addr", "", "Serve pprof on this address if set")
	flag.Usage = func() {
		printBanner()
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [file]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "If file is not specified, reads the game from standard input.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		printBanner()
		return
	}
	if !*quiet {
		printBanner()
	}
	if *pprofAddr != "" {
		go http.ListenAndServe(*pprofAddr, nil)
	}

	opts := polymatrix.Options{
		Reduce:          defaults.Reduce,
		Alpha:           *alpha,
		StepSize:        *stepSize,
		InnerIterations: *innerIter,
		MaxIterations:   *maxIter,
		Tolerance:       *tol,
		Parallel:        defaults.Parallel,
	}
	opts.Reduce.Eliminate = !*noElim
	r := render.NewCSV[float64](os.Stdout, render.DecimalFormatter{Decimals: int32(*decimals)})

	result, err := func() (*polymatrix.Result, error) {
		g, err := readGame(flag.Arg(0))
		if err != nil {
			return nil, err
		}

		var start nash.Profile[float64]
		if *randomStart {
			start = polymatrix.RandomProfile(g, rand.New(rand.NewSource(*seed)))
		}

		solver := polymatrix.NewSolver(opts)
		if *verbose {
			solver.OnIterate = func(iter int, p nash.Profile[float64], delta float64) {
				if err := r.Render(p, fmt.Sprint(iter)); err != nil {
					glog.Warningf("Unable to render iteration %d: %v", iter, err)
				}
			}
		}

		result, err := solver.Solve(g, start)
		if err != nil {
			return nil, err
		}

		label := render.EquilibriumLabel
		if result.State != polymatrix.Solved {
			label = notConvergedLabel
		}
		return result, r.Render(result.Profile, label)
	}()

	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if result.State != polymatrix.Solved {
		fmt.Fprintf(os.Stderr, "Error: no convergence after %d iterations (last update %g, regret %g)\n",
			result.Iterations, result.Delta, result.Regret)
		os.Exit(1)
	}
}

func readGame(filename string) (*nash.Game, error) {
	if filename == "" {
		return nfg.Read(os.Stdin)
	}
	glog.Infof("Loading game from: %v", filename)
	return nfg.ReadFile(filename)
}
