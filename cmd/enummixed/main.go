// Compute all Nash equilibria of a two-player game by enumerating the
// extreme points of the players' best-response polytopes.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/golang/glog"

	"github.com/timpalpant/nash"
	"github.com/timpalpant/nash/enummixed"
	"github.com/timpalpant/nash/nfg"
	"github.com/timpalpant/nash/num"
	"github.com/timpalpant/nash/polytope"
	"github.com/timpalpant/nash/render"
)

const version = "0.3.0"

func printBanner() {
	fmt.Fprintln(os.Stderr, "Compute Nash equilibria by enumerating extreme points")
	fmt.Fprintf(os.Stderr, "nash version %s\n\n", version)
}

func main() {
	decimals := flag.Int("d", 6, "Compute using floating-point arithmetic; display results with this many decimals")
	noElim := flag.Bool("D", false, "Don't eliminate dominated strategies first")
	useBasis := flag.Bool("L", false, "Enumerate vertices by solving every basis instead of pivoting")
	showConnect := flag.Bool("c", false, "Output connectedness information")
	quiet := flag.Bool("q", false, "Quiet mode (suppresses banner)")
	showVersion := flag.Bool("version", false, "Print version information")
	adjacency := flag.String("adjacency", enummixed.EdgeAdjacency.String(),
		"When equilibria are connected: edge or shared-vertex")
	parallel := flag.Bool("P", false, "Enumerate the two polytopes in parallel")
	pprofAddr := flag.String("pprof_addr", "", "Serve pprof on this address if set")
	flag.Usage = func() {
		printBanner()
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [file]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "If file is not specified, reads the game from standard input.")
		fmt.Fprintln(os.Stderr, "With no options, reports all Nash equilibria found.")
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

	useFloat := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "d" {
			useFloat = true
		}
	})

	opts := enummixed.DefaultOptions()
	opts.Reduce.Eliminate = !*noElim
	opts.Connectedness = *showConnect
	opts.ParallelEnumeration = *parallel
	if *useBasis {
		opts.Engine = polytope.BasisEnumeration
	}

	err := func() error {
		adj, err := enummixed.ParseAdjacency(*adjacency)
		if err != nil {
			return err
		}
		opts.Adjacency = adj

		g, err := readGame(flag.Arg(0))
		if err != nil {
			return err
		}

		if useFloat {
			return run[float64](g, num.NewFloat(), render.DecimalFormatter{Decimals: int32(*decimals)}, opts)
		}
		return run[*big.Rat](g, num.Rational{}, render.RationalFormatter{}, opts)
	}()

	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

func run[T any](g *nash.Game, f num.Field[T], formatter render.Formatter[T], opts enummixed.Options) error {
	solution, err := enummixed.NewSolver(f, opts).Solve(g)
	if err != nil {
		return err
	}

	r := render.NewCSV(os.Stdout, formatter)
	for _, p := range solution.Equilibria {
		if err := r.Render(p, render.EquilibriumLabel); err != nil {
			return err
		}
	}

	if opts.Connectedness {
		return r.RenderCliques(solution.CliqueProfiles(), enummixed.CliqueLabel)
	}
	return nil
}
