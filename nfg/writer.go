package nfg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/timpalpant/nash"
)

// Write serializes g in the payoff-list form with named strategies.
func Write(w io.Writer, g *nash.Game) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "NFG 1 R %s {", strconv.Quote(g.Title))
	for p := 0; p < g.NumPlayers(); p++ {
		fmt.Fprintf(bw, " %s", strconv.Quote(g.Player(p).Label))
	}
	fmt.Fprint(bw, " }\n\n{ ")
	for p := 0; p < g.NumPlayers(); p++ {
		fmt.Fprint(bw, "{")
		for _, s := range g.Player(p).Strategies {
			fmt.Fprintf(bw, " %s", strconv.Quote(s))
		}
		fmt.Fprint(bw, " }\n")
	}
	fmt.Fprint(bw, "}\n")
	fmt.Fprintf(bw, "%s\n\n", strconv.Quote(g.Comment))

	for idx := 0; idx < g.NumProfiles(); idx++ {
		for p := 0; p < g.NumPlayers(); p++ {
			if idx > 0 || p > 0 {
				fmt.Fprint(bw, " ")
			}
			fmt.Fprint(bw, g.PayoffAt(idx, p).RatString())
		}
	}
	fmt.Fprint(bw, "\n")

	return bw.Flush()
}
