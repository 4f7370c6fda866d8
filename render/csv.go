// Package render writes mixed-strategy profiles as CSV lines of the form
// <label>,<weight>,<weight>,...
package render

import (
	"encoding/csv"
	"io"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/timpalpant/nash"
)

// Label of a profile that is an equilibrium.
const EquilibriumLabel = "NE"

// Formatter renders a single probability.
type Formatter[T any] interface {
	Format(x T) string
}

// RationalFormatter prints exact weights as integers or p/q.
type RationalFormatter struct{}

func (RationalFormatter) Format(x *big.Rat) string {
	return x.RatString()
}

// DecimalFormatter prints floating point weights with a fixed number of
// decimal places.
type DecimalFormatter struct {
	Decimals int32
}

func (f DecimalFormatter) Format(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(f.Decimals)
}

// CSV writes one line per rendered profile.
type CSV[T any] struct {
	w      *csv.Writer
	format Formatter[T]
}

func NewCSV[T any](w io.Writer, f Formatter[T]) *CSV[T] {
	return &CSV[T]{w: csv.NewWriter(w), format: f}
}

// Render writes p with the given label and flushes it.
func (c *CSV[T]) Render(p nash.Profile[T], label string) error {
	record := []string{label}
	for _, weights := range p {
		for _, w := range weights {
			record = append(record, c.format.Format(w))
		}
	}

	if err := c.w.Write(record); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// RenderCliques writes the members of each clique labeled with the
// clique's one-based index.
func (c *CSV[T]) RenderCliques(cliques [][]nash.Profile[T], label func(k int) string) error {
	for k, members := range cliques {
		for _, p := range members {
			if err := c.Render(p, label(k)); err != nil {
				return err
			}
		}
	}
	return nil
}
