package polytope

import (
	"fmt"
)

// Enumerator visits every vertex of a polytope exactly once.
//
// Vertices are produced lazily, in the order the engine discovers them.
// Enumeration is restartable: each call starts from scratch and shares
// no state with previous calls. If visit returns an error, enumeration
// stops and the error is returned.
type Enumerator[T any] interface {
	Enumerate(p *Polytope[T], visit func(Vertex[T]) error) error
}

// Engine selects a vertex enumeration algorithm.
type Engine uint8

const (
	// Pivoting walks the graph of feasible bases by simplex pivots.
	Pivoting Engine = iota
	// BasisEnumeration solves every candidate basis independently.
	BasisEnumeration
)

var engineStr = [...]string{
	"pivoting",
	"basis-enumeration",
}

func (e Engine) String() string {
	return engineStr[e]
}

// NewEnumerator returns the enumerator implementing the given engine.
func NewEnumerator[T any](e Engine) Enumerator[T] {
	switch e {
	case Pivoting:
		return PivotEngine[T]{}
	case BasisEnumeration:
		return BasisEngine[T]{}
	default:
		panic(fmt.Sprintf("unknown enumeration engine: %d", e))
	}
}

// NumericInstabilityError is returned in inexact domains when the
// tolerance could not resolve a degenerate tie: either a pivot landed
// outside the polytope, or a vertex pair failed the best-response check.
type NumericInstabilityError struct {
	// Basis and Constraint identify the pivot, if any.
	Basis      []int
	Constraint int
	Slack      float64
	// Reason describes a failure detected outside the pivot search.
	Reason string
}

func (e *NumericInstabilityError) Error() string {
	if e.Reason != "" {
		return "numeric instability: " + e.Reason
	}
	return fmt.Sprintf("numeric instability: pivot to basis %v violates constraint %d (slack %g)",
		e.Basis, e.Constraint, e.Slack)
}
