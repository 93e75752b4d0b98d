// Package diagnostics anchors review findings to document positions and
// keeps them in a range-indexed store with overwrite-on-overlap semantics.
package diagnostics

import (
	"cmp"
	"math"

	"github.com/Sumatoshi-tech/reviewfang/pkg/rangeindex"
)

// Position is a zero-based (line, character) location, ordered
// lexicographically.
type Position struct {
	Line      uint32
	Character uint32
}

// comparePositions is the lexicographic comparator: line first, then
// character.
func comparePositions(a, b Position) int {
	if c := cmp.Compare(a.Line, b.Line); c != 0 {
		return c
	}

	return cmp.Compare(a.Character, b.Character)
}

// PositionInterval creates a position interval [start, end].
func PositionInterval(start, end Position) rangeindex.Interval[Position] {
	return rangeindex.NewInterval(start, end, comparePositions)
}

// documentSpan is the interval covering any possible document position,
// used as the root of a diagnostics tree.
func documentSpan() rangeindex.Interval[Position] {
	return PositionInterval(
		Position{Line: 0, Character: 0},
		Position{Line: math.MaxUint32, Character: math.MaxUint32},
	)
}
