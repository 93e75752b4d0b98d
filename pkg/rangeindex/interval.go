// Package rangeindex provides a hierarchical range index: a generic closed
// interval with a caller-supplied comparator, an ordered interval map with
// split-at-key views, and a recursive range-indexed tree that supports
// sub-linear "find entries intersecting a query interval" and
// "replace entries intersecting a query interval" operations.
package rangeindex

// CompareFunc is a three-way comparator over the interval's value type.
// It returns a negative value when a < b, zero when a == b, and a positive
// value when a > b.
type CompareFunc[T any] func(a, b T) int

// Interval is an immutable closed range [Start, End] over an ordered value
// type. Ordering is defined entirely by the injected comparator; the type
// does not enforce Start <= End, callers are expected to construct intervals
// in non-decreasing order.
type Interval[T any] struct {
	Start T
	End   T
	cmp   CompareFunc[T]
}

// NewInterval creates an interval [start, end] ordered by cmp.
func NewInterval[T any](start, end T, cmp CompareFunc[T]) Interval[T] {
	return Interval[T]{Start: start, End: end, cmp: cmp}
}

// Contains reports whether the point x lies within [Start, End].
func (iv Interval[T]) Contains(x T) bool {
	return iv.cmp(iv.Start, x) <= 0 && iv.cmp(x, iv.End) <= 0
}

// Intersects reports whether either endpoint of other lies within this
// interval. The predicate is deliberately asymmetric: it misses the case
// where other strictly contains this interval without sharing an endpoint.
// Callers compensate by also checking Inside; the pair of predicates must
// be used together, as Node.Find does.
func (iv Interval[T]) Intersects(other Interval[T]) bool {
	return iv.Contains(other.Start) || iv.Contains(other.End)
}

// Inside reports whether this interval is nested within other.
// Reflexive: iv.Inside(iv) is true.
func (iv Interval[T]) Inside(other Interval[T]) bool {
	return iv.cmp(iv.Start, other.Start) >= 0 && iv.cmp(iv.End, other.End) <= 0
}

// Compare defines the total order used as the key space of the ordered
// interval map: primary key Start, tie-broken by End.
func (iv Interval[T]) Compare(other Interval[T]) int {
	if c := iv.cmp(iv.Start, other.Start); c != 0 {
		return c
	}

	return iv.cmp(iv.End, other.End)
}
