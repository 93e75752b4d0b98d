package rangeindex

// Node is one node of a range-indexed tree: a value, the interval it
// occupies, and an ordered map of child nodes keyed by their own intervals.
// Children are exclusively owned by their parent; removing a map entry
// discards the subtree rooted there.
//
// Correctness of Find's early termination assumes sibling intervals are
// pairwise non-overlapping and ordered consistently with their position in
// the key space. This holds naturally for syntax-node children (disjoint
// sub-spans of the parent span) and is assumed, not enforced, elsewhere.
type Node[T any, R any] struct {
	value    T
	interval Interval[R]
	children *IntervalMap[*Node[T, R], R]
}

// NewNode creates a node occupying interval with the given value and no
// children. Value and interval are immutable after construction.
func NewNode[T any, R any](interval Interval[R], value T) *Node[T, R] {
	return &Node[T, R]{
		value:    value,
		interval: interval,
		children: NewIntervalMap[*Node[T, R], R](),
	}
}

// Value returns the node's value.
func (n *Node[T, R]) Value() T {
	return n.value
}

// Interval returns the node's own span.
func (n *Node[T, R]) Interval() Interval[R] {
	return n.interval
}

// Len returns the number of direct children.
func (n *Node[T, R]) Len() int {
	return n.children.Len()
}

// AddChild inserts a new leaf child at interval, overwriting any existing
// child whose interval compares equal.
func (n *Node[T, R]) AddChild(interval Interval[R], value T) *Node[T, R] {
	child := NewNode(interval, value)
	n.children.Set(interval, child)

	return child
}

// AddChildNode attaches an existing node (and its subtree) as a direct
// child, keyed by the node's own interval. An existing child with an equal
// interval is silently replaced.
func (n *Node[T, R]) AddChildNode(child *Node[T, R]) {
	n.children.Set(child.interval, child)
}

// RemoveChild deletes the direct child whose interval compares equal to
// interval. No-op if absent.
func (n *Node[T, R]) RemoveChild(interval Interval[R]) {
	n.children.Delete(interval)
}

// Child returns the direct child whose interval compares equal to interval.
func (n *Node[T, R]) Child(interval Interval[R]) (*Node[T, R], bool) {
	return n.children.Get(interval)
}

// matches reports whether a child occupying candidate belongs to the result
// set for query. Intersects is asymmetric (see Interval.Intersects); the
// disjunction with Inside is exactly what covers both a child containing the
// query and a child nested within it.
func matches[R any](candidate, query Interval[R]) bool {
	return candidate.Intersects(query) || candidate.Inside(query)
}

// Find returns every direct child whose interval intersects query or lies
// inside it, in ascending map order. The child map is split at query's key;
// the scan walks outward from the split point in both directions and stops
// extending a direction at the first non-matching entry, which by the
// sibling-ordering assumption cannot be followed by further matches.
// Cost is O(log n + k) for k matches.
func (n *Node[T, R]) Find(query Interval[R]) []*Node[T, R] {
	var lower []*Node[T, R]

	n.children.DescendAtOrBelow(query, func(key Interval[R], child *Node[T, R]) bool {
		if !matches(key, query) {
			return false
		}

		lower = append(lower, child)

		return true
	})

	// lower was collected walking downward; flip it into map order.
	results := make([]*Node[T, R], 0, len(lower))
	for i := len(lower) - 1; i >= 0; i-- {
		results = append(results, lower[i])
	}

	n.children.AscendAbove(query, func(key Interval[R], child *Node[T, R]) bool {
		if !matches(key, query) {
			return false
		}

		results = append(results, child)

		return true
	})

	return results
}

// RemoveIntersecting deletes every direct child that Find(query) would
// return. Used to evict superseded entries before inserting a new one.
func (n *Node[T, R]) RemoveIntersecting(query Interval[R]) {
	// The map must not be mutated mid-iteration; Find collects first.
	for _, child := range n.Find(query) {
		n.children.Delete(child.interval)
	}
}

// ReplaceIntersecting removes every child intersecting query and inserts a
// new leaf child at query with value, giving the new entry overwrite
// semantics over anything it overlapped.
func (n *Node[T, R]) ReplaceIntersecting(query Interval[R], value T) *Node[T, R] {
	n.RemoveIntersecting(query)

	return n.AddChild(query, value)
}

// ForEach visits this node and then its children recursively in map order.
func (n *Node[T, R]) ForEach(visit func(node *Node[T, R])) {
	visit(n)
	n.ForEachChild(func(child *Node[T, R]) {
		child.ForEach(visit)
	})
}

// ForEachChild visits the direct children in map order.
func (n *Node[T, R]) ForEachChild(visit func(child *Node[T, R])) {
	n.children.ForEach(func(_ Interval[R], child *Node[T, R]) bool {
		visit(child)

		return true
	})
}
