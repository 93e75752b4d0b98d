package rangeindex

import "github.com/google/btree"

// mapDegree is the B-tree degree for child maps. Child fan-out is usually
// small (syntax-node children, per-document diagnostics), so a low degree
// keeps nodes compact.
const mapDegree = 4

// entry is one key/value pair of an IntervalMap.
type entry[T any, R any] struct {
	key   Interval[R]
	value T
}

// IntervalMap is a balanced ordered map keyed by Interval, using the
// comparator-derived total order (Interval.Compare). It is a thin typed
// wrapper over a generic B-tree; the split views DescendAtOrBelow and
// AscendAbove alias the tree's storage and cost O(log n) to position with
// amortized O(1) steps, which is what makes Node's bounded bidirectional
// scan sub-linear.
type IntervalMap[T any, R any] struct {
	tree *btree.BTreeG[entry[T, R]]
}

// NewIntervalMap creates an empty ordered interval map.
func NewIntervalMap[T any, R any]() *IntervalMap[T, R] {
	less := func(a, b entry[T, R]) bool {
		return a.key.Compare(b.key) < 0
	}

	return &IntervalMap[T, R]{tree: btree.NewG(mapDegree, less)}
}

// Len returns the number of entries.
func (m *IntervalMap[T, R]) Len() int {
	return m.tree.Len()
}

// Get returns the value stored at a key comparing equal to key.
func (m *IntervalMap[T, R]) Get(key Interval[R]) (T, bool) {
	found, ok := m.tree.Get(entry[T, R]{key: key})
	if !ok {
		var zero T

		return zero, false
	}

	return found.value, true
}

// Set inserts value at key, silently replacing any entry whose key compares
// equal (last-write-wins).
func (m *IntervalMap[T, R]) Set(key Interval[R], value T) {
	m.tree.ReplaceOrInsert(entry[T, R]{key: key, value: value})
}

// Delete removes the entry whose key compares equal to key.
// No-op if absent; returns whether an entry was removed.
func (m *IntervalMap[T, R]) Delete(key Interval[R]) bool {
	_, ok := m.tree.Delete(entry[T, R]{key: key})

	return ok
}

// ForEach visits every entry in ascending key order. The visitor must not
// mutate the map. Returning false stops the traversal.
func (m *IntervalMap[T, R]) ForEach(visit func(key Interval[R], value T) bool) {
	m.tree.Ascend(func(e entry[T, R]) bool {
		return visit(e.key, e.value)
	})
}

// DescendAtOrBelow walks entries with key <= pivot in descending key order,
// starting from the greatest such entry. Returning false stops the walk.
func (m *IntervalMap[T, R]) DescendAtOrBelow(pivot Interval[R], visit func(key Interval[R], value T) bool) {
	m.tree.DescendLessOrEqual(entry[T, R]{key: pivot}, func(e entry[T, R]) bool {
		return visit(e.key, e.value)
	})
}

// AscendAbove walks entries with key strictly greater than pivot in ascending
// key order, starting from the least such entry. Entries comparing equal to
// pivot are excluded so a caller pairing both split views never visits the
// pivot key twice. Returning false stops the walk.
func (m *IntervalMap[T, R]) AscendAbove(pivot Interval[R], visit func(key Interval[R], value T) bool) {
	m.tree.AscendGreaterOrEqual(entry[T, R]{key: pivot}, func(e entry[T, R]) bool {
		if e.key.Compare(pivot) == 0 {
			return true
		}

		return visit(e.key, e.value)
	})
}
