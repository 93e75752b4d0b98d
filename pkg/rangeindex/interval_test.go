package rangeindex

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intCmp(a, b int) int { return cmp.Compare(a, b) }

func iv(start, end int) Interval[int] {
	return NewInterval(start, end, intCmp)
}

// TestContains verifies point containment at and around the endpoints.
func TestContains(t *testing.T) {
	t.Parallel()

	span := iv(5, 10)

	assert.True(t, span.Contains(5))
	assert.True(t, span.Contains(7))
	assert.True(t, span.Contains(10))
	assert.False(t, span.Contains(4))
	assert.False(t, span.Contains(11))
}

// TestIntersects_SharedEndpoint verifies overlap detection when an endpoint
// of the other interval lies inside.
func TestIntersects_SharedEndpoint(t *testing.T) {
	t.Parallel()

	assert.True(t, iv(0, 10).Intersects(iv(5, 15)))
	assert.True(t, iv(5, 15).Intersects(iv(0, 10)))
	assert.True(t, iv(0, 10).Intersects(iv(10, 20)))
	assert.False(t, iv(0, 10).Intersects(iv(11, 20)))
}

// TestIntersects_Asymmetry pins the documented asymmetry: an interval does
// not Intersect one that strictly contains it, while the containing interval
// does Intersect the contained one. Callers must pair Intersects with Inside;
// this behavior is relied upon and must not be "fixed".
func TestIntersects_Asymmetry(t *testing.T) {
	t.Parallel()

	inner := iv(4, 6)
	outer := iv(0, 10)

	assert.True(t, outer.Intersects(inner))
	assert.False(t, inner.Intersects(outer))
}

// TestInside verifies nesting, including reflexivity.
func TestInside(t *testing.T) {
	t.Parallel()

	assert.True(t, iv(4, 6).Inside(iv(0, 10)))
	assert.True(t, iv(0, 10).Inside(iv(0, 10)))
	assert.False(t, iv(0, 10).Inside(iv(4, 6)))
	assert.False(t, iv(4, 12).Inside(iv(0, 10)))
}

// TestCompare verifies the (start, end) total order.
func TestCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, iv(3, 7).Compare(iv(3, 7)))
	assert.Negative(t, iv(1, 9).Compare(iv(2, 3)))
	assert.Positive(t, iv(2, 3).Compare(iv(1, 9)))
	assert.Negative(t, iv(3, 5).Compare(iv(3, 7)))
	assert.Positive(t, iv(3, 7).Compare(iv(3, 5)))
}
