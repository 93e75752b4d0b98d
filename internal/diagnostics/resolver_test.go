package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/reviewfang/internal/review"
)

const resolverDoc = "package main\n\nfunc run() {\n\tdefer f.Close()\n}\n"

func testFinding(line int, snippet string) review.Finding {
	return review.Finding{
		Issue:       "leak",
		Description: "f may be nil",
		Location:    review.Location{Line: line, Snippet: snippet},
	}
}

// TestResolve_FirstOccurrence verifies snippet anchoring on the reported
// line.
func TestResolve_FirstOccurrence(t *testing.T) {
	t.Parallel()

	span, ok := Resolve(testFinding(4, "f.Close()"), resolverDoc)
	require.True(t, ok)

	assert.Equal(t, Position{Line: 3, Character: 7}, span.Start)
	assert.Equal(t, Position{Line: 3, Character: 16}, span.End)
}

// TestResolve_UTF16Columns verifies that columns on non-ASCII lines are
// reported in UTF-16 code units, the unit host positions count.
func TestResolve_UTF16Columns(t *testing.T) {
	t.Parallel()

	doc := "a\n🙂🙂 f.Close()\n"

	span, ok := Resolve(testFinding(2, "f.Close()"), doc)
	require.True(t, ok)

	// Each emoji is four bytes but two UTF-16 units.
	assert.Equal(t, Position{Line: 1, Character: 5}, span.Start)
	assert.Equal(t, Position{Line: 1, Character: 14}, span.End)
}

// TestResolve_Unresolvable verifies the drop cases: snippet absent from the
// line, line out of range, and empty snippet.
func TestResolve_Unresolvable(t *testing.T) {
	t.Parallel()

	_, ok := Resolve(testFinding(4, "g.Close()"), resolverDoc)
	assert.False(t, ok)

	_, ok = Resolve(testFinding(99, "f.Close()"), resolverDoc)
	assert.False(t, ok)

	_, ok = Resolve(testFinding(0, "f.Close()"), resolverDoc)
	assert.False(t, ok)

	_, ok = Resolve(testFinding(4, ""), resolverDoc)
	assert.False(t, ok)
}

// TestApplyFindings verifies that unresolvable findings are dropped
// individually while the rest of the batch lands.
func TestApplyFindings(t *testing.T) {
	t.Parallel()

	store := NewStore()
	findings := []review.Finding{
		testFinding(4, "f.Close()"),
		testFinding(4, "hallucinated"),
		testFinding(3, "func run()"),
	}

	applied := ApplyFindings(store, findings, resolverDoc)

	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, store.Len())
}

// TestApplyFindings_MessageFormat verifies the issue/description join.
func TestApplyFindings_MessageFormat(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ApplyFindings(store, []review.Finding{testFinding(4, "f.Close()")}, resolverDoc)

	published := store.Flatten()
	require.Len(t, published, 1)
	assert.Equal(t, "leak: f may be nil", published[0].Message)
}
