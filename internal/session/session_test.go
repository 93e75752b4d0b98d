package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/reviewfang/pkg/syntax"
)

const sessionDoc = "func a(){}\nfunc b(){}\n"

func openTestSession(t *testing.T) (*Manager, *Session) {
	t.Helper()

	manager := NewManager()

	sess, err := manager.Open(context.Background(), "file:///tmp/main.go", "go", []byte(sessionDoc))
	require.NoError(t, err)

	return manager, sess
}

// TestManager_OpenClose verifies session lifecycle and lookup.
func TestManager_OpenClose(t *testing.T) {
	t.Parallel()

	manager, sess := openTestSession(t)

	assert.Equal(t, "go", sess.Language())
	assert.Equal(t, 1, manager.Len())

	got, ok := manager.Get(sess.URI())
	require.True(t, ok)
	assert.Same(t, sess, got)

	manager.Close(sess.URI())
	assert.Equal(t, 0, manager.Len())

	_, ok = manager.Get(sess.URI())
	assert.False(t, ok)
}

// TestManager_Open_Unsupported verifies rejection of unknown languages and
// binary content.
func TestManager_Open_Unsupported(t *testing.T) {
	t.Parallel()

	manager := NewManager()

	_, err := manager.Open(context.Background(), "file:///tmp/readme.unknown", "", []byte("hi"))
	require.ErrorIs(t, err, ErrUnsupportedDocument)

	_, err = manager.Open(context.Background(), "file:///tmp/blob.go", "go", []byte("ELF\x00\x01"))
	require.ErrorIs(t, err, ErrUnsupportedDocument)
}

// TestSession_ApplyRanged verifies incremental edit handling: the text is
// spliced and the rebuilt index spans the new length.
func TestSession_ApplyRanged(t *testing.T) {
	t.Parallel()

	_, sess := openTestSession(t)

	err := sess.ApplyRanged(context.Background(), syntax.Change{
		StartLine: 1, StartChar: 5,
		EndLine: 1, EndChar: 6,
		Text: "renamed",
	})
	require.NoError(t, err)

	assert.Equal(t, "func a(){}\nfunc renamed(){}\n", string(sess.Text()))
	assert.Equal(t, uint(len(sess.Text())), sess.Index().Interval().End)
}

// TestSession_ApplyRanged_Sequential verifies that consecutive ranged edits
// keep text, tree, and index in step: offsets of the second edit are
// computed against the text produced by the first.
func TestSession_ApplyRanged_Sequential(t *testing.T) {
	t.Parallel()

	_, sess := openTestSession(t)

	err := sess.ApplyRanged(context.Background(), syntax.Change{
		StartLine: 0, StartChar: 5,
		EndLine: 0, EndChar: 6,
		Text: "first",
	})
	require.NoError(t, err)

	err = sess.ApplyRanged(context.Background(), syntax.Change{
		StartLine: 1, StartChar: 5,
		EndLine: 1, EndChar: 6,
		Text: "second",
	})
	require.NoError(t, err)

	assert.Equal(t, "func first(){}\nfunc second(){}\n", string(sess.Text()))
	assert.Equal(t, uint(len(sess.Text())), sess.Index().Interval().End)
}

// TestSession_ReplaceText verifies whole-text replacement.
func TestSession_ReplaceText(t *testing.T) {
	t.Parallel()

	_, sess := openTestSession(t)

	newDoc := "func only(){}\n"
	require.NoError(t, sess.ReplaceText(context.Background(), []byte(newDoc)))

	assert.Equal(t, newDoc, string(sess.Text()))
	assert.Equal(t, uint(len(newDoc)), sess.Index().Interval().End)
}

// TestSession_ReviewFlag verifies the at-most-one-outstanding-review gate.
func TestSession_ReviewFlag(t *testing.T) {
	t.Parallel()

	_, sess := openTestSession(t)

	require.True(t, sess.TryBeginReview())
	assert.False(t, sess.TryBeginReview())
	assert.True(t, sess.Reviewing())

	sess.EndReview()
	assert.False(t, sess.Reviewing())
	assert.True(t, sess.TryBeginReview())
}
