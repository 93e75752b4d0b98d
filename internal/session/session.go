// Package session owns per-document state: the live text, the incrementally
// parsed syntax tree and its range index, the diagnostics store, and the
// review-in-progress flag. Sessions are created on open and torn down on
// close, so nothing accumulates across the process lifetime.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/reviewfang/internal/diagnostics"
	"github.com/Sumatoshi-tech/reviewfang/pkg/syntax"
	"github.com/Sumatoshi-tech/reviewfang/pkg/textutil"
)

// ErrUnsupportedDocument is returned when no tree-sitter language matches a
// document.
var ErrUnsupportedDocument = errors.New("unsupported document language")

// Session is the state of one open document. A document owns exactly one
// syntax index and one diagnostics store; neither is shared across
// documents. All mutation happens in host event handlers, one at a time;
// only the in-progress flag is touched from a review continuation.
type Session struct {
	uri         string
	language    string
	text        []byte
	parser      *syntax.Parser
	tree        *sitter.Tree
	index       *syntax.Index
	diagnostics *diagnostics.Store
	inProgress  atomic.Bool
}

// URI returns the document identifier.
func (s *Session) URI() string {
	return s.uri
}

// Language returns the detected tree-sitter language.
func (s *Session) Language() string {
	return s.language
}

// Text returns the live document text.
func (s *Session) Text() []byte {
	return s.text
}

// Index returns the syntax range index built from the latest parse.
func (s *Session) Index() *syntax.Index {
	return s.index
}

// Diagnostics returns the document's diagnostics store.
func (s *Session) Diagnostics() *diagnostics.Store {
	return s.diagnostics
}

// ApplyRanged applies one ranged content change: the previous tree's
// position bookkeeping is shifted, the text is spliced, and a re-parse
// reuses unchanged subtrees. The syntax index is rebuilt wholesale from the
// fresh tree.
func (s *Session) ApplyRanged(ctx context.Context, change syntax.Change) error {
	syntax.ApplyEdit(s.tree, s.text, change)

	newText := syntax.Splice(s.text, change)

	tree, err := s.parser.Parse(ctx, newText, s.tree)
	if err != nil {
		// The previous tree's bookkeeping has already shifted; recover
		// with a full parse of the spliced text rather than leaving text
		// and tree out of step.
		return s.ReplaceText(ctx, newText)
	}

	s.text = newText
	s.tree = tree
	s.index = syntax.BuildIndex(tree.RootNode())

	return nil
}

// ReplaceText replaces the whole document text and parses from scratch,
// dropping the previous tree.
func (s *Session) ReplaceText(ctx context.Context, text []byte) error {
	tree, err := s.parser.Parse(ctx, text, nil)
	if err != nil {
		return fmt.Errorf("parse replacement text: %w", err)
	}

	s.text = text
	s.tree = tree
	s.index = syntax.BuildIndex(tree.RootNode())

	return nil
}

// TryBeginReview sets the review-in-progress flag if it was clear. A false
// return means a review is already outstanding for this document; the
// caller skips triggering another one. Edits arriving while a review is
// outstanding are not queued; the next qualifying edit after completion
// re-checks the flag.
func (s *Session) TryBeginReview() bool {
	return s.inProgress.CompareAndSwap(false, true)
}

// EndReview clears the review-in-progress flag. Called in the completion
// continuation on both success and failure so a future edit can retry.
func (s *Session) EndReview() {
	s.inProgress.Store(false)
}

// Reviewing reports whether a review is outstanding.
func (s *Session) Reviewing() bool {
	return s.inProgress.Load()
}

// Manager owns the sessions of all open documents, keyed by URI.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open creates a session for a newly opened document, parsing it and
// building its syntax index. An existing session at the same URI is
// replaced.
func (m *Manager) Open(ctx context.Context, uri, languageID string, text []byte) (*Session, error) {
	if textutil.IsBinary(text) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, uri)
	}

	language := syntax.DetectLanguage(languageID, uri)
	if language == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, uri)
	}

	parser, err := syntax.NewParser(language)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}

	tree, err := parser.Parse(ctx, text, nil)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}

	sess := &Session{
		uri:         uri,
		language:    language,
		text:        text,
		parser:      parser,
		tree:        tree,
		index:       syntax.BuildIndex(tree.RootNode()),
		diagnostics: diagnostics.NewStore(),
	}

	m.mu.Lock()
	m.sessions[uri] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns the session for uri, if open.
func (m *Manager) Get(uri string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[uri]

	return sess, ok
}

// Close tears down the session for uri, dropping its trees and diagnostics.
func (m *Manager) Close(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, uri)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
