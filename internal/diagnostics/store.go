package diagnostics

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/reviewfang/pkg/rangeindex"
)

// diagnosticSource tags published diagnostics with their origin.
const diagnosticSource = "reviewfang"

// Diagnostic is one position-anchored finding held by a Store.
type Diagnostic struct {
	Message  string
	Severity protocol.DiagnosticSeverity
}

// Store holds one document's diagnostics in a range-indexed tree keyed by
// position intervals. New entries are applied with replace-intersecting, so
// a fresh finding supersedes any stale finding overlapping its span instead
// of stacking over it. The store lives as long as its document's session.
type Store struct {
	root *rangeindex.Node[Diagnostic, Position]
}

// NewStore creates an empty diagnostics store.
func NewStore() *Store {
	return &Store{root: rangeindex.NewNode(documentSpan(), Diagnostic{})}
}

// Len returns the number of held diagnostics.
func (s *Store) Len() int {
	return s.root.Len()
}

// Apply records a diagnostic over span, evicting every previously held
// diagnostic whose span overlaps it.
func (s *Store) Apply(span rangeindex.Interval[Position], diag Diagnostic) {
	s.root.ReplaceIntersecting(span, diag)
}

// At returns the diagnostic stored exactly at span.
func (s *Store) At(span rangeindex.Interval[Position]) (Diagnostic, bool) {
	child, ok := s.root.Child(span)
	if !ok {
		return Diagnostic{}, false
	}

	return child.Value(), true
}

// Flatten produces the full diagnostics list for wholesale republication to
// the host, in position order.
func (s *Store) Flatten() []protocol.Diagnostic {
	published := make([]protocol.Diagnostic, 0, s.root.Len())
	source := diagnosticSource

	s.root.ForEachChild(func(child *rangeindex.Node[Diagnostic, Position]) {
		span := child.Interval()
		diag := child.Value()
		severity := diag.Severity

		published = append(published, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: span.Start.Line, Character: span.Start.Character},
				End:   protocol.Position{Line: span.End.Line, Character: span.End.Character},
			},
			Severity: &severity,
			Source:   &source,
			Message:  diag.Message,
		})
	})

	return published
}
