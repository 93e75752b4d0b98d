package diagnostics

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/reviewfang/internal/review"
	"github.com/Sumatoshi-tech/reviewfang/pkg/rangeindex"
)

// Resolve locates a finding's snippet within the live document text and
// returns the position interval it occupies. The snippet must occur
// verbatim on its reported 1-based line; the first occurrence wins. Returns
// false when the line is out of range or the snippet is not found (the
// model hallucinated content or line numbers drifted); the caller drops
// that single finding and continues.
func Resolve(finding review.Finding, text string) (rangeindex.Interval[Position], bool) {
	lineIdx := finding.Location.Line - 1
	if lineIdx < 0 {
		return rangeindex.Interval[Position]{}, false
	}

	lines := strings.Split(text, "\n")
	if lineIdx >= len(lines) {
		return rangeindex.Interval[Position]{}, false
	}

	snippet := finding.Location.Snippet
	if snippet == "" {
		return rangeindex.Interval[Position]{}, false
	}

	column := strings.Index(lines[lineIdx], snippet)
	if column < 0 {
		return rangeindex.Interval[Position]{}, false
	}

	// LSP positions count UTF-16 code units, not bytes.
	line := uint32(lineIdx)                              //nolint:gosec // bounded by line count
	start := uint32(utf16Width(lines[lineIdx][:column])) //nolint:gosec // bounded by line length
	width := uint32(utf16Width(snippet))                 //nolint:gosec // bounded by line length

	span := PositionInterval(
		Position{Line: line, Character: start},
		Position{Line: line, Character: start + width},
	)

	return span, true
}

// ApplyFindings resolves each finding against text and applies the
// resolvable ones to the store. Unresolvable findings are dropped
// individually; the rest of the batch is unaffected. Returns how many were
// applied.
func ApplyFindings(store *Store, findings []review.Finding, text string) int {
	applied := 0

	for _, finding := range findings {
		span, ok := Resolve(finding, text)
		if !ok {
			continue
		}

		store.Apply(span, Diagnostic{
			Message:  findingMessage(finding),
			Severity: protocol.DiagnosticSeverityWarning,
		})

		applied++
	}

	return applied
}

// utf16Width returns the length of s in UTF-16 code units.
func utf16Width(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func findingMessage(finding review.Finding) string {
	if finding.Description == "" {
		return finding.Issue
	}

	return finding.Issue + ": " + finding.Description
}
