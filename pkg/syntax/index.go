package syntax

import (
	"cmp"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/reviewfang/pkg/rangeindex"
)

// Index is a range-indexed tree over syntax nodes: one entry per named
// syntax node, keyed by its byte-offset span. It is rebuilt wholesale from a
// fresh syntax tree on every (re)parse.
type Index = rangeindex.Node[sitter.Node, uint]

// Span is a byte-offset region of the document.
type Span struct {
	Start uint
	End   uint
}

// ByteInterval creates a byte-offset interval.
func ByteInterval(start, end uint) rangeindex.Interval[uint] {
	return rangeindex.NewInterval(start, end, cmp.Compare[uint])
}

// BuildIndex projects a syntax tree root into a fresh Index, recursing over
// named children in their given order.
func BuildIndex(root sitter.Node) *Index {
	indexed := rangeindex.NewNode(ByteInterval(root.StartByte(), root.EndByte()), root)

	attachChildren(indexed, root)

	return indexed
}

func attachChildren(indexed *Index, tsNode sitter.Node) {
	count := tsNode.NamedChildCount()

	for idx := range count {
		child := tsNode.NamedChild(idx)
		if child.IsNull() {
			continue
		}

		sub := rangeindex.NewNode(ByteInterval(child.StartByte(), child.EndByte()), child)
		attachChildren(sub, child)
		indexed.AddChildNode(sub)
	}
}

// EnclosingBlock descends the index from root toward the smallest node of a
// block-like category fully containing query. With grabParent set, the span
// of the matched node's parent is returned instead of its own, carving out
// the surrounding declaration rather than the bare block. Falls back to the
// root span when nothing narrower contains the query.
func EnclosingBlock(root *Index, query rangeindex.Interval[uint], blockTypes map[string]bool, grabParent bool) Span {
	parent := root
	best := root

	for {
		results := best.Find(query)
		if len(results) == 0 {
			break
		}

		// Ties prefer the first match in map order.
		next := results[0]
		if !query.Inside(next.Interval()) {
			break
		}

		parent, best = best, next

		if blockTypes[best.Value().Type()] || best.Len() == 0 {
			break
		}
	}

	chosen := best
	if grabParent && blockTypes[best.Value().Type()] {
		chosen = parent
	}

	return Span{Start: chosen.Interval().Start, End: chosen.Interval().End}
}

// functionTypes are the syntax categories treated as top-level function
// declarations across the supported grammars.
var functionTypes = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
	"function_definition":  true,
	"function_item":        true,
	"method":               true,
}

// nameTypes are the syntax categories carrying a declaration's name.
var nameTypes = map[string]bool{
	"identifier":       true,
	"field_identifier": true,
	"name":             true,
}

// TopLevelFunctions scans the root's direct children for function
// declarations whose declared name is in names. An empty names list matches
// every function declaration.
func TopLevelFunctions(root *Index, names []string, src []byte) []Span {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var spans []Span

	root.ForEachChild(func(child *Index) {
		tsNode := child.Value()
		if !functionTypes[tsNode.Type()] {
			return
		}

		if len(wanted) > 0 && !wanted[declaredName(tsNode, src)] {
			return
		}

		spans = append(spans, Span{Start: child.Interval().Start, End: child.Interval().End})
	})

	return spans
}

// declaredName returns the text of the first name-carrying child of a
// declaration node, or "".
func declaredName(tsNode sitter.Node, src []byte) string {
	count := tsNode.NamedChildCount()

	for idx := range count {
		child := tsNode.NamedChild(idx)
		if child.IsNull() {
			continue
		}

		if nameTypes[child.Type()] {
			return nodeText(child, src)
		}
	}

	return ""
}

// nodeText extracts a node's source text, returning "" on out-of-range
// spans.
func nodeText(tsNode sitter.Node, src []byte) string {
	start := tsNode.StartByte()
	end := tsNode.EndByte()

	if end > uint(len(src)) || start > end {
		return ""
	}

	return string(src[start:end])
}
