package syntax

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Change is one ranged content change: the edited region of the previous
// text in zero-based line/character coordinates, and the replacement text.
type Change struct {
	StartLine uint
	StartChar uint
	EndLine   uint
	EndChar   uint
	Text      string
}

// ApplyEdit shifts oldTree's position bookkeeping to reflect ch, so that a
// subsequent Parse with oldTree reuses unchanged subtrees. oldText is the
// document content from before the change.
func ApplyEdit(oldTree *sitter.Tree, oldText []byte, ch Change) {
	startByte := PositionOffset(oldText, ch.StartLine, ch.StartChar)
	oldEndByte := PositionOffset(oldText, ch.EndLine, ch.EndChar)
	newEndByte := startByte + uint(len(ch.Text))

	startPoint := sitter.Point{Row: ch.StartLine, Column: ch.StartChar}
	oldEndPoint := sitter.Point{Row: ch.EndLine, Column: ch.EndChar}

	oldTree.Edit(sitter.InputEdit{
		StartIndex:  startByte,
		OldEndIndex: oldEndByte,
		NewEndIndex: newEndByte,
		StartPoint:  startPoint,
		OldEndPoint: oldEndPoint,
		NewEndPoint: advancePoint(startPoint, ch.Text),
	})
}

// Splice returns the document text with ch applied, for keeping the live
// buffer in sync with ranged changes.
func Splice(oldText []byte, ch Change) []byte {
	startByte := PositionOffset(oldText, ch.StartLine, ch.StartChar)
	oldEndByte := PositionOffset(oldText, ch.EndLine, ch.EndChar)

	newText := make([]byte, 0, uint(len(oldText))-(oldEndByte-startByte)+uint(len(ch.Text)))
	newText = append(newText, oldText[:startByte]...)
	newText = append(newText, ch.Text...)
	newText = append(newText, oldText[oldEndByte:]...)

	return newText
}

// PositionOffset converts a zero-based (line, character) position into a
// byte offset within text. Positions past the end of a line or of the text
// clamp to the nearest valid offset.
func PositionOffset(text []byte, line, char uint) uint {
	var offset uint

	for line > 0 && offset < uint(len(text)) {
		if text[offset] == '\n' {
			line--
		}

		offset++
	}

	for char > 0 && offset < uint(len(text)) && text[offset] != '\n' {
		offset++
		char--
	}

	return offset
}

// advancePoint advances p over every character of text.
func advancePoint(p sitter.Point, text string) sitter.Point {
	for i := range len(text) {
		if text[i] == '\n' {
			p.Row++
			p.Column = 0

			continue
		}

		p.Column++
	}

	return p
}
