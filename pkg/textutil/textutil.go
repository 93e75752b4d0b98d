// Package textutil provides byte-level text utilities shared by the session
// and review layers: binary detection and offset-to-line mapping.
package textutil

import (
	"bytes"
	"strings"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// LineAt returns the 1-based line number containing the given byte offset.
// Offsets past the end of text map to the last line.
func LineAt(text string, offset uint) int {
	if offset > uint(len(text)) {
		offset = uint(len(text))
	}

	return 1 + strings.Count(text[:offset], "\n")
}
