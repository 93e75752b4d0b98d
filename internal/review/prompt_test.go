package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildPrompt verifies document-relative line numbering of the region.
func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("main.go", 12, "func a() {\n\treturn\n}\n")

	assert.Contains(t, prompt, "FILE: main.go")
	assert.Contains(t, prompt, "12: func a() {")
	assert.Contains(t, prompt, "13: \treturn")
	assert.Contains(t, prompt, "14: }")
	assert.NotContains(t, prompt, "15:")
	assert.True(t, strings.HasPrefix(prompt, promptInstruction))

	// The instruction must point at the printed labels, not region-relative
	// numbering, since resolution treats reported lines as document lines.
	assert.Contains(t, promptInstruction, "the line number shown")
}
