package review

import (
	"fmt"
	"strings"
)

// promptInstruction asks for exactly the shape DecodeFindings validates.
const promptInstruction = `You are a meticulous code reviewer. Review the following code region and report genuine defects: bugs, race conditions, resource leaks, error-handling gaps, and misleading logic. Do not report style preferences.

Respond with a JSON array fenced in a code block. Each element must be an object of the form:
{"issue": "<short title>", "description": "<what is wrong and why>", "location": {"line": <the line number shown at the start of the offending line>, "snippet": "<verbatim fragment from that line>"}}

Report an empty array if the region is sound.`

// BuildPrompt assembles the review prompt for a code region. startLine is
// the 1-based document line of the region's first line, so reported line
// numbers stay meaningful when only a region is sent.
func BuildPrompt(filename string, startLine int, region string) string {
	var b strings.Builder

	b.WriteString(promptInstruction)
	b.WriteString("\n\nFILE: ")
	b.WriteString(filename)
	b.WriteString("\n\nCODE:\n")

	lines := strings.Split(strings.TrimRight(region, "\n"), "\n")
	for i, line := range lines {
		fmt.Fprintf(&b, "%d: %s\n", startLine+i, line)
	}

	return b.String()
}
