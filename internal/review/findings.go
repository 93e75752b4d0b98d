// Package review sends code regions to an OpenAI-compatible findings
// service and decodes the returned findings.
package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Finding is one structured report returned by the findings service.
type Finding struct {
	Issue       string   `json:"issue"`
	Description string   `json:"description"`
	Location    Location `json:"location"`
}

// Location anchors a finding to a line of the reviewed region.
type Location struct {
	// Line is 1-based within the text that was sent for review.
	Line int `json:"line"`
	// Snippet is the verbatim source fragment the finding refers to.
	Snippet string `json:"snippet"`
}

// DecodeError reports a model response that did not contain a valid
// findings array. It carries the raw text for logging; the review cycle
// treats it as zero findings, not as a failure to surface.
type DecodeError struct {
	Reason string
	Raw    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode findings: %s", e.Reason)
}

// findingsSchema is the strict shape required of the model output. Nothing
// outside this shape is trusted.
const findingsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["issue", "description", "location"],
		"properties": {
			"issue": {"type": "string"},
			"description": {"type": "string"},
			"location": {
				"type": "object",
				"required": ["line", "snippet"],
				"properties": {
					"line": {"type": "integer"},
					"snippet": {"type": "string"}
				}
			}
		}
	}
}`

// DecodeFindings extracts the fenced JSON array from a raw model response
// and validates it against the findings schema. A response without a valid
// array yields a *DecodeError.
func DecodeFindings(raw string) ([]Finding, error) {
	payload, ok := extractFencedJSON(raw)
	if !ok {
		return nil, &DecodeError{Reason: "no JSON array found", Raw: raw}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(findingsSchema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return nil, &DecodeError{Reason: err.Error(), Raw: raw}
	}

	if !result.Valid() {
		return nil, &DecodeError{Reason: schemaErrors(result), Raw: raw}
	}

	var findings []Finding

	unmarshalErr := json.Unmarshal([]byte(payload), &findings)
	if unmarshalErr != nil {
		return nil, &DecodeError{Reason: unmarshalErr.Error(), Raw: raw}
	}

	return findings, nil
}

// extractFencedJSON returns the content of the first fenced code block,
// tolerating an info string after the opening fence. A bare JSON array
// without fences is accepted as-is.
func extractFencedJSON(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)

	start := strings.Index(trimmed, "```")
	if start < 0 {
		if strings.HasPrefix(trimmed, "[") {
			return trimmed, true
		}

		return "", false
	}

	rest := trimmed[start+len("```"):]

	// Drop the info string ("json", "JSON", ...) up to the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}

func schemaErrors(result *gojsonschema.Result) string {
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return strings.Join(messages, "; ")
}
