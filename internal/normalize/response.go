// Package normalize turns language model output and sheet cells into
// structured transaction fields.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/Veraticus/phone-manager/internal/model"
)

// fencePattern matches the first fenced block, with or without a language tag.
var fencePattern = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n?(.*?)```")

// Normalizer parses model responses into ExtractedFields.
type Normalizer struct {
	// Strict requires the whole response to be JSON and disables fenced-block lookup.
	Strict bool
}

// NewNormalizer creates a lenient normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize extracts fields from a raw model response. On any failure it
// returns empty fields together with an error wrapping common.ErrExtraction,
// so callers can log the problem and still persist the row.
func (n *Normalizer) Normalize(response string) (model.ExtractedFields, error) {
	obj, err := n.ParseObject(response)
	if err != nil {
		return model.ExtractedFields{}, err
	}
	return resolveFields(obj), nil
}

// ParseObject locates and decodes the JSON object in a model response using a
// fixed chain: first fenced block, else the whole text, else failure.
func (n *Normalizer) ParseObject(response string) (map[string]any, error) {
	text := strings.TrimSpace(response)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", common.ErrExtraction)
	}

	candidate := text
	if !n.Strict {
		if body, ok := fencedBlock(text); ok {
			candidate = body
		}
	}

	candidate = stripLineComments(candidate)

	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", common.ErrExtraction, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: response is not a JSON object", common.ErrExtraction)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", common.ErrExtraction)
	}

	return obj, nil
}

func fencedBlock(text string) (string, bool) {
	m := fencePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	body := m[2]
	// A one-line fence such as ```{"a":1}``` has no tag and no newline; the
	// tag group cannot consume a brace so the body is intact.
	return strings.TrimSpace(body), true
}

// stripLineComments removes // comments that run to the end of a line,
// leaving string literals untouched.
func stripLineComments(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}

	var out bytes.Buffer
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				out.WriteByte('\n')
			}
			continue
		}

		out.WriteByte(c)
	}

	return out.String()
}
