package oracle

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/marketproof/attribution-cli/internal/model"
)

// citationRe matches inline citation markers some providers interleave with
// prose: [1], [2][3], and <cite ...>...</cite> wrappers.
var citationRe = regexp.MustCompile(`\[\d+\]|</?cite[^>]*>`)

// ParseDecision extracts a strict {valid, reason} object from a raw model
// reply. The reply may wrap the JSON in code fences, prepend prose, or
// append citations; anything that survives cleanup must decode exactly
// against the schema.
func ParseDecision(text string) (*model.AIDecision, error) {
	text = citationRe.ReplaceAllString(text, "")
	text = stripCodeFence(strings.TrimSpace(text))

	obj := firstJSONObject(text)
	if obj == "" {
		return nil, eris.New("oracle: no JSON object in reply")
	}

	var raw struct {
		Valid  *bool  `json:"valid"`
		Reason string `json:"reason"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "oracle: decode decision")
	}
	if raw.Valid == nil {
		return nil, eris.New("oracle: decision missing valid field")
	}

	return &model.AIDecision{Valid: *raw.Valid, Reason: raw.Reason}, nil
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapper.
func stripCodeFence(text string) string {
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			break
		}
	}
	return strings.TrimSpace(text)
}

// firstJSONObject returns the first balanced top-level JSON object in text,
// tracking strings and escapes so braces inside values do not confuse the
// balance count. Returns "" when no balanced object exists.
func firstJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
