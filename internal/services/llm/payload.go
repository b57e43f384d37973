package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ExtractJSON returns the first JSON object in a model reply. Markdown code
// fences and prose around the object are tolerated.
func ExtractJSON(content string) ([]byte, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errors.New("empty payload")
	}
	data := []byte(trimmed)
	for start := bytes.IndexByte(data, '{'); start >= 0; {
		var raw json.RawMessage
		if err := json.NewDecoder(bytes.NewReader(data[start:])).Decode(&raw); err == nil {
			return raw, nil
		}
		next := bytes.IndexByte(data[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, fmt.Errorf("no JSON object in reply: %s", snippet(trimmed))
}

// snippet flattens whitespace and truncates s for error messages.
func snippet(s string) string {
	clean := strings.Join(strings.Fields(s), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
