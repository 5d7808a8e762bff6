package convert

import (
	"encoding/json"
	"strings"
)

// Extract returns text as-is when it is valid JSON. Otherwise it takes the
// span from the leftmost '{' to the rightmost '}' and returns that when it
// parses. The second result is false when neither attempt yields JSON.
//
// Only syntax is checked. A model answer that is valid JSON but ignores the
// requested fields is still accepted.
func Extract(text string) (string, bool) {
	if json.Valid([]byte(text)) {
		return text, true
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}
