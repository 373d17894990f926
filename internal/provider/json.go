package provider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PreviewLimit bounds the raw response text carried by AIResponseError.
const PreviewLimit = 500

// AIResponseError reports a model response that held no usable JSON.
type AIResponseError struct {
	Message string
	// Preview is the start of the raw response, at most PreviewLimit runes.
	Preview string
}

func (e *AIResponseError) Error() string {
	if e.Preview == "" {
		return "ai response: " + e.Message
	}
	return fmt.Sprintf("ai response: %s (response: %q)", e.Message, e.Preview)
}

func newResponseError(msg, raw string) *AIResponseError {
	return &AIResponseError{Message: msg, Preview: preview(raw)}
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= PreviewLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:PreviewLimit]) + "..."
}

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n?(.*?)(?:```|$)")

// ExtractJSON finds the JSON document in a model response. It strips
// markdown fences, then tries, in order: the whole text, repair of an array
// cut off mid-object by dropping the partial trailing element, the longer of
// the outermost [...] and {...} spans, and finally the longest balanced
// substring that parses. Repair only applies when the first array never
// closes, so it cannot shadow a complete document.
func ExtractJSON(text string) (string, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return "", newResponseError("empty response", text)
	}

	bodies := []string{body}
	if m := fencePattern.FindStringSubmatch(body); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			bodies = []string{inner, body}
		}
	}

	for _, b := range bodies {
		if json.Valid([]byte(b)) {
			return b, nil
		}
		if repaired, ok := repairTruncatedArray(b); ok {
			return repaired, nil
		}
		if candidate, ok := outermostSpan(b); ok {
			return candidate, nil
		}
		if candidate, ok := longestBalanced(b); ok {
			return candidate, nil
		}
	}
	return "", newResponseError("no valid JSON found", text)
}

// outermostSpan tries the text from the first '[' to the last ']' and from
// the first '{' to the last '}', returning the longer one that parses.
func outermostSpan(s string) (string, bool) {
	var best string
	for _, pair := range [][2]byte{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start < 0 || end <= start {
			continue
		}
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) && len(candidate) > len(best) {
			best = candidate
		}
	}
	return best, best != ""
}

// longestBalanced returns the longest bracket-delimited substring that is
// valid JSON. Brackets inside JSON strings are ignored.
func longestBalanced(s string) (string, bool) {
	var best string
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}
		end := matchingClose(s, i)
		if end < 0 {
			continue
		}
		candidate := s[i : end+1]
		if !json.Valid([]byte(candidate)) {
			continue
		}
		if len(candidate) > len(best) {
			best = candidate
		}
		i = end
	}
	return best, best != ""
}

// matchingClose returns the index of the bracket closing the one at start,
// or -1 when the text ends first.
func matchingClose(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
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
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// repairTruncatedArray handles output cut off by a token limit: it keeps
// every complete object of the top-level array and closes the array after
// the last one.
func repairTruncatedArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	lastClose := -1
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
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
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if c == '}' && depth == 1 {
				lastClose = i
			}
			if depth == 0 {
				// The array closed normally, so truncation is not the problem.
				return "", false
			}
		}
	}
	if lastClose < 0 {
		return "", false
	}

	repaired := s[start:lastClose+1] + "]"
	if !json.Valid([]byte(repaired)) {
		return "", false
	}
	return repaired, true
}

// decodeResponse extracts the JSON document from text and unmarshals it.
func decodeResponse(text string, v any) error {
	doc, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return newResponseError(fmt.Sprintf("unexpected JSON shape: %v", err), text)
	}
	return nil
}

// decodeList decodes a JSON array, also accepting an object that wraps a
// single array field such as {"styles": [...]}.
func decodeList[T any](text string) ([]T, error) {
	doc, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var list []T
	listErr := json.Unmarshal([]byte(doc), &list)
	if listErr == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &wrapper); err == nil {
		var found [][]T
		for _, raw := range wrapper {
			var inner []T
			if err := json.Unmarshal(raw, &inner); err == nil && inner != nil {
				found = append(found, inner)
			}
		}
		if len(found) == 1 {
			return found[0], nil
		}
	}
	return nil, newResponseError(fmt.Sprintf("expected a JSON array: %v", listErr), text)
}
