package invoke

import (
	"bytes"
	"encoding/json"
	"strings"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Result is the normalized body of a successful call.
type Result struct {
	// Text is pretty-printed JSON when JSON is set, otherwise the raw
	// body cut to the text limit.
	Text        string
	JSON        bool
	Status      int
	ContentType string
}

// normalize pretty-prints a JSON body, keeping key order, and falls back
// to truncated raw text for anything that does not parse.
func normalize(body []byte, maxText int) *Result {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	if len(trimmed) > 0 && json.Valid(trimmed) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, trimmed, "", "  "); err == nil {
			return &Result{Text: buf.String(), JSON: true}
		}
	}
	return &Result{Text: truncate(string(body), maxText)}
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// looksLikeJSON reports whether a body is meant to be JSON, judged by its
// content type or its first significant byte.
func looksLikeJSON(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
