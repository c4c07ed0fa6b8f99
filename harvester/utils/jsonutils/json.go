package jsonutils

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Encode writes v as 2-space indented JSON, leaving non-ASCII text and
// HTML-significant characters (&, <, >) as they are.
func Encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ToJSON serializes a Go value to an indented JSON string.
// Returns an empty string if serialization fails.
func ToJSON(v interface{}) string {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}
