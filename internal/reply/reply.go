// Package reply decodes JSON payloads out of free-form model replies.
//
// Models frequently wrap JSON in Markdown code fences. Decode strips the
// fences first and falls back to the raw text, and reports the result as a
// tagged Outcome so every caller handles the malformed branch explicitly.
package reply

import (
	"encoding/json"
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

// Outcome is either Decoded(value) or Malformed(raw).
type Outcome[T any] struct {
	value T
	raw   string
	err   error
	ok    bool
}

// Decoded returns the decoded value and true, or the zero value and false.
func (o Outcome[T]) Decoded() (T, bool) {
	return o.value, o.ok
}

// Malformed reports whether decoding failed.
func (o Outcome[T]) Malformed() bool {
	return !o.ok
}

// Raw returns the unmodified reply text.
func (o Outcome[T]) Raw() string {
	return o.raw
}

// Err returns a DecodeError for a malformed outcome, nil otherwise.
func (o Outcome[T]) Err() error {
	return o.err
}

// StripFences removes a surrounding ```json / ``` fence and whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode parses raw into T. The fence-stripped text is tried first, then the
// raw text. what names the reply kind in the resulting DecodeError.
func Decode[T any](what, raw string) Outcome[T] {
	var v T
	clean := StripFences(raw)
	err := json.Unmarshal([]byte(clean), &v)
	if err == nil {
		return Outcome[T]{value: v, raw: raw, ok: true}
	}

	var fallback T
	if rawErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fallback); rawErr == nil {
		return Outcome[T]{value: fallback, raw: raw, ok: true}
	}

	return Outcome[T]{raw: raw, err: errors.NewDecodeError(what, raw, err)}
}
