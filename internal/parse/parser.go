// Package parse recovers structured entries from model output that is
// JSON-shaped but rarely clean: fenced, prefixed with prose, or emitted as
// bare objects instead of an array.
package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoStructure reports that no recovery strategy found parseable JSON.
var ErrNoStructure = errors.New("no JSON structure found in response")

var (
	fenceOpenRe = regexp.MustCompile("(?i)^```(?:json)?")
	arrayRe     = regexp.MustCompile(`(?s)\[.*\]`)
	objectRe    = regexp.MustCompile(`(?s)\{(?:[^{}]|\{[^}]*\})*\}`)
)

// Entry is one parsed object from a model response. Field access goes
// through the alias-aware helpers since models drift on key names.
type Entry map[string]any

// Int returns the first present key coerced to int, or 0 and false when no
// key yields an integer. JSON numbers arrive as float64; models sometimes
// quote them.
func (e Entry) Int(keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := e[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// String returns the first present non-empty string among the keys.
func (e Entry) String(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := e[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ExtractArray recovers a JSON array of objects from raw model output.
// Strategies are layered: strip a markdown fence, try a direct parse, find
// the first bracketed array, and finally concatenate any top-level objects
// into a synthetic array. A lone object is normalized to a one-element
// array. Returns ErrNoStructure when every strategy fails.
func ExtractArray(raw string) ([]Entry, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = fenceOpenRe.ReplaceAllString(text, "")
		text = strings.TrimRight(text, "`")
		text = strings.TrimSpace(text)
	}

	if entries, ok := tryParse(text); ok {
		return entries, nil
	}

	if m := arrayRe.FindString(text); m != "" {
		if entries, ok := tryParse(m); ok {
			return entries, nil
		}
	}

	if objs := objectRe.FindAllString(text, -1); len(objs) > 0 {
		joined := "[" + strings.Join(objs, ",") + "]"
		if entries, ok := tryParse(joined); ok {
			return entries, nil
		}
	}

	return nil, ErrNoStructure
}

// tryParse attempts a strict parse of text as an array of objects or a
// single object.
func tryParse(text string) ([]Entry, bool) {
	var entries []Entry
	if err := json.Unmarshal([]byte(text), &entries); err == nil {
		return entries, true
	}

	var single Entry
	if err := json.Unmarshal([]byte(text), &single); err == nil && single != nil {
		return []Entry{single}, true
	}

	return nil, false
}
