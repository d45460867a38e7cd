package question

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var digitsRe = regexp.MustCompile(`\d+`)

// CoerceNumber turns a loosely-typed question number into an int, appending
// a warning to sink when the value needed reshaping. Unparseable or blank
// values default to 0 rather than failing.
func CoerceNumber(value any, sink *[]string) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil && !math.IsNaN(f) {
			addWarning(sink, "Non-integer question number; truncated to integer")
			return int(f)
		}
	case float64:
		if math.IsNaN(v) {
			break
		}
		if v != math.Trunc(v) {
			addWarning(sink, "Non-integer question number; truncated to integer")
		}
		return int(v)
	case string:
		stripped := strings.TrimSpace(v)
		if stripped == "" {
			addWarning(sink, "Missing question number; defaulted to 0")
			return 0
		}
		if m := digitsRe.FindString(stripped); m != "" {
			n := 0
			fmt.Sscanf(m, "%d", &n)
			if m != stripped {
				addWarning(sink, fmt.Sprintf("Normalized question number from '%s' to %d", stripped, n))
			}
			return n
		}
	}
	addWarning(sink, "Invalid question number; defaulted to 0")
	return 0
}

func addWarning(sink *[]string, msg string) {
	if sink == nil {
		return
	}
	for _, m := range *sink {
		if m == msg {
			return
		}
	}
	*sink = append(*sink, msg)
}

// asString returns the string value or "" for anything else.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringSlice coerces a value to a list of strings. A bare string becomes
// a one-element list; non-string items are dropped.
func asStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// asInt reports whether v is an integer-valued number, and its value.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return int(t), true
		}
	}
	return 0, false
}

func intOr(v any, fallback int) int {
	if n, ok := asInt(v); ok {
		return n
	}
	return fallback
}
