// Package normalize canonicalizes raw document text: whitespace flattening
// and repair of known mis-decoded byte sequences.
package normalize

import (
	"regexp"
	"strings"
)

// EncodingWarning is the shared message appended whenever mojibake repair or
// a decoding fallback touched the text.
const EncodingWarning = "Normalized text encoding artifacts"

// Warnings is an append-only message sink that keeps each message once.
type Warnings struct {
	msgs []string
}

// Add appends msg unless it is already present.
func (w *Warnings) Add(msg string) {
	if w == nil {
		return
	}
	for _, m := range w.msgs {
		if m == msg {
			return
		}
	}
	w.msgs = append(w.msgs, msg)
}

// Messages returns the accumulated messages in insertion order.
func (w *Warnings) Messages() []string {
	if w == nil || len(w.msgs) == 0 {
		return nil
	}
	out := make([]string, len(w.msgs))
	copy(out, w.msgs)
	return out
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// mojibake maps UTF-8 sequences mis-decoded as cp1252/latin-1 to ASCII
// fallbacks. Ordered so the longer quote sequence wins over its prefix.
var mojibake = []struct{ bad, good string }{
	{"ï¿½", "'"},
	{"â€™", "'"},
	{"â€œ", `"`},
	{"â€“", "-"},
	{"â€”", "-"},
	{"â€", `"`},
}

// Normalize flattens all whitespace runs (including embedded newlines) to
// single spaces, trims the ends, and repairs known mojibake sequences.
// Each repair adds EncodingWarning to sink at most once. Idempotent.
func Normalize(text string, sink *Warnings) string {
	cleaned, fixed := cleanMojibake(text)
	if fixed {
		sink.Add(EncodingWarning)
	}
	flattened := strings.ReplaceAll(cleaned, "\n", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(flattened, " "))
}

func cleanMojibake(text string) (string, bool) {
	fixed := false
	for _, r := range mojibake {
		if strings.Contains(text, r.bad) {
			text = strings.ReplaceAll(text, r.bad, r.good)
			fixed = true
		}
	}
	return text, fixed
}
