package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/examtools/examconv/internal/normalize"
	"github.com/examtools/examconv/internal/signal"
)

// TextParser handles plain text files.
type TextParser struct{}

func (p *TextParser) Parse(content []byte, filename string) (*signal.DocumentSignal, error) {
	decoded, hadArtifacts := decodeTextBytes(content)

	var warnings normalize.Warnings
	var units []signal.TextUnit
	for _, raw := range splitLines(decoded) {
		text := normalize.Normalize(raw, &warnings)
		if text == "" {
			continue
		}
		units = append(units, signal.TextUnit{Index: len(units), Text: text})
	}
	if hadArtifacts {
		warnings.Add(normalize.EncodingWarning)
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	return &signal.DocumentSignal{
		SourceFilename: filename,
		ContentType:    signal.ContentTXT,
		Units:          units,
		Warnings:       warnings.Messages(),
		DebugCounts:    analyzePatterns(texts),
	}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeTextBytes decodes bytes using a prioritized encoding list, accepting
// the first result whose replacement-rune ratio stays within 1%. Returns the
// decoded text and whether encoding artifacts were detected.
func decodeTextBytes(content []byte) (string, bool) {
	type attempt struct {
		name   string
		decode func([]byte) (string, int)
	}
	attempts := []attempt{
		{"utf-8-sig", func(b []byte) (string, int) {
			return decodeUTF8(bytes.TrimPrefix(b, utf8BOM))
		}},
		{"utf-8", decodeUTF8},
		{"cp1252", func(b []byte) (string, int) { return decodeCharmap(charmap.Windows1252, b) }},
		{"latin-1", func(b []byte) (string, int) { return decodeCharmap(charmap.ISO8859_1, b) }},
	}

	for _, a := range attempts {
		decoded, replacements := a.decode(content)
		total := utf8.RuneCountInString(decoded)
		if total == 0 {
			total = 1
		}
		if replacements == 0 || float64(replacements)/float64(total) <= 0.01 {
			artifacts := (a.name != "utf-8-sig" && a.name != "utf-8") || replacements > 0
			return decoded, artifacts
		}
	}

	// Fallback: latin-1 never leaves replacement runes, but flag regardless.
	decoded, _ := decodeCharmap(charmap.ISO8859_1, content)
	return decoded, true
}

// decodeUTF8 decodes with U+FFFD substitution for invalid sequences and
// counts the substitutions.
func decodeUTF8(content []byte) (string, int) {
	if utf8.Valid(content) {
		return string(content), 0
	}
	var sb strings.Builder
	replacements := 0
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		if r == utf8.RuneError && size == 1 {
			replacements++
		}
		sb.WriteRune(r)
		content = content[size:]
	}
	return sb.String(), replacements
}

func decodeCharmap(cm *charmap.Charmap, content []byte) (string, int) {
	decoded, err := cm.NewDecoder().Bytes(content)
	if err != nil {
		// Charmap decoders do not fail on unknown bytes; treat a failure as
		// fully substituted so the ladder moves on.
		return string(content), len(content)
	}
	return string(decoded), strings.Count(string(decoded), "�")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
