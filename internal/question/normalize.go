package question

import (
	"regexp"
	"strings"

	"github.com/examtools/examconv/internal/normalize"
)

var (
	// Leading page reference like [p.23] or [p1-4].
	pageMarkerRe = regexp.MustCompile(`(?i)^\s*\[(?:p|pp)\.?\s*\d+(?:\s*-\s*\d+)?\]\s*`)
	// Leading question number like "12." or "Q12:".
	numberPrefixRe = regexp.MustCompile(`(?i)^\s*(?:Q\s*)?\d{1,4}[:.)]\s+`)
	// Leading option letter like "A." or "(B)".
	optionPrefixRe = regexp.MustCompile(`(?i)^\s*(?:\(?[A-D]\)|[A-D][.)])\s+`)

	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	danglingIn  = regexp.MustCompile(`(?i)\bin\s*[.,?]`)
	placeholder = regexp.MustCompile(`(?i)\bYYYY\b|\bYEAR\b|\[year\]|____`)
)

// NormalizeTitle canonicalizes a question title: whitespace/mojibake cleanup,
// then one leading page marker and one leading number prefix stripped.
func NormalizeTitle(title string) string {
	t := normalize.Normalize(title, nil)
	t = stripFirst(pageMarkerRe, t)
	return stripFirst(numberPrefixRe, t)
}

// NormalizeOption canonicalizes an option and strips a leading letter prefix.
func NormalizeOption(opt string) string {
	return stripFirst(optionPrefixRe, normalize.Normalize(opt, nil))
}

func stripFirst(re *regexp.Regexp, s string) string {
	if loc := re.FindStringIndex(s); loc != nil && loc[0] == 0 {
		return s[loc[1]:]
	}
	return s
}

// Normalized returns a copy of q with canonical title, options and warnings,
// and spurious blank-year warnings suppressed.
func (q Question) Normalized() Question {
	q.Title = NormalizeTitle(q.Title)
	options := make([]string, 0, 4)
	for _, opt := range q.Options {
		options = append(options, NormalizeOption(opt))
	}
	for len(options) < 4 {
		options = append(options, "")
	}
	q.Options = options[:4]

	warnings := make([]string, 0, len(q.Warnings))
	for _, w := range q.Warnings {
		warnings = append(warnings, normalize.Normalize(w, nil))
	}
	q.Warnings = FilterBlankYearWarnings(q.Title, warnings)
	return q
}

// NormalizeFields applies Normalized to a raw question map in place of the
// loose fields, for use inside the call/validate/repair loop where the
// document has not been materialized yet. Non-map input passes through.
func NormalizeFields(raw map[string]any) map[string]any {
	if raw == nil {
		return raw
	}
	title := NormalizeTitle(asString(raw["title"]))
	raw["title"] = title

	opts := asStringSlice(raw["options"])
	normalizedOpts := make([]any, 0, len(opts))
	for _, opt := range opts {
		normalizedOpts = append(normalizedOpts, NormalizeOption(opt))
	}
	raw["options"] = normalizedOpts

	warnings := make([]string, 0)
	for _, w := range asStringSlice(raw["warnings"]) {
		warnings = append(warnings, normalize.Normalize(w, nil))
	}
	filtered := FilterBlankYearWarnings(title, warnings)
	outWarnings := make([]any, len(filtered))
	for i, w := range filtered {
		outWarnings[i] = w
	}
	raw["warnings"] = outWarnings
	return raw
}

// NormalizeRawQuestions normalizes every question entry of a raw decoded
// model output, leaving everything else untouched.
func NormalizeRawQuestions(doc map[string]any) {
	if doc == nil {
		return
	}
	questions, ok := doc["questions"].([]any)
	if !ok {
		return
	}
	for _, rq := range questions {
		if qm, ok := rq.(map[string]any); ok {
			NormalizeFields(qm)
		}
	}
}

// FilterBlankYearWarnings keeps "blank year" warnings only when the title
// structurally implies an omitted year: no concrete 19xx/20xx token, and
// either a dangling "in." construction or a year placeholder. Heuristic;
// false negatives and positives are possible on unusual titles. A concrete
// year wins even when a placeholder is also present.
func FilterBlankYearWarnings(title string, warnings []string) []string {
	if len(warnings) == 0 {
		return warnings
	}
	hasYear := yearRe.MatchString(title)
	impliesGap := danglingIn.MatchString(title) || placeholder.MatchString(title)

	kept := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if strings.Contains(strings.ToLower(w), "blank year") {
			if hasYear || !impliesGap {
				continue
			}
		}
		kept = append(kept, w)
	}
	return kept
}
