package parser

import (
	"regexp"

	"github.com/examtools/examconv/internal/signal"
)

// Heuristic patterns over normalized unit text. These feed the debug counts
// surfaced to operators; they never gate extraction.
var (
	questionStartPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(\d{1,4})[.)]\s+\S`),
		regexp.MustCompile(`(?i)^\s*Q(\d{1,4})[:.)]\s+\S`),
		// Page-reference markers like [p1-4], [p2-6]
		regexp.MustCompile(`(?i)^\s*\[[^\]]*p\d+[^\]]*\]`),
	}
	optionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*[A-D][.)]\s+\S`),
		regexp.MustCompile(`(?i)^\s*\(?[A-D]\)\s+\S`),
	}
	answerKeyPattern           = regexp.MustCompile(`(?i)^\s*(?:Q\s*)?(\d{1,4})\s*[.)]?\s*[:=\-]?\s*([A-D])\b`)
	answerKeyAnnotationPattern = regexp.MustCompile(`\s*\[[^\]]+\]\s*$`)
)

// stripAnswerKeyAnnotation removes one trailing bracketed annotation like
// [Chp 1] from an answer key line.
func stripAnswerKeyAnnotation(text string) string {
	return answerKeyAnnotationPattern.ReplaceAllString(text, "")
}

// analyzePatterns computes debug counts for question starts, option lines,
// and answer key entries.
func analyzePatterns(texts []string) signal.DebugCounts {
	counts := signal.DebugCounts{TotalLines: len(texts)}
	for _, raw := range texts {
		if matchesAny(questionStartPatterns, raw) {
			counts.QuestionStarts++
		}
		if matchesAny(optionPatterns, raw) {
			counts.OptionLines++
		}
		if answerKeyPattern.MatchString(stripAnswerKeyAnnotation(raw)) {
			counts.AnswerKeyEntries++
		}
	}
	return counts
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
