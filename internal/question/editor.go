package question

import (
	"strings"

	"github.com/examtools/examconv/internal/normalize"
)

// EditorRow is the flat record a human reviewer edits directly: one row per
// question, the correct answer as a letter, warnings pipe-joined.
type EditorRow struct {
	Number               any    `json:"number"`
	Title                string `json:"title"`
	OptionA              string `json:"option_A"`
	OptionB              string `json:"option_B"`
	OptionC              string `json:"option_C"`
	OptionD              string `json:"option_D"`
	CorrectLetter        string `json:"correct_letter"`
	DetectedAnswerMethod string `json:"detected_answer_method"`
	Warnings             string `json:"warnings"`
	Delete               bool   `json:"delete"`
}

var letters = []string{"A", "B", "C", "D"}

// IndexToLetter maps 0-3 to A-D; anything else renders as "?".
func IndexToLetter(index int) string {
	if index < 0 || index >= len(letters) {
		return "?"
	}
	return letters[index]
}

// LetterToIndex maps A-D (any case, surrounding space ignored) to 0-3.
// The second return is false for blank or unrecognized letters.
func LetterToIndex(letter string) (int, bool) {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return 0, true
	case "B":
		return 1, true
	case "C":
		return 2, true
	case "D":
		return 3, true
	}
	return 0, false
}

// ToEditorRows projects normalized questions into editable rows.
func ToEditorRows(questions []Question) []EditorRow {
	rows := make([]EditorRow, 0, len(questions))
	for _, q := range questions {
		q = q.Normalized()
		method := q.DetectedAnswerMethod
		if method == "" {
			method = MethodInferred
		}
		rows = append(rows, EditorRow{
			Number:               q.Number,
			Title:                q.Title,
			OptionA:              q.Options[0],
			OptionB:              q.Options[1],
			OptionC:              q.Options[2],
			OptionD:              q.Options[3],
			CorrectLetter:        IndexToLetter(q.CorrectIndex),
			DetectedAnswerMethod: method,
			Warnings:             strings.Join(q.Warnings, " | "),
			Delete:               false,
		})
	}
	return rows
}

// FromEditorRows is the inverse projection. Rows flagged for deletion are
// dropped, an unmappable correct letter defaults to index 0, the number is
// coerced defensively with warnings, and source refs reset to empty since
// manual edits have no originating document position.
func FromEditorRows(rows []EditorRow) []Question {
	questions := make([]Question, 0, len(rows))
	for _, row := range rows {
		if row.Delete {
			continue
		}
		correctIndex, _ := LetterToIndex(row.CorrectLetter)

		var warnings []string
		for _, w := range strings.Split(row.Warnings, "|") {
			if cleaned := normalize.Normalize(w, nil); cleaned != "" {
				warnings = append(warnings, cleaned)
			}
		}
		number := CoerceNumber(row.Number, &warnings)

		method := row.DetectedAnswerMethod
		if method == "" {
			method = MethodInferred
		}
		questions = append(questions, Question{
			Number: number,
			Title:  normalize.Normalize(row.Title, nil),
			Options: []string{
				normalize.Normalize(row.OptionA, nil),
				normalize.Normalize(row.OptionB, nil),
				normalize.Normalize(row.OptionC, nil),
				normalize.Normalize(row.OptionD, nil),
			},
			CorrectIndex:         correctIndex,
			DetectedAnswerMethod: method,
			Warnings:             warnings,
			SourceRefs:           []SourceRef{},
		})
	}
	return questions
}
