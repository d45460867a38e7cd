// Package question holds the canonical question representation, the
// structural validator that drives the repair loop, and the bridge between
// model output and user-edited tabular rows.
package question

// Detected answer methods: the provenance tag for how a question's correct
// option was identified.
const (
	MethodAsterisk  = "asterisk"
	MethodHighlight = "highlight"
	MethodAnswerKey = "answer_key"
	MethodInferred  = "inferred"
)

// ValidMethods is the detected_answer_method enum.
var ValidMethods = map[string]bool{
	MethodAsterisk:  true,
	MethodHighlight: true,
	MethodAnswerKey: true,
	MethodInferred:  true,
}

// SourceRef points into a DocumentSignal's units.
type SourceRef struct {
	Kind  string `json:"kind"` // paragraph | line
	Index int    `json:"index"`
}

// Question is the canonical unit: exactly four options, positionally A-D.
type Question struct {
	Number               int         `json:"number"`
	Title                string      `json:"title"`
	Options              []string    `json:"options"`
	CorrectIndex         int         `json:"correct_index"`
	DetectedAnswerMethod string      `json:"detected_answer_method"`
	Warnings             []string    `json:"warnings"`
	SourceRefs           []SourceRef `json:"source_refs"`
	MenuOrder            int         `json:"menu_order,omitempty"`
}

// Set is the typed parse result consumed by the editor bridge and exporter.
type Set struct {
	Category  string     `json:"category"`
	Questions []Question `json:"questions"`
}

// FromRaw materializes a typed Set from the raw decoded model output.
// Lenient by design: it is only called on documents the validator accepted,
// and defaults anything that still looks off rather than failing.
func FromRaw(doc map[string]any) *Set {
	set := &Set{Category: asString(doc["category"])}
	rawQuestions, _ := doc["questions"].([]any)
	for _, rq := range rawQuestions {
		qm, ok := rq.(map[string]any)
		if !ok {
			continue
		}
		q := Question{
			Number:               CoerceNumber(qm["number"], nil),
			Title:                asString(qm["title"]),
			Options:              asStringSlice(qm["options"]),
			CorrectIndex:         intOr(qm["correct_index"], 0),
			DetectedAnswerMethod: asString(qm["detected_answer_method"]),
			Warnings:             asStringSlice(qm["warnings"]),
		}
		if q.DetectedAnswerMethod == "" {
			q.DetectedAnswerMethod = MethodInferred
		}
		for len(q.Options) < 4 {
			q.Options = append(q.Options, "")
		}
		q.Options = q.Options[:4]
		if refs, ok := qm["source_refs"].([]any); ok {
			for _, rr := range refs {
				rm, ok := rr.(map[string]any)
				if !ok {
					continue
				}
				q.SourceRefs = append(q.SourceRefs, SourceRef{
					Kind:  asString(rm["kind"]),
					Index: intOr(rm["index"], 0),
				})
			}
		}
		set.Questions = append(set.Questions, q)
	}
	return set
}

// ToRaw projects a Set back into the loosely-typed shape the validator and
// the repair prompt operate on.
func (s *Set) ToRaw() map[string]any {
	questions := make([]any, 0, len(s.Questions))
	for _, q := range s.Questions {
		options := make([]any, len(q.Options))
		for i, o := range q.Options {
			options[i] = o
		}
		warnings := make([]any, len(q.Warnings))
		for i, w := range q.Warnings {
			warnings[i] = w
		}
		refs := make([]any, len(q.SourceRefs))
		for i, r := range q.SourceRefs {
			refs[i] = map[string]any{"kind": r.Kind, "index": r.Index}
		}
		questions = append(questions, map[string]any{
			"number":                 q.Number,
			"title":                  q.Title,
			"options":                options,
			"correct_index":          q.CorrectIndex,
			"detected_answer_method": q.DetectedAnswerMethod,
			"warnings":               warnings,
			"source_refs":            refs,
		})
	}
	return map[string]any{"category": s.Category, "questions": questions}
}
