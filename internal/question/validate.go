package question

import (
	"fmt"
	"sort"
	"strings"
)

// Validate runs the structural checks over a raw decoded model output and
// returns one message per violation. An empty list is the sole success
// signal; the input is never mutated.
func Validate(doc map[string]any) []string {
	if doc == nil {
		return []string{"Parsed output is not an object."}
	}

	questions, ok := doc["questions"].([]any)
	if !ok || len(questions) == 0 {
		return []string{"questions must be a non-empty array."}
	}

	var errs []string
	for idx, rq := range questions {
		prefix := fmt.Sprintf("Question %d", idx+1)
		q, ok := rq.(map[string]any)
		if !ok {
			errs = append(errs, prefix+": entry is not an object.")
			continue
		}
		if n, ok := asInt(q["number"]); !ok || n < 1 {
			errs = append(errs, prefix+": number must be integer >=1.")
		}
		if title, ok := q["title"].(string); !ok || trimmed(title) == "" {
			errs = append(errs, prefix+": title is missing.")
		}
		options, ok := q["options"].([]any)
		if !ok || len(options) != 4 {
			errs = append(errs, prefix+": options must have exactly 4 items.")
		} else {
			for oi, opt := range options {
				if s, ok := opt.(string); !ok || trimmed(s) == "" {
					errs = append(errs, fmt.Sprintf("%s: option %d is empty.", prefix, oi+1))
				}
			}
		}
		if ci, ok := asInt(q["correct_index"]); !ok || ci < 0 || ci > 3 {
			errs = append(errs, prefix+": correct_index must be between 0 and 3.")
		}
		if method, ok := q["detected_answer_method"].(string); !ok || !ValidMethods[method] {
			errs = append(errs, prefix+": detected_answer_method invalid.")
		}
	}
	return errs
}

func trimmed(s string) string { return strings.TrimSpace(s) }

// RecomputeMenuOrder sorts questions ascending by number and assigns
// MenuOrder as the new 1-based rank, overwriting any prior value.
func RecomputeMenuOrder(questions []Question) []Question {
	sorted := make([]Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	for i := range sorted {
		sorted[i].MenuOrder = i + 1
	}
	return sorted
}
