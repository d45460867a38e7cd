package pipeline

import (
	"sync"

	"github.com/examtools/examconv/internal/question"
	"github.com/examtools/examconv/internal/signal"
)

// Session is the single mutable state container of an interactive
// conversion: signals, the last parsed result, its validation errors, raw
// model outputs, the editable rows, and the category. It is reset wholesale
// on each new parse and mutated by exactly two operations, CompleteParse and
// ApplyEdits. The mutex only serializes interleaved HTTP requests; the usage
// model remains one user, one action at a time.
type Session struct {
	mu         sync.Mutex
	signals    []signal.DocumentSignal
	parsed     map[string]any
	errors     []string
	rawOutputs []string
	rows       []question.EditorRow
	category   string
}

func NewSession() *Session {
	return &Session{}
}

// View is a read-only copy of the session state.
type View struct {
	Signals    []signal.DocumentSignal `json:"signals"`
	Parsed     map[string]any          `json:"parsed"`
	Errors     []string                `json:"validation_errors"`
	RawOutputs []string                `json:"raw_outputs"`
	Rows       []question.EditorRow    `json:"rows"`
	Category   string                  `json:"category"`
}

// CompleteParse replaces the whole session with the outcome of a parse run.
func (s *Session) CompleteParse(signals []signal.DocumentSignal, outcome *Outcome, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parsed := outcome.Parsed
	if parsed == nil {
		parsed = map[string]any{}
	}
	if _, ok := parsed["category"]; !ok {
		parsed["category"] = category
	}
	if c, ok := parsed["category"].(string); ok && c != "" {
		category = c
	}

	s.signals = signals
	s.parsed = parsed
	s.errors = outcome.Errors
	s.rawOutputs = outcome.RawOutputs
	s.category = category
	s.rows = question.ToEditorRows(question.FromRaw(parsed).Questions)
}

// ApplyEdits reconciles user-edited rows into the canonical representation,
// re-normalizes, re-validates, and returns the new error list.
func (s *Session) ApplyEdits(rows []question.EditorRow, category string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category != "" {
		s.category = category
	}
	questions := question.FromEditorRows(rows)
	for i := range questions {
		questions[i] = questions[i].Normalized()
	}
	set := &question.Set{Category: s.category, Questions: questions}

	s.rows = rows
	s.parsed = set.ToRaw()
	s.errors = question.Validate(s.parsed)
	return s.errors
}

// Snapshot returns a copy of the current state for the API surface.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Signals:    append([]signal.DocumentSignal(nil), s.signals...),
		Parsed:     s.parsed,
		Errors:     append([]string(nil), s.errors...),
		RawOutputs: append([]string(nil), s.rawOutputs...),
		Rows:       append([]question.EditorRow(nil), s.rows...),
		Category:   s.category,
	}
}

// ExportSet returns the typed question set and category when export is
// allowed: a parsed result exists and no blocking errors remain.
func (s *Session) ExportSet() (*question.Set, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.parsed) == 0 || len(s.errors) > 0 {
		return nil, "", false
	}
	return question.FromRaw(s.parsed), s.category, true
}
