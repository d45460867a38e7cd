// Package signal holds the normalized representation of an uploaded exam
// document, the only source of truth handed to the language model.
package signal

// ContentType identifies the container format a signal was extracted from.
type ContentType string

const (
	ContentDOCX ContentType = "docx"
	ContentTXT  ContentType = "txt"
)

// TextUnit is one non-empty paragraph or line, in emission order.
// Index is dense and 0-based.
type TextUnit struct {
	Index        int    `json:"i"`
	Text         string `json:"text"`
	HasHighlight bool   `json:"has_highlight,omitempty"`
}

// DebugCounts tallies heuristic pattern matches over a signal's units.
// Diagnostic only; extraction never gates on these.
type DebugCounts struct {
	TotalLines       int `json:"total_lines"`
	QuestionStarts   int `json:"question_starts"`
	OptionLines      int `json:"option_lines"`
	AnswerKeyEntries int `json:"answer_key_entries"`
}

// DocumentSignal is the structural extraction of one uploaded file.
// Built once per parse, immutable afterward.
type DocumentSignal struct {
	SourceFilename    string      `json:"source_filename"`
	ContentType       ContentType `json:"content_type"`
	Units             []TextUnit  `json:"units"`
	HasTrackedChanges bool        `json:"has_tracked_changes,omitempty"`
	DebugCounts       DebugCounts `json:"debug_counts"`
	Warnings          []string    `json:"warnings,omitempty"`
}
