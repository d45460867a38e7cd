package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/examtools/examconv/internal/export"
	"github.com/examtools/examconv/internal/question"
)

type editsRequest struct {
	Category string               `json:"category"`
	Rows     []question.EditorRow `json:"rows"`
}

// handleEdits reapplies user-edited rows onto the session and re-validates.
func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	var req editsRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, "invalid edits payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	errs := s.session.ApplyEdits(req.Rows, req.Category)
	view := s.session.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"validation_errors": errs,
		"rows":              view.Rows,
		"category":          view.Category,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	set, category, ok := s.session.ExportSet()
	if !ok {
		jsonError(w, "export blocked: no parsed result or validation errors remain", http.StatusConflict)
		return
	}
	headers := export.HeadersFromExample(s.cfg.HeaderTemplatePath)
	data, err := export.BuildCSV(set, category, headers)
	if err != nil {
		jsonError(w, "build csv: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="exam-import.csv"`)
	w.Write(data)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	set, category, ok := s.session.ExportSet()
	if !ok {
		jsonError(w, "export blocked: no parsed result or validation errors remain", http.StatusConflict)
		return
	}
	headers := export.HeadersFromExample(s.cfg.HeaderTemplatePath)
	data, err := export.BuildXLSX(set, category, headers)
	if err != nil {
		jsonError(w, "build xlsx: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="exam-import.xlsx"`)
	w.Write(data)
}

// handleDebugSignals exposes the document signal and per-file pattern counts.
func (s *Server) handleDebugSignals(w http.ResponseWriter, r *http.Request) {
	view := s.session.Snapshot()
	metrics := make([]map[string]any, 0, len(view.Signals))
	for _, sig := range view.Signals {
		metrics = append(metrics, map[string]any{
			"file":               sig.SourceFilename,
			"total_lines":        sig.DebugCounts.TotalLines,
			"question_starts":    sig.DebugCounts.QuestionStarts,
			"option_lines":       sig.DebugCounts.OptionLines,
			"answer_key_entries": sig.DebugCounts.AnswerKeyEntries,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
		"signals": view.Signals,
	})
}

// handleDebugOutputs exposes the ordered raw model responses, one per
// attempt, with a placeholder for empty replies.
func (s *Server) handleDebugOutputs(w http.ResponseWriter, r *http.Request) {
	view := s.session.Snapshot()
	outputs := make([]string, 0, len(view.RawOutputs))
	for i, raw := range view.RawOutputs {
		if raw == "" {
			raw = fmt.Sprintf("(empty response %d)", i+1)
		}
		outputs = append(outputs, raw)
	}
	writeJSON(w, http.StatusOK, map[string]any{"raw_outputs": outputs})
}
