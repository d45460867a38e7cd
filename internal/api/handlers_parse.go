package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/examtools/examconv/internal/llm"
	"github.com/examtools/examconv/internal/parser"
	"github.com/examtools/examconv/internal/question"
)

// handleParse runs the full pipeline for one batch of uploaded files and
// resets the session with the outcome.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		jsonError(w, "upload at least one .docx or .txt file", http.StatusBadRequest)
		return
	}

	category := r.FormValue("category")
	model := r.FormValue("model")
	if model == "" {
		model = s.cfg.DefaultModel
	}

	uploads := make([]parser.Upload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if !parser.IsSupportedExtension(fh.Filename) {
			jsonError(w, "unsupported file type for "+fh.Filename+": use .docx or .txt", http.StatusBadRequest)
			return
		}
		f, err := fh.Open()
		if err != nil {
			jsonError(w, "read "+fh.Filename+": "+err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "read "+fh.Filename+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fh.Filename+" exceeds max upload size", http.StatusRequestEntityTooLarge)
			return
		}
		uploads = append(uploads, parser.Upload{Filename: fh.Filename, Content: data})
	}

	signals, err := parser.BuildSignals(uploads)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := s.orchestrator.Parse(r.Context(), signals, category, model)
	if err != nil {
		var invErr *llm.InvocationError
		if errors.As(err, &invErr) {
			jsonError(w, invErr.Error(), http.StatusBadGateway)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.session.CompleteParse(signals, outcome, category)
	view := s.session.Snapshot()

	trackedFiles := []string{}
	for _, sig := range view.Signals {
		if sig.HasTrackedChanges {
			trackedFiles = append(trackedFiles, sig.SourceFilename)
		}
	}
	questions := question.FromRaw(view.Parsed).Questions
	warningCount := 0
	for _, q := range questions {
		warningCount += len(q.Warnings)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category":                   view.Category,
		"total_questions":            len(questions),
		"rows":                       view.Rows,
		"validation_errors":          view.Errors,
		"warning_count":              warningCount,
		"files_with_tracked_changes": trackedFiles,
		"attempts":                   len(view.RawOutputs),
	})
}
