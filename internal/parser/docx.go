package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/examtools/examconv/internal/normalize"
	"github.com/examtools/examconv/internal/signal"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(content []byte, filename string) (*signal.DocumentSignal, error) {
	// Best-effort: a failed scan reads as "no tracked changes".
	hasTrackedChanges, _ := DetectTrackedChanges(content)

	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var units []signal.TextUnit
	appendUnit := func(text string, hasHighlight bool) {
		if text == "" {
			return
		}
		units = append(units, signal.TextUnit{
			Index:        len(units),
			Text:         text,
			HasHighlight: hasHighlight,
		})
	}

	// Body paragraphs first, in document order.
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		appendUnit(normalize.Normalize(paragraphText(para), nil), paragraphHasHighlight(para))
	}

	// Then table cells, row-major, cell-major. Formatting inside tables is
	// not inspected, so table paragraphs are never flagged as highlighted.
	for _, item := range doc.Document.Body.Items {
		table, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		for _, row := range table.TableRows {
			for _, cell := range row.TableCells {
				for _, para := range cell.Paragraphs {
					appendUnit(normalize.Normalize(paragraphText(para), nil), false)
				}
			}
		}
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	return &signal.DocumentSignal{
		SourceFilename:    filename,
		ContentType:       signal.ContentDOCX,
		Units:             units,
		HasTrackedChanges: hasTrackedChanges,
		DebugCounts:       analyzePatterns(texts),
	}, nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		buf.WriteString(runText(run))
	}
	return buf.String()
}

func runText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}

// paragraphHasHighlight reports whether any run carries both non-blank text
// and a highlight marking.
func paragraphHasHighlight(para *docx.Paragraph) bool {
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		if run.RunProperties == nil || run.RunProperties.Highlight == nil {
			continue
		}
		if strings.EqualFold(run.RunProperties.Highlight.Val, "none") {
			continue
		}
		if strings.TrimSpace(runText(run)) != "" {
			return true
		}
	}
	return false
}

// trackedChangeRe matches insertion/deletion/move markup wrapping visible
// non-whitespace text inside word/document.xml.
var trackedChangeRe = regexp.MustCompile(`(?is)<w:(ins|del|moveFrom|moveTo)\b[^>]*>.*?<w:t\b[^>]*>\s*\S`)

// DetectTrackedChanges inspects word/document.xml for change-tracking markup
// that wraps visible text. The error distinguishes "detection failed" from a
// clean negative; extraction treats both as "not detected".
func DetectTrackedChanges(content []byte) (bool, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return false, fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return false, fmt.Errorf("open document.xml: %w", err)
		}
		xmlBytes, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return false, fmt.Errorf("read document.xml: %w", err)
		}
		return trackedChangeRe.Match(xmlBytes), nil
	}
	return false, fmt.Errorf("document.xml not found in archive")
}
