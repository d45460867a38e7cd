// Package parser turns uploaded exam files into document signals.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/examtools/examconv/internal/signal"
)

// Parser converts raw document bytes into a DocumentSignal.
type Parser interface {
	Parse(content []byte, filename string) (*signal.DocumentSignal, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx": true,
	".txt":  true,
}

// ForFile returns the appropriate parser for a filename. An unsupported
// extension is the only fatal extraction condition and names the file.
func ForFile(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return &DOCXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type for %s: use .docx or .txt", filename)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Upload is one uploaded file: a name and its raw bytes.
type Upload struct {
	Filename string
	Content  []byte
}

// BuildSignals converts uploaded files into document signals, in order.
func BuildSignals(files []Upload) ([]signal.DocumentSignal, error) {
	signals := make([]signal.DocumentSignal, 0, len(files))
	for _, f := range files {
		p, err := ForFile(f.Filename)
		if err != nil {
			return nil, err
		}
		sig, err := p.Parse(f.Content, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Filename, err)
		}
		signals = append(signals, *sig)
	}
	return signals, nil
}
