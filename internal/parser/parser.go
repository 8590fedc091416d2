package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/flashgest/internal/document"
)

// Parser converts raw document bytes into ordered paragraphs.
type Parser interface {
	Parse(r io.Reader, filename string) ([]document.Paragraph, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".txt":  true,
}

// UnsupportedFormatError is returned for file extensions with no parser.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file type: missing extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

// ExtractionError is returned when a supported file yields no usable text or
// cannot be decoded.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".pptx":
		return &PPTXParser{}, nil
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extract dispatches on the file extension, parses r and returns the
// NFKC-normalized, non-empty paragraphs in document order.
func Extract(r io.Reader, filename string) ([]document.Paragraph, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return ExtractWith(p, r, filename)
}

// ExtractWith runs a specific parser with the same post-processing as Extract.
func ExtractWith(p Parser, r io.Reader, filename string) ([]document.Paragraph, error) {
	paras, err := p.Parse(r, filename)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, &ExtractionError{Reason: "read " + filepath.Base(filename), Err: err}
	}

	out := make([]document.Paragraph, 0, len(paras))
	for _, para := range paras {
		text := strings.TrimSpace(norm.NFKC.String(strings.ToValidUTF8(para.Text, "")))
		if text == "" {
			continue
		}
		out = append(out, document.Paragraph{Text: text, Page: para.Page})
	}
	if len(out) == 0 {
		return nil, &ExtractionError{Reason: "no extractable text"}
	}
	return out, nil
}
