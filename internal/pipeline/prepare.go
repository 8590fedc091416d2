package pipeline

import (
	"io"

	"github.com/dgallion1/flashgest/internal/chunker"
	"github.com/dgallion1/flashgest/internal/cleaner"
	"github.com/dgallion1/flashgest/internal/document"
	"github.com/dgallion1/flashgest/internal/heading"
	"github.com/dgallion1/flashgest/internal/parser"
)

// Preparer turns an uploaded file into generation-ready chunks.
type Preparer struct {
	Chunking    chunker.Config
	PDFFallback bool // Shell out to pdftotext when the PDF library finds no text.
}

// Extract parses r with the parser for filename's extension.
func (p Preparer) Extract(r io.Reader, filename string) ([]document.Paragraph, error) {
	ps, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pdf, ok := ps.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = p.PDFFallback
	}
	return parser.ExtractWith(ps, r, filename)
}

// Clean removes noise from paragraphs and drops the ones left empty.
func (p Preparer) Clean(paras []document.Paragraph) []document.Paragraph {
	return cleaner.Paragraphs(paras)
}

// Chunk attributes headings and assembles chunks.
func (p Preparer) Chunk(paras []document.Paragraph) ([]document.Chunk, error) {
	return chunker.Chunk(paras, heading.Map(paras), p.Chunking)
}

// Prepare runs Extract, Clean and Chunk in order.
func (p Preparer) Prepare(r io.Reader, filename string) ([]document.Chunk, error) {
	paras, err := p.Extract(r, filename)
	if err != nil {
		return nil, err
	}
	return p.Chunk(p.Clean(paras))
}
