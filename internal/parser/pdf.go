package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/flashgest/internal/cleaner"
	"github.com/dgallion1/flashgest/internal/document"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled and available.
type PDFParser struct {
	FallbackPdftotext bool
}

// Parse returns one or more paragraphs per page, tagged with the 1-based
// page number. Header and footer lines are dropped while grouping lines.
func (p *PDFParser) Parse(r io.Reader, filename string) ([]document.Paragraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := extractPDFPages(data)
	if (err != nil || !anyText(pages)) && p.FallbackPdftotext {
		if alt, altErr := extractPdftotext(data); altErr == nil {
			pages, err = alt, nil
		}
	}
	if err != nil {
		return nil, &ExtractionError{Reason: "unreadable pdf", Err: err}
	}
	if !anyText(pages) {
		return nil, &ExtractionError{Reason: "no text layer in pdf; scanned images are not supported"}
	}
	return pageParagraphs(pages), nil
}

// extractPDFPages returns the plain text of every page, with an empty string
// for pages that have no text.
func extractPDFPages(data []byte) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("pdf reader: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "flashgest-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with a form feed.
	return strings.Split(strings.TrimSuffix(string(out), "\f"), "\f"), nil
}

func anyText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// pageParagraphs groups each page's lines into paragraphs. A blank line ends
// a paragraph and so does a page boundary. Lines stay separate so the cleaner
// can repair words hyphenated across them.
func pageParagraphs(pages []string) []document.Paragraph {
	var out []document.Paragraph
	for i, text := range pages {
		page := document.PageOf(i + 1)
		var buf []string
		flush := func() {
			if len(buf) > 0 {
				out = append(out, document.Paragraph{Text: strings.Join(buf, "\n"), Page: page})
				buf = nil
			}
		}
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				flush()
				continue
			}
			if cleaner.IsNoise(line) {
				continue
			}
			buf = append(buf, line)
		}
		flush()
	}
	return out
}
