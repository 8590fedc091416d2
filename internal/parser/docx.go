package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/flashgest/internal/document"
)

// DOCXParser handles .docx files. Body paragraphs are returned in order and
// table cells are flattened row by row into paragraphs of their own. Word
// documents carry no reliable page numbers, so pages are left unset.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]document.Paragraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Reason: "unreadable docx", Err: err}
	}

	var out []document.Paragraph
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			out = appendText(out, docxParagraphText(it))
		case *docx.Table:
			out = appendTable(out, it)
		}
	}
	return out, nil
}

func appendTable(out []document.Paragraph, tbl *docx.Table) []document.Paragraph {
	for _, row := range tbl.TableRows {
		for _, cell := range row.TableCells {
			for _, para := range cell.Paragraphs {
				out = appendText(out, docxParagraphText(para))
			}
			for _, nested := range cell.Tables {
				out = appendTable(out, nested)
			}
		}
	}
	return out
}

func appendText(out []document.Paragraph, text string) []document.Paragraph {
	if text == "" {
		return out
	}
	return append(out, document.Paragraph{Text: text})
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
