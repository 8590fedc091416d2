package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/flashgest/internal/document"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// plain text has no pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]document.Paragraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []document.Paragraph
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, document.Paragraph{Text: current.String()})
			current.Reset()
		}
	}

	for scanner.Scan() {
		// Undecodable bytes are dropped rather than failing the upload.
		line := strings.ToValidUTF8(scanner.Text(), "")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
