package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/flashgest/internal/document"
)

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// PPTXParser handles .pptx files. Each slide becomes one paragraph holding
// the text of all its shapes. Slides carry no page numbers.
type PPTXParser struct{}

func (p *PPTXParser) Parse(r io.Reader, filename string) ([]document.Paragraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pptx: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Reason: "unreadable pptx", Err: err}
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		m := slideName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: n, file: f})
	}
	// slide10.xml sorts before slide2.xml by name.
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var out []document.Paragraph
	for _, s := range slides {
		shapes, err := slideShapes(s.file)
		if err != nil {
			return nil, &ExtractionError{Reason: fmt.Sprintf("slide %d", s.num), Err: err}
		}
		if len(shapes) == 0 {
			continue
		}
		out = append(out, document.Paragraph{Text: strings.Join(shapes, " ")})
	}
	return out, nil
}

// slideShapes returns the text of each shape and graphic frame on a slide.
// Paragraphs inside a shape are joined with spaces.
func slideShapes(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		shapes []string
		paras  []string
		text   strings.Builder
		depth  int
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp", "graphicFrame":
				depth++
			case "t":
				inText = depth > 0
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(text.String()); s != "" {
					paras = append(paras, s)
				}
				text.Reset()
			case "sp", "graphicFrame":
				depth--
				if depth == 0 {
					if s := strings.TrimSpace(text.String()); s != "" {
						paras = append(paras, s)
					}
					text.Reset()
					if len(paras) > 0 {
						shapes = append(shapes, strings.Join(paras, " "))
					}
					paras = nil
				}
			}
		}
	}
	return shapes, nil
}
