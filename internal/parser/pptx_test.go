package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func slideXML(shapes ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
	for _, s := range shapes {
		sb.WriteString(`<p:sp><p:txBody>`)
		for _, para := range strings.Split(s, "\n") {
			fmt.Fprintf(&sb, `<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, para)
		}
		sb.WriteString(`</p:txBody></p:sp>`)
	}
	sb.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return sb.String()
}

func buildPPTX(t *testing.T, slides map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range slides {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestPPTXParser_SlidesInNumericOrder(t *testing.T) {
	data := buildPPTX(t, map[string]string{
		"ppt/slides/slide1.xml":  slideXML("Cell Biology", "Cells are the unit of life"),
		"ppt/slides/slide2.xml":  slideXML("Organelles\nMitochondria make ATP"),
		"ppt/slides/slide10.xml": slideXML("Summary"),
		"ppt/slides/slide3.xml":  slideXML(),
		"ppt/notesSlides/x.xml":  slideXML("speaker notes"),
		"[Content_Types].xml":    "<Types/>",
	})

	p := &PPTXParser{}
	paras, err := p.Parse(bytes.NewReader(data), "deck.pptx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 3 {
		t.Fatalf("expected 3 slides with text, got %d: %+v", len(paras), paras)
	}

	want := []string{
		"Cell Biology Cells are the unit of life",
		"Organelles Mitochondria make ATP",
		"Summary",
	}
	for i, w := range want {
		if paras[i].Text != w {
			t.Errorf("slide %d: expected %q, got %q", i, w, paras[i].Text)
		}
		// Slides are not pages.
		if paras[i].Page != nil {
			t.Errorf("slide %d: expected no page, got %d", i, *paras[i].Page)
		}
	}
}

func TestPPTXParser_NotAZip(t *testing.T) {
	p := &PPTXParser{}
	_, err := p.Parse(strings.NewReader("plain text"), "deck.pptx")
	if err == nil {
		t.Fatal("expected error for non-zip input")
	}
}
