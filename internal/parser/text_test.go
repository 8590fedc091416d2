package parser

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\n\nThird paragraph."
	p := &TextParser{}
	paras, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if paras[i].Text != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, paras[i].Text)
		}
		if paras[i].Page != nil {
			t.Errorf("paragraph[%d]: expected no page, got %d", i, *paras[i].Page)
		}
	}
}

func TestTextParser_CRLF(t *testing.T) {
	p := &TextParser{}
	paras, err := p.Parse(strings.NewReader("Line one.\r\nLine two.\r\n\r\nNext."), "win.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 2 || paras[0].Text != "Line one.\nLine two." {
		t.Errorf("unexpected paragraphs: %+v", paras)
	}
}

func TestTextParser_InvalidUTF8Dropped(t *testing.T) {
	p := &TextParser{}
	paras, err := p.Parse(strings.NewReader("caf\xff\xfee au lait"), "bad.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 1 || paras[0].Text != "cafe au lait" {
		t.Errorf("unexpected paragraphs: %+v", paras)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	paras, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paras) != 0 {
		t.Errorf("expected no paragraphs, got %d", len(paras))
	}
}
