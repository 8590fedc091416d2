package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/flashgest/internal/flashcard"
)

func card(q, a string, conf float64, kw ...string) flashcard.Flashcard {
	return flashcard.Flashcard{
		Candidate:  flashcard.Candidate{Question: q, Answer: a, Keywords: kw},
		Confidence: conf,
	}
}

func TestTag(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Cell Biology", "cell-biology"},
		{"  ATP ", "atp"},
		{"C++ / Go", "c-go"},
		{"Énergie", "énergie"},
		{"---", ""},
		{strings.Repeat("a", 60), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		if got := Tag(tt.in); got != tt.want {
			t.Errorf("Tag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTags_Dedup(t *testing.T) {
	got := Tags([]string{"Cell Biology", "atp", "cell-biology", " "})
	if strings.Join(got, " ") != "cell-biology atp" {
		t.Errorf("unexpected tags %v", got)
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTSV(&buf, []flashcard.Flashcard{
		card("What\tis ATP?", "The energy\ncurrency & more", 0.5, "ATP", "Energy Currency"),
		card("Why?", "Because.", 0.55),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 3 header lines and 2 notes, got %d: %q", len(lines), lines)
	}
	if lines[0] != "#separator:tab" || lines[2] != "#tags column:3" {
		t.Errorf("unexpected header %q", lines[:3])
	}
	if want := "What is ATP?\tThe energy<br>currency &amp; more\tatp energy-currency"; lines[3] != want {
		t.Errorf("note = %q, want %q", lines[3], want)
	}
	if want := "Why?\tBecause.\t"; lines[4] != want {
		t.Errorf("note = %q, want %q", lines[4], want)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(&buf, "Biology <101>", []flashcard.Flashcard{
		card("Is <script>alert(1)</script> escaped?", "**ATP** stores `energy`.\n\n<b>raw</b>", 0.85, "atp"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Biology &lt;101&gt;</title>",
		"<strong>ATP</strong>",
		"<code>energy</code>",
		"Is &lt;script&gt;alert(1)&lt;/script&gt; escaped?",
		"confidence 0.85 | keywords: atp",
		"1 card",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(out, "<b>raw</b>") || strings.Contains(out, "<script>") {
		t.Error("expected raw HTML to be suppressed")
	}
}

func TestContentTypeAndFilename(t *testing.T) {
	if _, ext, err := ContentType(FormatHTML); err != nil || ext != ".html" {
		t.Errorf("unexpected html content type: %q, %v", ext, err)
	}
	if _, _, err := ContentType("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
	if got := Filename("/tmp/Lecture 3 Notes.pdf", ".tsv"); got != "lecture-3-notes.tsv" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := Filename("???.pdf", ".html"); got != "flashcards.html" {
		t.Errorf("unexpected fallback filename %q", got)
	}
}
