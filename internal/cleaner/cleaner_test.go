package cleaner

import (
	"strings"
	"testing"

	"github.com/dgallion1/flashgest/internal/document"
)

func TestClean_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t\n"} {
		if got := Clean(in); got != "" {
			t.Errorf("Clean(%q) = %q, want empty", in, got)
		}
	}
}

func TestClean_AllNoise(t *testing.T) {
	in := "Page 3\n12\nISBN 978-3-16-148410-0\n© 2021 Some Press. All rights reserved."
	if got := Clean(in); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestClean_RepairsHyphenation(t *testing.T) {
	got := Clean("The mito-\nchondria produce energy.")
	if got != "The mitochondria produce energy." {
		t.Errorf("got %q", got)
	}
}

func TestClean_RepairsHyphenationBeforeAnyWordCharacter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Self-\nEsteem of students matters.", "The SelfEsteem of students matters."},
		{"Data from COVID-\n19 studies is used.", "Data from COVID19 studies is used."},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClean_RepairsChainedHyphenation(t *testing.T) {
	got := Clean("anti-\ndis-\nestablishment is long.")
	if !strings.Contains(got, "antidisestablishment") {
		t.Errorf("expected chained repair, got %q", got)
	}
}

func TestClean_MergesWrappedLines(t *testing.T) {
	in := "Photosynthesis converts light energy into chemical energy stored in\nglucose molecules inside the chloroplast."
	got := Clean(in)
	want := "Photosynthesis converts light energy into chemical energy stored in glucose molecules inside the chloroplast."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClean_DoesNotMergeAfterTerminalPunctuation(t *testing.T) {
	in := "First sentence ends here.\nSecond line"
	got := Clean(in)
	if got != "First sentence ends here.\nSecond line" {
		t.Errorf("got %q", got)
	}
}

func TestClean_DropsFooterInsideSentence(t *testing.T) {
	in := "The cell membrane is\nPage 4\nselectively permeable."
	got := Clean(in)
	if got != "The cell membrane is selectively permeable." {
		t.Errorf("got %q", got)
	}
}

func TestClean_DropsNumericAndDuplicateLines(t *testing.T) {
	in := "Cells divide by mitosis.\nCells divide by mitosis.\nDaughter cells are identical.\n\n42"
	got := Clean(in)
	if strings.Count(got, "Cells divide by mitosis.") != 1 {
		t.Errorf("expected duplicate line removed, got %q", got)
	}
	if strings.Contains(got, "42") {
		t.Errorf("expected page number removed, got %q", got)
	}
}

func TestClean_KeepsWordsContainingDOI(t *testing.T) {
	got := Clean("Doing science requires patience.")
	if got != "Doing science requires patience." {
		t.Errorf("got %q", got)
	}
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	got := Clean("Energy   is\t\tconserved.\n\n\n\nMass is   conserved.")
	if got != "Energy is conserved.\n\nMass is conserved." {
		t.Errorf("got %q", got)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Section Introduction\nThe cell is the basic unit of life.",
		"LECTURE 4\nCS101 Notes\nThe mito-\nchondria is the powerhouse\nof the cell.\n\n12\n\nIt produces ATP.",
		"Short line\nAnother short line\nA third one that ends.\n\n\nNew paragraph here",
		"The membrane is\nPage 9\nA VERY LONG LINE THAT STARTS UPPERCASE AND RUNS WELL PAST THE SIXTY CHARACTER MARK.",
		"Copyright notice follows\nall rights\nreserved\nBody text.",
		"well-\nPage 2\nKnown results are stated in the following long paragraph of the text body.",
		"Table of\ncontents\nChapter one begins.",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestIsNoise(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Page 12", true},
		{"  page 3 of 10", true},
		{"Lecture Notes on Biology", true},
		{"Slide 4", true},
		{"Table of Contents", true},
		{"ISBN 0-306-40615-2", true},
		{"doi:10.1000/182", true},
		{"© 2020 Press", true},
		{"CS101 Introduction", true},
		{"The cell is small.", false},
		{"Pages of history", false},
		{"Doing it right", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsNoise(tt.line); got != tt.want {
				t.Errorf("IsNoise(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParagraphs_DropsEmptyAndKeepsPages(t *testing.T) {
	in := []document.Paragraph{
		{Text: "Page 1", Page: document.PageOf(1)},
		{Text: "Atoms form molecules.", Page: document.PageOf(2)},
	}
	out := Paragraphs(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(out))
	}
	if out[0].Page == nil || *out[0].Page != 2 {
		t.Errorf("expected page 2, got %v", out[0].Page)
	}
}
