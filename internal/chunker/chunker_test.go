package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/flashgest/internal/document"
	"github.com/dgallion1/flashgest/internal/heading"
)

func paragraphs(texts ...string) []document.Paragraph {
	out := make([]document.Paragraph, len(texts))
	for i, t := range texts {
		out[i] = document.Paragraph{Text: t}
	}
	return out
}

func sentence(i int) string {
	return fmt.Sprintf("Paragraph %d explains a separate idea about cellular respiration in enough words to matter.", i)
}

func TestChunk_SmallInputFitsOneChunk(t *testing.T) {
	paras := paragraphs("The cell is the basic unit of life.", "it has a membrane.")
	chunks, err := Chunk(paras, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ID != 0 {
		t.Errorf("expected ID 0, got %d", chunks[0].ID)
	}
	// The short first paragraph absorbs its lowercase continuation.
	if !strings.Contains(chunks[0].Text, "life. it has a membrane") {
		t.Errorf("expected merged paragraphs, got %q", chunks[0].Text)
	}
}

func TestChunk_NoContent(t *testing.T) {
	_, err := Chunk(paragraphs("", "   ", "\n"), nil, DefaultConfig())
	var nc *NoContentError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NoContentError, got %v", err)
	}

	_, err = Chunk(nil, nil, DefaultConfig())
	if !errors.As(err, &nc) {
		t.Fatalf("expected NoContentError for nil input, got %v", err)
	}
}

func TestChunk_RespectsMaxLength(t *testing.T) {
	var texts []string
	for i := 0; i < 60; i++ {
		texts = append(texts, sentence(i))
	}
	cfg := Config{MaxChunkChars: 500, OverlapChars: 100}
	chunks, err := Chunk(paragraphs(texts...), nil, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if Length(c.Text) > cfg.MaxChunkChars {
			t.Errorf("chunk %d has length %d > %d", i, Length(c.Text), cfg.MaxChunkChars)
		}
		if c.ID != i {
			t.Errorf("chunk %d has ID %d", i, c.ID)
		}
	}
}

func TestChunk_OversizedParagraphIsOwnChunk(t *testing.T) {
	big := strings.Repeat("Mitochondria make ATP. ", 40)
	paras := paragraphs("Intro sentence ends here.", big, "Closing sentence ends here.")
	cfg := Config{MaxChunkChars: 300, OverlapChars: 50}
	chunks, err := Chunk(paras, nil, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, c := range chunks {
		if Length(c.Text) > cfg.MaxChunkChars {
			if !strings.HasPrefix(c.Text, "Mitochondria") {
				t.Errorf("oversized chunk should hold only the long paragraph, got %q", c.Text[:40])
			}
			found = true
		}
	}
	if !found {
		t.Error("expected one oversized chunk")
	}
}

func TestChunk_Overlap(t *testing.T) {
	var texts []string
	for i := 0; i < 20; i++ {
		texts = append(texts, sentence(i))
	}
	cfg := Config{MaxChunkChars: 400, OverlapChars: 60}
	chunks, err := Chunk(paragraphs(texts...), nil, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1].Text, chunks[i].Text
		seed, _, _ := strings.Cut(cur, separator)
		if Length(seed) > cfg.OverlapChars {
			t.Errorf("chunk %d: seed %q longer than overlap", i, seed)
		}
		if !strings.HasSuffix(prev, seed) {
			t.Errorf("chunk %d does not begin with a suffix of chunk %d: %q", i, i-1, seed)
		}
	}
}

func TestChunk_ZeroOverlap(t *testing.T) {
	var texts []string
	for i := 0; i < 20; i++ {
		texts = append(texts, sentence(i))
	}
	chunks, err := Chunk(paragraphs(texts...), nil, Config{MaxChunkChars: 400, OverlapChars: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(chunks); i++ {
		if !strings.HasPrefix(chunks[i].Text, "Paragraph") {
			t.Errorf("chunk %d should start at a paragraph boundary, got %q", i, chunks[i].Text[:20])
		}
	}
}

func TestChunk_NoSeedOnlyChunk(t *testing.T) {
	// Every paragraph nearly fills the budget, so the seed must shrink.
	p := strings.Repeat("x", 290) + " end"
	cfg := Config{MaxChunkChars: 300, OverlapChars: 100}
	chunks, err := Chunk(paragraphs(p, p, p), nil, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !strings.HasSuffix(c.Text, "end") {
			t.Errorf("chunk %d does not contain a full paragraph: %q", i, c.Text)
		}
		if Length(c.Text) > cfg.MaxChunkChars {
			t.Errorf("chunk %d over budget: %d", i, Length(c.Text))
		}
	}
}

func TestChunk_HeadingsAndPages(t *testing.T) {
	paras := []document.Paragraph{
		{Text: "Section Introduction\nThe cell is the basic unit of life.", Page: document.PageOf(1)},
		{Text: "Cells contain organelles that perform specific functions.", Page: document.PageOf(2)},
		{Text: "Membranes separate compartments.", Page: document.PageOf(3)},
	}
	chunks, err := Chunk(paras, heading.Map(paras), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Heading == nil || *c.Heading != "Section Introduction" {
		t.Errorf("expected heading %q, got %v", "Section Introduction", c.Heading)
	}
	if c.PageStart == nil || *c.PageStart != 1 {
		t.Errorf("expected page_start 1, got %v", c.PageStart)
	}
	if c.PageEnd == nil || *c.PageEnd != 3 {
		t.Errorf("expected page_end 3, got %v", c.PageEnd)
	}
}

func TestChunk_PagesSkipNil(t *testing.T) {
	paras := []document.Paragraph{
		{Text: "No page here at all."},
		{Text: "Page two content follows.", Page: document.PageOf(2)},
		{Text: "Again no page here."},
	}
	chunks, err := Chunk(paras, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := chunks[0]
	if c.PageStart == nil || *c.PageStart != 2 || c.PageEnd == nil || *c.PageEnd != 2 {
		t.Errorf("expected pages 2..2, got %v..%v", c.PageStart, c.PageEnd)
	}
}

func TestChunk_TrimsPunctuation(t *testing.T) {
	chunks, err := Chunk(paragraphs("- (Energy is conserved) -"), nil, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].Text != "Energy is conserved" {
		t.Errorf("got %q", chunks[0].Text)
	}
}

func TestTail(t *testing.T) {
	if got := tail("héllo", 3); got != "llo" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("héllo", 10); got != "héllo" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("héllo", 0); got != "" {
		t.Errorf("tail = %q", got)
	}
}
