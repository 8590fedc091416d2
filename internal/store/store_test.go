package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/flashcard"
)

func sampleRecord(source string) *Record {
	return &Record{
		SourceFile:   source,
		CreatedBy:    "tester",
		ModelVersion: "rule-based",
		NumChunks:    2,
		Flashcards: []flashcard.Flashcard{{
			Candidate:  flashcard.Candidate{Question: "What is ATP?", Answer: "Energy currency.", Keywords: []string{"energy"}},
			Confidence: 0.6,
		}},
		Stats: aggregate.Stats{FlashcardsGenerated: 1, ChunksProcessed: 2},
	}
}

func TestFile_SaveGetList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	first := sampleRecord("a.pdf")
	first.CreatedAt = time.Now().Add(-time.Minute)
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected ID to be assigned")
	}
	second := sampleRecord("b.pdf")
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.CreatedAt.IsZero() {
		t.Error("expected created_at to be assigned")
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SourceFile != "a.pdf" || len(got.Flashcards) != 1 || got.Flashcards[0].Confidence != 0.6 {
		t.Errorf("unexpected record %+v", got)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("expected newest first, got %+v", list)
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("expected limit 1, got %d", len(list))
	}
}

func TestFile_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := sampleRecord("notes.txt")
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Stats.ChunksProcessed != 2 || got.Flashcards[0].Keywords[0] != "energy" {
		t.Errorf("record not restored: %+v", got)
	}
}

func TestFile_NotFound(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "records.jsonl"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFile_DuplicateID(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "records.jsonl"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := sampleRecord("a.pdf")
	rec.ID = "fixed"
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	again := sampleRecord("b.pdf")
	again.ID = "fixed"
	if err := s.Save(context.Background(), again); err == nil {
		t.Error("expected duplicate ID to be rejected")
	}
}

func TestFile_CorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Error("expected error for corrupt records file")
	}
}

func TestPostgres_SaveGetList(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	p, err := NewPostgres(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Close()

	rec := sampleRecord("lecture.pdf")
	if err := p.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SourceFile != "lecture.pdf" || len(got.Flashcards) != 1 {
		t.Errorf("unexpected record %+v", got)
	}
	if _, err := p.Get(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	list, err := p.List(ctx, 5)
	if err != nil || len(list) == 0 {
		t.Errorf("expected records from list, got %d, %v", len(list), err)
	}
}
