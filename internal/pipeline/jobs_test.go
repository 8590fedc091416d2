package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/flashgest/internal/aggregate"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("notes.txt", []byte("data"))
	if job.ID == "" || job.Status != StatusReceived {
		t.Errorf("unexpected new job %+v", job.Snapshot())
	}
	if other := NewJob("notes.txt", nil); other.ID == job.ID {
		t.Error("expected distinct job IDs")
	}
	if string(job.FileData()) != "data" {
		t.Errorf("expected file data kept, got %q", job.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.pdf", []byte("x"))

	for _, status := range []JobStatus{
		StatusExtracted, StatusCleaned, StatusChunked, StatusGenerating, StatusAggregated,
	} {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(status)

		if job.Status != status {
			t.Errorf("expected status %q, got %q", status, job.Status)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", status)
		}
		if status.Terminal() {
			t.Errorf("status %q should not be terminal", status)
		}
	}

	job.Complete("rec-1")
	snap := job.Snapshot()
	if snap.Status != StatusPersisted || snap.RecordID != "rec-1" {
		t.Errorf("unexpected snapshot after complete: %+v", snap)
	}
	if job.FileData() != nil {
		t.Error("expected file data released after completion")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("a.pdf", []byte("x"))
	cause := errors.New("no extractable text")
	job.Fail("extracting", cause)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Stage != "extracting" || snap.Error != "no extractable text" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if !errors.Is(job.Err(), cause) {
		t.Errorf("expected original error kept, got %v", job.Err())
	}
	if !snap.Status.Terminal() {
		t.Error("failed should be terminal")
	}
}

func TestJob_Progress(t *testing.T) {
	job := NewJob("a.pdf", nil)
	job.SetChunksTotal(4)
	job.SetProgress(aggregate.Stats{FlashcardsGenerated: 7, ChunksProcessed: 2})
	job.AddError("chunk 1: model unavailable")

	snap := job.Snapshot()
	if snap.Progress.ChunksTotal != 4 || snap.Progress.ChunksProcessed != 2 || snap.Progress.Flashcards != 7 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(snap.Progress.Errors))
	}

	// Snapshots do not alias the job's error slice.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "chunk 1: model unavailable" {
		t.Error("snapshot mutation leaked into job")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.txt", nil)
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	done := &Job{ID: "old", Status: StatusPersisted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusGenerating, UpdatedAt: time.Now()}
	store.Put(done)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", Status: StatusFailed, UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("running") == nil {
		t.Error("expected unfinished job to survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
