package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/flashcard"
	"github.com/dgallion1/flashgest/internal/generate"
	"github.com/dgallion1/flashgest/internal/store"
)

// Worker processes a single document job.
type Worker struct {
	prep   Preparer
	gen    aggregate.Generator
	quotas aggregate.Quotas
	store  store.Store
	log    *slog.Logger
}

func NewWorker(prep Preparer, gen aggregate.Generator, quotas aggregate.Quotas, st store.Store, log *slog.Logger) *Worker {
	return &Worker{
		prep:   prep,
		gen:    gen,
		quotas: quotas,
		store:  st,
		log:    log,
	}
}

// Process runs the full generation pipeline for a job. Failures before
// generation are terminal; a failing chunk only adds a progress error.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	data := job.FileData()

	// Phase 1: Extract
	paras, err := w.prep.Extract(bytes.NewReader(data), job.Filename)
	if err != nil {
		w.fail(log, job, "extracting", err)
		return
	}
	job.SetStatus(StatusExtracted)

	// Phase 2: Clean
	paras = w.prep.Clean(paras)
	job.SetStatus(StatusCleaned)

	// Phase 3: Chunk
	chunks, err := w.prep.Chunk(paras)
	if err != nil {
		w.fail(log, job, "chunking", err)
		return
	}
	job.SetChunksTotal(len(chunks))
	job.SetStatus(StatusChunked)
	log.Info("chunked document", "paragraphs", len(paras), "chunks", len(chunks))

	// Phase 4: Generate and aggregate
	job.SetStatus(StatusGenerating)
	quotas := w.quotas
	if job.MaxQuestions > 0 {
		quotas.QuestionsPerChunk = job.MaxQuestions
	}
	agg := aggregate.New(w.gen, quotas, log)
	agg.OnChunk = job.SetProgress
	res, err := agg.Run(ctx, chunks)
	if err != nil {
		w.fail(log, job, "generating", err)
		return
	}
	for _, f := range res.Failures {
		job.AddError(fmt.Sprintf("chunk %d: %s", f.ChunkID, f.Error))
	}
	flashcard.Enrich(res.Flashcards, flashcard.DefaultKeywords)
	job.SetStatus(StatusAggregated)
	log.Info("generation complete",
		"flashcards", res.Stats.FlashcardsGenerated,
		"chunks_processed", res.Stats.ChunksProcessed,
		"chunk_errors", len(res.Failures),
	)

	// Phase 5: Persist
	rec := &store.Record{
		SourceFile:   job.Filename,
		CreatedBy:    job.CreatedBy,
		AutoApproved: job.AutoApprove,
		ModelVersion: generate.NameOf(w.gen),
		NumChunks:    len(chunks),
		ContentHash:  ContentHashHex(data),
		Flashcards:   res.Flashcards,
		Stats:        res.Stats,
	}
	if err := w.store.Save(ctx, rec); err != nil {
		w.fail(log, job, "persisting", err)
		return
	}
	job.Complete(rec.ID)
	log.Info("record persisted", "record_id", rec.ID)
}

func (w *Worker) fail(log *slog.Logger, job *Job, stage string, err error) {
	log.Error("job failed", "stage", stage, "error", err)
	job.Fail(stage, err)
}
