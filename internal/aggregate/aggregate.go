// Package aggregate drives a flashcard generator over the chunks of one
// document, enforcing the document size limit, the per-chunk and total card
// quotas, and deduplication across chunks.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/flashgest/internal/document"
	"github.com/dgallion1/flashgest/internal/flashcard"
)

// Generator produces candidate cards for one chunk of text.
type Generator interface {
	Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error)

func (f GeneratorFunc) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	return f(ctx, text, maxQuestions)
}

// Quotas bound a single aggregation run.
type Quotas struct {
	MaxTotalChars     int // Combined chunk text limit; 0 disables the check.
	MaxTotalQuestions int // Cards kept per document; 0 means no limit.
	QuestionsPerChunk int // Cards requested from the generator per chunk.
}

// DefaultQuotas returns sensible defaults.
func DefaultQuotas() Quotas {
	return Quotas{
		MaxTotalChars:     80000,
		MaxTotalQuestions: 25,
		QuestionsPerChunk: 6,
	}
}

// DocumentTooLargeError is returned before any generation when the chunks
// together exceed MaxTotalChars.
type DocumentTooLargeError struct {
	Chars int
	Limit int
}

func (e *DocumentTooLargeError) Error() string {
	return fmt.Sprintf("document too large: %d characters exceeds limit of %d", e.Chars, e.Limit)
}

// Stats summarizes a run.
type Stats struct {
	FlashcardsGenerated int `json:"flashcards_generated"`
	ChunksProcessed     int `json:"chunks_processed"`
}

// ChunkFailure records a generator error for one chunk.
type ChunkFailure struct {
	ChunkID int    `json:"chunk_id"`
	Error   string `json:"error"`
}

// Result is the output of a run.
type Result struct {
	Flashcards []flashcard.Flashcard `json:"flashcards"`
	Stats      Stats                 `json:"stats"`
	Failures   []ChunkFailure        `json:"failures,omitempty"`
}

// Aggregator runs a generator across chunks.
type Aggregator struct {
	gen    Generator
	quotas Quotas
	log    *slog.Logger

	// OnChunk, if set, is called after each chunk that was sent to the
	// generator, with the running totals.
	OnChunk func(Stats)
}

// New creates an Aggregator.
func New(gen Generator, quotas Quotas, log *slog.Logger) *Aggregator {
	if quotas.QuestionsPerChunk <= 0 {
		quotas.QuestionsPerChunk = 6
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{gen: gen, quotas: quotas, log: log}
}

// Run generates cards chunk by chunk in order. Blank chunks are skipped
// without counting. A generator error fails only its chunk. Generation stops
// as soon as the total quota is met; the chunk that met it still counts as
// processed.
func (a *Aggregator) Run(ctx context.Context, chunks []document.Chunk) (*Result, error) {
	if limit := a.quotas.MaxTotalChars; limit > 0 {
		total := 0
		for _, c := range chunks {
			total += utf8.RuneCountInString(c.Text)
		}
		if total > limit {
			return nil, &DocumentTooLargeError{Chars: total, Limit: limit}
		}
	}

	res := &Result{Flashcards: []flashcard.Flashcard{}}
	seen := make(map[string]struct{})
	maxTotal := a.quotas.MaxTotalQuestions
	full := func() bool { return maxTotal > 0 && len(res.Flashcards) >= maxTotal }

	for _, c := range chunks {
		if full() {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}

		cands, err := a.gen.Generate(ctx, text, a.quotas.QuestionsPerChunk)
		res.Stats.ChunksProcessed++
		if err != nil {
			a.log.Warn("chunk generation failed", "chunk_id", c.ID, "error", err)
			res.Failures = append(res.Failures, ChunkFailure{ChunkID: c.ID, Error: err.Error()})
			a.progress(res)
			continue
		}

		for _, card := range flashcard.Validate(cands) {
			key := flashcard.Key(card.Question, card.Answer)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			res.Flashcards = append(res.Flashcards, card)
			if full() {
				break
			}
		}
		res.Stats.FlashcardsGenerated = len(res.Flashcards)
		a.progress(res)
	}

	res.Stats.FlashcardsGenerated = len(res.Flashcards)
	return res, nil
}

func (a *Aggregator) progress(res *Result) {
	if a.OnChunk != nil {
		a.OnChunk(res.Stats)
	}
}
