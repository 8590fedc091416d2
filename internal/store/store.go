// Package store persists generated flashcard records. A record is written
// once per processed document and read back by the API and exporters.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/flashcard"
)

// ErrNotFound is returned by Get for an unknown record ID.
var ErrNotFound = errors.New("record not found")

// Record is the persisted result of one generation request.
type Record struct {
	ID           string                `json:"id"`
	SourceFile   string                `json:"source_file"`
	CreatedBy    string                `json:"created_by,omitempty"`
	AutoApproved bool                  `json:"auto_approved"`
	ModelVersion string                `json:"model_version"`
	NumChunks    int                   `json:"num_chunks"`
	ContentHash  string                `json:"content_hash,omitempty"`
	Flashcards   []flashcard.Flashcard `json:"flashcards"`
	Stats        aggregate.Stats       `json:"stats"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Store saves and loads records.
type Store interface {
	// Save assigns ID and CreatedAt when unset and writes rec.
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

func stamp(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Flashcards == nil {
		rec.Flashcards = []flashcard.Flashcard{}
	}
}
