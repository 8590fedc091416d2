package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS flashcard_records (
    id            TEXT PRIMARY KEY,
    source_file   TEXT NOT NULL,
    created_by    TEXT NOT NULL DEFAULT '',
    auto_approved BOOLEAN NOT NULL DEFAULT FALSE,
    model_version TEXT NOT NULL DEFAULT '',
    num_chunks    INTEGER NOT NULL DEFAULT 0,
    content_hash  TEXT NOT NULL DEFAULT '',
    flashcards    JSONB NOT NULL,
    stats         JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS flashcard_records_created_at_idx ON flashcard_records (created_at DESC);
`

const selectRecord = `
SELECT id, source_file, created_by, auto_approved, model_version,
       num_chunks, content_hash, flashcards, stats, created_at
FROM flashcard_records`

// Postgres stores records in a single table with the cards kept as JSONB.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to connStr and creates the schema if missing.
func NewPostgres(ctx context.Context, connStr string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create flashcard_records table: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("postgres record store ready")
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Save(ctx context.Context, rec *Record) error {
	stamp(rec)
	cards, err := json.Marshal(rec.Flashcards)
	if err != nil {
		return fmt.Errorf("marshal flashcards: %w", err)
	}
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
        INSERT INTO flashcard_records (
            id, source_file, created_by, auto_approved, model_version,
            num_chunks, content_hash, flashcards, stats, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `,
		rec.ID,
		rec.SourceFile,
		rec.CreatedBy,
		rec.AutoApproved,
		rec.ModelVersion,
		rec.NumChunks,
		rec.ContentHash,
		string(cards),
		string(stats),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	row := p.pool.QueryRow(ctx, selectRecord+` WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	query := selectRecord + ` ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec          Record
		cards, stats []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.SourceFile,
		&rec.CreatedBy,
		&rec.AutoApproved,
		&rec.ModelVersion,
		&rec.NumChunks,
		&rec.ContentHash,
		&cards,
		&stats,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cards, &rec.Flashcards); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}
	if err := json.Unmarshal(stats, &rec.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &rec, nil
}
