package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// File keeps records in an append-only JSON Lines file and serves reads
// from memory.
type File struct {
	mu      sync.Mutex
	path    string
	records []Record
	index   map[string]int
}

// OpenFile loads the records already in path, creating the file if needed.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	s := &File{path: path, index: make(map[string]int)}
	dec := json.NewDecoder(f)
	for n := 1; ; n++ {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("records file %s: record %d: %w", path, n, err)
		}
		s.index[rec.ID] = len(s.records)
		s.records = append(s.records, rec)
	}
	return s, nil
}

func (s *File) Save(ctx context.Context, rec *Record) error {
	stamp(rec)
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[rec.ID]; ok {
		return fmt.Errorf("record %s already exists", rec.ID)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open records file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close records file: %w", err)
	}

	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, *rec)
	return nil
}

func (s *File) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := s.records[i]
	return &rec, nil
}

func (s *File) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *File) Close() error { return nil }
