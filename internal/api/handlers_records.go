package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/export"
	"github.com/dgallion1/flashgest/internal/store"
)

const defaultListLimit = 50

type recordSummary struct {
	ID           string          `json:"id"`
	SourceFile   string          `json:"source_file"`
	CreatedBy    string          `json:"created_by,omitempty"`
	AutoApproved bool            `json:"auto_approved"`
	ModelVersion string          `json:"model_version"`
	NumChunks    int             `json:"num_chunks"`
	Stats        aggregate.Stats `json:"stats"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.records.List(r.Context(), limit)
	if err != nil {
		s.log.Error("list records failed", "error", err)
		jsonError(w, "failed to list records", http.StatusInternalServerError)
		return
	}
	out := make([]recordSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordSummary{
			ID:           rec.ID,
			SourceFile:   rec.SourceFile,
			CreatedBy:    rec.CreatedBy,
			AutoApproved: rec.AutoApproved,
			ModelVersion: rec.ModelVersion,
			NumChunks:    rec.NumChunks,
			Stats:        rec.Stats,
			CreatedAt:    rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExportRecord(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatTSV
	}
	contentType, ext, err := export.ContentType(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(rec.SourceFile, ext)))
	switch format {
	case export.FormatHTML:
		err = export.WriteHTML(w, rec.SourceFile, rec.Flashcards)
	default:
		err = export.WriteTSV(w, rec.Flashcards)
	}
	if err != nil {
		s.log.Error("export failed", "record_id", rec.ID, "format", format, "error", err)
	}
}

func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*store.Record, bool) {
	id := chi.URLParam(r, "recordID")
	rec, err := s.records.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "record not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error("get record failed", "record_id", id, "error", err)
		jsonError(w, "failed to load record", http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}
