package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/document"
	"github.com/dgallion1/flashgest/internal/parser"
	"github.com/dgallion1/flashgest/internal/pipeline"
)

// upload is a validated multipart upload.
type upload struct {
	filename string
	data     []byte
}

// readUpload reads the "file" part of a multipart request, enforcing the
// upload size limit and the supported extensions. On failure it writes the
// response and returns false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return upload{}, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		err := &parser.UnsupportedFormatError{Ext: strings.ToLower(filepath.Ext(filename))}
		jsonError(w, err.Error(), errorStatus(err))
		return upload{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}
	return upload{filename: filename, data: data}, true
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	maxQ := 0
	if v := r.FormValue("max_q"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "max_q must be a positive integer", http.StatusBadRequest)
			return
		}
		maxQ = n
	}
	autoApprove := false
	if v := r.FormValue("auto_approve"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "auto_approve must be a boolean", http.StatusBadRequest)
			return
		}
		autoApprove = b
	}

	job := pipeline.NewJob(up.filename, up.data)
	job.CreatedBy = r.FormValue("created_by")
	job.AutoApprove = autoApprove
	job.MaxQuestions = maxQ

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

// handlePreviewChunks extracts, cleans and chunks an upload synchronously
// without generating cards.
func (s *Server) handlePreviewChunks(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	chunks, err := s.prep.Prepare(bytes.NewReader(up.data), up.filename)
	if err != nil {
		s.log.Warn("chunk preview failed", "filename", up.filename, "error", err)
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c.Text)
	}
	if limit := s.cfg.MaxTotalChars; limit > 0 && total > limit {
		err := &aggregate.DocumentTooLargeError{Chars: total, Limit: limit}
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":    up.filename,
		"total_chars": total,
		"chunks":      orEmpty(chunks),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":    snap.ID,
		"filename":  snap.Filename,
		"status":    snap.Status,
		"progress":  snap.Progress,
		"record_id": snap.RecordID,
	}
	if snap.Status == pipeline.StatusFailed {
		resp["stage"] = snap.Stage
		resp["error"] = snap.Error
		resp["error_status"] = errorStatus(job.Err())
	}
	writeJSON(w, http.StatusOK, resp)
}

func orEmpty(c []document.Chunk) []document.Chunk {
	if c == nil {
		return []document.Chunk{}
	}
	return c
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
