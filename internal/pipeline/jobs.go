package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/flashgest/internal/aggregate"
)

// JobStatus represents the state of a generation request.
type JobStatus string

const (
	StatusReceived   JobStatus = "received"
	StatusExtracted  JobStatus = "extracted"
	StatusCleaned    JobStatus = "cleaned"
	StatusChunked    JobStatus = "chunked"
	StatusGenerating JobStatus = "generating"
	StatusAggregated JobStatus = "aggregated"
	StatusPersisted  JobStatus = "persisted"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions follow s.
func (s JobStatus) Terminal() bool {
	return s == StatusPersisted || s == StatusFailed
}

// Job tracks the state of a single uploaded document.
type Job struct {
	mu sync.Mutex

	ID           string
	Filename     string
	CreatedBy    string
	AutoApprove  bool
	MaxQuestions int // Overrides the per-chunk card request when > 0.

	Status   JobStatus
	Stage    string // Stage that failed, set with StatusFailed.
	Error    string
	RecordID string

	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	fileData []byte
	err      error
}

// Progress tracks processing progress.
type Progress struct {
	ChunksTotal     int      `json:"chunks_total"`
	ChunksProcessed int      `json:"chunks_processed"`
	Flashcards      int      `json:"flashcards"`
	Errors          []string `json:"errors"`
}

// NewJob creates a received job for an uploaded file.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    StatusReceived,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed at stage and keeps err for callers that
// inspect its type.
func (j *Job) Fail(stage string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Stage = stage
	j.Error = err.Error()
	j.err = err
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Err returns the error that failed the job, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// AddError records a non-fatal error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// SetChunksTotal records the chunk count.
func (j *Job) SetChunksTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksTotal = n
	j.UpdatedAt = time.Now()
}

// SetProgress copies aggregation counters into the job.
func (j *Job) SetProgress(st aggregate.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksProcessed = st.ChunksProcessed
	j.Progress.Flashcards = st.FlashcardsGenerated
	j.UpdatedAt = time.Now()
}

// Complete records the persisted record and releases the upload.
func (j *Job) Complete(recordID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.RecordID = recordID
	j.Status = StatusPersisted
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Filename  string    `json:"filename"`
	CreatedBy string    `json:"created_by,omitempty"`
	Status    JobStatus `json:"status"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
	RecordID  string    `json:"record_id,omitempty"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Filename:  j.Filename,
		CreatedBy: j.CreatedBy,
		Status:    j.Status,
		Stage:     j.Stage,
		Error:     j.Error,
		RecordID:  j.RecordID,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
