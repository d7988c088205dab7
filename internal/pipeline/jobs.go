package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/rfc2texi/internal/config"
	"github.com/dgallion1/rfc2texi/internal/parser"
	"github.com/dgallion1/rfc2texi/internal/report"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFetching   JobStatus = "fetching"
	StatusConverting JobStatus = "converting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether a job in this status is finished.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	Source string `json:"source"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Title      string `json:"title,omitempty"`
	DocID      string `json:"doc_id,omitempty"`
	InfoName   string `json:"info_name,omitempty"`
	OutputPath string `json:"output_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	format      parser.Format
	spec        *config.SpecRef
	diagnostics []report.Diagnostic
	errors      []string
	done        chan struct{}
	doneOnce    sync.Once
}

func newJob(source string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		done:      make(chan struct{}),
	}
}

// NewUploadJob creates a job converting in-memory file data.
func NewUploadJob(filename string, data []byte) *Job {
	j := newJob(filename)
	j.fileData = data
	return j
}

// NewSpecJob creates a job that fetches its document from the archive
// before converting.
func NewSpecJob(spec config.SpecRef) *Job {
	j := newJob(spec.String())
	j.spec = &spec
	return j
}

// SetStatus updates job status atomically. Reaching a terminal status
// releases Done waiters.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	j.mu.Unlock()

	if status.Terminal() && j.done != nil {
		j.doneOnce.Do(func() { close(j.done) })
	}
}

// Done returns a channel closed when the job reaches a terminal
// status.
func (j *Job) Done() <-chan struct{} { return j.done }

// AddError records a processing error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// AddDiagnostics records the conversion report's diagnostics.
func (j *Job) AddDiagnostics(ds []report.Diagnostic) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.diagnostics = append(j.diagnostics, ds...)
	j.UpdatedAt = time.Now()
}

// SetResult records the completed conversion's identity and output
// location.
func (j *Job) SetResult(title, docID, infoName, outputPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.DocID = docID
	j.InfoName = infoName
	j.OutputPath = outputPath
	j.UpdatedAt = time.Now()
}

// SetFormat overrides filename-based format detection. Call before
// submitting the job.
func (j *Job) SetFormat(f parser.Format) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.format = f
}

// Format returns the explicit source format, empty when detection by
// filename applies.
func (j *Job) Format() parser.Format {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.format
}

// Touched returns the time of the last state change.
func (j *Job) Touched() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// FileData returns the raw upload bytes, nil for spec jobs.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Spec returns the archive reference, nil for upload jobs.
func (j *Job) Spec() *config.SpecRef {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.spec
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Source     string    `json:"source"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Title      string    `json:"title,omitempty"`
	DocID      string    `json:"doc_id,omitempty"`
	InfoName   string    `json:"info_name,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`

	Diagnostics []report.Diagnostic `json:"diagnostics"`
	Errors      []string            `json:"errors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	diags := make([]report.Diagnostic, len(j.diagnostics))
	copy(diags, j.diagnostics)
	return JobSnapshot{
		ID:          j.ID,
		Source:      j.Source,
		Status:      j.Status,
		Phase:       j.Phase,
		Title:       j.Title,
		DocID:       j.DocID,
		InfoName:    j.InfoName,
		OutputPath:  j.OutputPath,
		Diagnostics: diags,
		Errors:      errs,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.Touched()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
