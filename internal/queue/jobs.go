package queue

import (
	"sync"
	"time"

	"github.com/transcodelab/transcribe-server/internal/types"
)

// Job is one pipeline run. Fields are written only through the
// Registry once the job is enqueued.
type Job struct {
	ID         string
	Name       string
	SourceType string
	FilePath   string
	VideoURL   string
	Language   string
	Status     string
	Error      error
	Result     *types.PipelineResult
	CreatedAt  time.Time
}

// NewJob creates a queued job.
func NewJob(id, name, sourceType, filePath, language string) *Job {
	return &Job{
		ID:         id,
		Name:       name,
		SourceType: sourceType,
		FilePath:   filePath,
		Language:   language,
		Status:     types.StatusQueued,
		CreatedAt:  time.Now(),
	}
}

// Registry tracks jobs in memory for status lookups. Reads get value
// copies so callers never share mutable state with the workers.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Add registers a job.
func (r *Registry) Add(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

// Get returns a snapshot of a job by ID.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SetStatus moves a job to a new pipeline state.
func (r *Registry) SetStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = status
	}
}

// SetFailure records a terminal failure.
func (r *Registry) SetFailure(id, status string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = status
		job.Error = err
	}
}

// SetResult records a completed run.
func (r *Registry) SetResult(id string, result *types.PipelineResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = types.StatusCompleted
		job.Result = result
	}
}
