package batch

import (
	"sync"
	"time"
)

// MemoryRegistry is the transient job store: fast, authoritative while
// the process lives, lost on restart. Each job is mutated by at most
// one background task, but reads may come from any request, so access
// is guarded and reads return copies.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryRegistry creates an empty in-memory job registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{jobs: make(map[string]*Job)}
}

// Create initializes a job with status processing and zero progress.
func (m *MemoryRegistry) Create(jobID string, totalFiles int) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		JobID:      jobID,
		TotalFiles: totalFiles,
		Status:     StatusProcessing,
		Results:    []ItemResult{},
		Errors:     []ItemError{},
		StartedAt:  time.Now(),
	}
	m.jobs[jobID] = job
	return job.clone()
}

// Record applies one item outcome: processed count increments by one
// and the outcome is appended to results or errors in item order.
// Outcomes against unknown or terminal jobs are dropped.
func (m *MemoryRegistry) Record(jobID string, outcome Outcome) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return nil
	}

	job.apply(outcome)
	return job.clone()
}

// Finalize moves the job to a terminal status. Terminal jobs are never
// transitioned again.
func (m *MemoryRegistry) Finalize(jobID string, status Status, errorMessage *string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return nil
	}

	now := time.Now()
	job.Status = status
	job.CompletedAt = &now
	job.ErrorMessage = errorMessage

	return job.clone()
}

// Find returns a copy of the job, or false when absent.
func (m *MemoryRegistry) Find(jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, false
	}
	return job.clone(), true
}

// Delete removes the in-memory entry and reports whether it existed.
// Deleting twice is safe; the durable copy is unaffected.
func (m *MemoryRegistry) Delete(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.jobs[jobID]
	delete(m.jobs, jobID)
	return ok
}
