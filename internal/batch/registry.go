package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Registry composes the in-memory and durable job stores. The
// background task owns the job tally returned by Create, so writes
// reach the durable copy even after the in-memory entry is deleted;
// any durable failure is logged and swallowed so job progress never
// stalls on a persistence hiccup. Reads prefer memory and fall back to
// the durable copy.
type Registry struct {
	memory  *MemoryRegistry
	durable DurableStore
	logger  *slog.Logger
}

// NewRegistry creates the composed job registry.
func NewRegistry(durable DurableStore, logger *slog.Logger) *Registry {
	return &Registry{
		memory:  NewMemoryRegistry(),
		durable: durable,
		logger:  logger.With("system", "batch_registry"),
	}
}

// Create initializes the job in both stores with status processing and
// returns the tally the background task holds for the rest of the run.
// In-memory initialization cannot fail; a durable failure is logged.
func (r *Registry) Create(ctx context.Context, jobID string, totalFiles int) *Job {
	job := r.memory.Create(jobID, totalFiles)

	if err := r.durable.Create(ctx, jobID, totalFiles); err != nil {
		r.logger.Warn("durable job create failed", "job_id", jobID, "error", err)
	}

	return job
}

// Record folds one item outcome into the tally and writes the updated
// counts to both stores. Progress keeps flowing to the durable copy
// when the in-memory entry has been deleted mid-run.
func (r *Registry) Record(ctx context.Context, job *Job, outcome Outcome) *Job {
	if job == nil || job.Status.Terminal() {
		return job
	}

	job.apply(outcome)
	r.memory.Record(job.JobID, outcome)

	err := r.durable.RecordProgress(ctx, job.JobID, job.ProcessedFiles, job.SuccessfulFiles, job.FailedFiles)
	if err != nil {
		r.logger.Warn("durable progress update failed", "job_id", job.JobID, "error", err)
	}

	return job
}

// Finalize moves the tally to a terminal status and writes it to both
// stores. The durable copy receives the tally's full results and
// errors whether or not the in-memory entry still exists. Terminal
// tallies are never transitioned again.
func (r *Registry) Finalize(ctx context.Context, job *Job, status Status, errorMessage *string) *Job {
	if job == nil || job.Status.Terminal() {
		return job
	}

	now := time.Now()
	job.Status = status
	job.CompletedAt = &now
	job.ErrorMessage = errorMessage

	r.memory.Finalize(job.JobID, status, errorMessage)

	if err := r.durable.Finalize(ctx, job); err != nil {
		r.logger.Warn("durable job finalize failed", "job_id", job.JobID, "error", err)
	}

	return job
}

// Find checks the in-memory store first and falls back to the durable
// store, tagging the source of the returned view. An unknown job id is
// ErrJobNotFound.
func (r *Registry) Find(ctx context.Context, jobID string) (*Job, error) {
	if job, ok := r.memory.Find(jobID); ok {
		job.Source = SourceMemory
		return job, nil
	}
	return r.durable.Find(ctx, jobID)
}

// Delete removes only the in-memory entry; the durable copy is
// untouched and a still-running batch keeps recording against it.
// Reports whether an entry existed.
func (r *Registry) Delete(jobID string) bool {
	return r.memory.Delete(jobID)
}

// LinkManifest records batch output order for a committed manifest.
// Link failures are logged, not surfaced; the manifest itself is
// already durably committed.
func (r *Registry) LinkManifest(ctx context.Context, jobID string, manifestID uuid.UUID, order int) {
	if err := r.durable.LinkManifest(ctx, jobID, manifestID, order); err != nil {
		r.logger.Warn("manifest link failed", "job_id", jobID, "manifest_id", manifestID, "error", err)
	}
}
