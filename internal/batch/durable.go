package batch

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/pkg/repository"
)

// DurableStore is the crash-surviving half of the job registry. It is
// the only source of job state after a process restart.
type DurableStore interface {
	Create(ctx context.Context, jobID string, totalFiles int) error
	RecordProgress(ctx context.Context, jobID string, processed, successful, failed int) error
	Finalize(ctx context.Context, job *Job) error
	Find(ctx context.Context, jobID string) (*Job, error)
	LinkManifest(ctx context.Context, jobID string, manifestID uuid.UUID, order int) error
}

// PostgresStore persists batch jobs in the batch_jobs table and
// manifest links in batch_job_manifests.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a durable job store.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("system", "batch_durable"),
	}
}

const insertJobSQL = `INSERT INTO batch_jobs(
		id, job_id, total_files, processed_files, successful_files, failed_files,
		status, results, errors)
	VALUES ($1, $2, $3, 0, 0, 0, $4, '[]', '[]')`

const updateProgressSQL = `UPDATE batch_jobs
	SET processed_files = $2, successful_files = $3, failed_files = $4
	WHERE job_id = $1 AND status = $5`

const finalizeJobSQL = `UPDATE batch_jobs
	SET status = $2, processed_files = $3, successful_files = $4, failed_files = $5,
		results = $6, errors = $7, error_message = $8, completed_at = NOW()
	WHERE job_id = $1 AND status = $9`

const selectJobSQL = `SELECT job_id, total_files, processed_files, successful_files,
		failed_files, status, results, errors, error_message, started_at, completed_at
	FROM batch_jobs WHERE job_id = $1`

const linkManifestSQL = `INSERT INTO batch_job_manifests(batch_job_id, manifest_id, processing_order)
	SELECT id, $2, $3 FROM batch_jobs WHERE job_id = $1`

func (s *PostgresStore) Create(ctx context.Context, jobID string, totalFiles int) error {
	_, err := s.db.ExecContext(ctx, insertJobSQL, uuid.New(), jobID, totalFiles, StatusProcessing)
	if err != nil {
		return fmt.Errorf("insert batch job: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordProgress(ctx context.Context, jobID string, processed, successful, failed int) error {
	err := repository.ExecExpectOne(ctx, s.db, updateProgressSQL,
		jobID, processed, successful, failed, StatusProcessing)
	if err != nil {
		return fmt.Errorf("update batch progress: %w", err)
	}
	return nil
}

// Finalize writes the terminal status along with the serialized results
// and errors arrays. Already-terminal rows are left untouched.
func (s *PostgresStore) Finalize(ctx context.Context, job *Job) error {
	results, err := json.Marshal(job.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	errItems, err := json.Marshal(job.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	err = repository.ExecExpectOne(ctx, s.db, finalizeJobSQL,
		job.JobID, job.Status, job.ProcessedFiles, job.SuccessfulFiles, job.FailedFiles,
		results, errItems, job.ErrorMessage, StatusProcessing)
	if err != nil {
		return fmt.Errorf("finalize batch job: %w", err)
	}
	return nil
}

// Find maps the durable row into the shared job view, tagging the
// source so callers can tell a post-restart read from a live one.
func (s *PostgresStore) Find(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectJobSQL, jobID)

	var job Job
	var results, errItems []byte
	err := row.Scan(
		&job.JobID,
		&job.TotalFiles,
		&job.ProcessedFiles,
		&job.SuccessfulFiles,
		&job.FailedFiles,
		&job.Status,
		&results,
		&errItems,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrJobNotFound, ErrJobNotFound)
	}

	if err := json.Unmarshal(results, &job.Results); err != nil {
		s.logger.Warn("malformed results payload", "job_id", jobID, "error", err)
		job.Results = []ItemResult{}
	}
	if err := json.Unmarshal(errItems, &job.Errors); err != nil {
		s.logger.Warn("malformed errors payload", "job_id", jobID, "error", err)
		job.Errors = []ItemError{}
	}

	job.Source = SourceDurable
	return &job, nil
}

// LinkManifest records the processing order of a committed manifest
// within its job.
func (s *PostgresStore) LinkManifest(ctx context.Context, jobID string, manifestID uuid.UUID, order int) error {
	err := repository.ExecExpectOne(ctx, s.db, linkManifestSQL, jobID, manifestID, order)
	if err != nil {
		return fmt.Errorf("link manifest: %w", err)
	}
	return nil
}
