// Package batch drives batch ingestion of manifest documents: job
// lifecycle tracking across an in-memory and a durable registry, and
// the per-item processing loop with failure isolation.
package batch

import (
	"time"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/internal/extraction"
)

// Status is the batch job lifecycle state. Jobs move from processing to
// exactly one terminal state and are never revived.
type Status string

// Job status constants.
const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source identifies which registry served a job read.
type Source string

// Job read sources.
const (
	SourceMemory  Source = "memory"
	SourceDurable Source = "durable"
)

// ItemResult is the outcome of one successfully extracted item. When
// persistence failed the raw extraction is retained and StorageError is
// set; extraction value is not lost because storage was unavailable.
type ItemResult struct {
	SourceFile   string               `json:"source_file"`
	ManifestID   *uuid.UUID           `json:"manifest_id,omitempty"`
	Extraction   *extraction.Manifest `json:"extraction,omitempty"`
	StorageError *string              `json:"storage_error,omitempty"`
	ProcessedAt  time.Time            `json:"processed_at"`
}

// ItemError records one item whose extraction failed.
type ItemError struct {
	SourceFile string    `json:"source_file"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Outcome is the result of processing exactly one item: either a
// result or an error, never both.
type Outcome struct {
	Result *ItemResult
	Error  *ItemError
}

// Job tracks the progress of one batch submission. Results and errors
// preserve submission order; counts are monotonically non-decreasing.
type Job struct {
	JobID           string       `json:"job_id"`
	TotalFiles      int          `json:"total_files"`
	ProcessedFiles  int          `json:"processed_files"`
	SuccessfulFiles int          `json:"successful_files"`
	FailedFiles     int          `json:"failed_files"`
	Status          Status       `json:"status"`
	Results         []ItemResult `json:"results"`
	Errors          []ItemError  `json:"errors"`
	ErrorMessage    *string      `json:"error_message,omitempty"`
	StartedAt       time.Time    `json:"started_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	Source          Source       `json:"source,omitempty"`
}

// apply folds one item outcome into the counters and the ordered
// result lists: processed increments by one and the outcome lands in
// results or errors.
func (j *Job) apply(outcome Outcome) {
	j.ProcessedFiles++
	if outcome.Error != nil {
		j.FailedFiles++
		j.Errors = append(j.Errors, *outcome.Error)
	} else if outcome.Result != nil {
		j.SuccessfulFiles++
		j.Results = append(j.Results, *outcome.Result)
	}
}

func (j *Job) clone() *Job {
	copied := *j
	copied.Results = append([]ItemResult(nil), j.Results...)
	copied.Errors = append([]ItemError(nil), j.Errors...)
	return &copied
}
