package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/internal/extraction"
	"github.com/tfiliano/dt-route-planner/internal/manifests"
)

// ManifestStore is the slice of the manifest system the processor needs.
type ManifestStore interface {
	Store(ctx context.Context, extracted *extraction.Manifest, meta manifests.ItemMeta) (*manifests.Manifest, error)
}

// Item is one submitted document: a spooled file plus its upload
// metadata. Cleanup releases the spooled file and runs on every exit
// path of the item's processing.
type Item struct {
	Path      string
	Filename  string
	SizeBytes int64
	PageCount *int
	Cleanup   func() error
}

// Processor drives extraction and persistence over each item of a
// batch. One detached background task per submission; items within a
// job are processed sequentially in submission order, so results,
// errors, and manifest links stay deterministic.
type Processor struct {
	store     ManifestStore
	extractor extraction.Extractor
	registry  *Registry
	logger    *slog.Logger
}

// NewProcessor creates a batch processor.
func NewProcessor(store ManifestStore, extractor extraction.Extractor, registry *Registry, logger *slog.Logger) *Processor {
	return &Processor{
		store:     store,
		extractor: extractor,
		registry:  registry,
		logger:    logger.With("system", "batch"),
	}
}

// Registry exposes the composed job registry for reads and deletes.
func (p *Processor) Registry() *Registry {
	return p.registry
}

// Submit validates the batch, creates the job record in both registry
// stores, and hands the items to a detached background task. It
// returns the job id immediately; progress is pulled via the registry.
func (p *Processor) Submit(ctx context.Context, items []Item) (string, error) {
	if len(items) == 0 {
		return "", ErrNoFiles
	}

	jobID := uuid.NewString()
	job := p.registry.Create(ctx, jobID, len(items))

	p.logger.Info("batch submitted", "job_id", jobID, "total_files", len(items))

	// The batch outlives the submitting request.
	go p.run(context.WithoutCancel(ctx), job, items)

	return jobID, nil
}

func (p *Processor) run(ctx context.Context, job *Job, items []Item) {
	next := 0
	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprintf("batch aborted: %v", rec)
			p.logger.Error("batch job failed", "job_id", job.JobID, "error", rec)
			p.registry.Finalize(ctx, job, StatusFailed, &msg)
			releaseAll(items[next:], p.logger)
		}
	}()

	for i, item := range items {
		next = i + 1
		outcome := p.processItem(ctx, job.JobID, i+1, item)
		p.registry.Record(ctx, job, outcome)
	}

	p.registry.Finalize(ctx, job, StatusCompleted, nil)
	p.logger.Info("batch completed",
		"job_id", job.JobID,
		"successful", job.SuccessfulFiles,
		"failed", job.FailedFiles,
	)
}

// processItem runs one item through extract, persist, and link. Item
// failures never escape: extraction errors become item errors and
// persistence errors annotate an otherwise reported result. The item's
// file is released on every path.
func (p *Processor) processItem(ctx context.Context, jobID string, order int, item Item) Outcome {
	defer p.release(item)

	extracted, err := p.extractor.Extract(ctx, item.Path)
	if err != nil {
		p.logger.Warn("extraction failed", "job_id", jobID, "file", item.Filename, "error", err)
		return Outcome{Error: &ItemError{
			SourceFile: item.Filename,
			Message:    err.Error(),
			Timestamp:  time.Now(),
		}}
	}

	meta := manifests.ItemMeta{
		OriginalFilename: item.Filename,
		FileSizeBytes:    item.SizeBytes,
		PageCount:        item.PageCount,
		ProcessedAt:      time.Now(),
	}

	result := ItemResult{
		SourceFile:  item.Filename,
		ProcessedAt: meta.ProcessedAt,
	}

	stored, err := p.store.Store(ctx, extracted, meta)
	if err != nil {
		msg := err.Error()
		p.logger.Warn("manifest persistence failed, reporting extraction only",
			"job_id", jobID, "file", item.Filename, "error", err)
		result.StorageError = &msg
		result.Extraction = extracted
		return Outcome{Result: &result}
	}

	result.ManifestID = &stored.ID
	p.registry.LinkManifest(ctx, jobID, stored.ID, order)

	return Outcome{Result: &result}
}

func (p *Processor) release(item Item) {
	if item.Cleanup == nil {
		return
	}
	if err := item.Cleanup(); err != nil {
		p.logger.Warn("item cleanup failed", "file", item.Filename, "error", err)
	}
}

// releaseAll drops every remaining item file after a fatal batch error.
func releaseAll(items []Item, logger *slog.Logger) {
	for _, item := range items {
		if item.Cleanup == nil {
			continue
		}
		if err := item.Cleanup(); err != nil {
			logger.Warn("item cleanup failed", "file", item.Filename, "error", err)
		}
	}
}
