package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/internal/batch"
)

// fakeDurableStore records calls and can be forced to fail.
type fakeDurableStore struct {
	mu sync.Mutex

	failAll bool

	created   []string
	progress  []int
	finalized []*batch.Job
	links     []linkCall
	jobs      map[string]*batch.Job
}

type linkCall struct {
	jobID      string
	manifestID uuid.UUID
	order      int
}

func newFakeDurableStore() *fakeDurableStore {
	return &fakeDurableStore{jobs: make(map[string]*batch.Job)}
}

func (f *fakeDurableStore) Create(ctx context.Context, jobID string, totalFiles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errors.New("durable down")
	}

	f.created = append(f.created, jobID)
	f.jobs[jobID] = &batch.Job{
		JobID:      jobID,
		TotalFiles: totalFiles,
		Status:     batch.StatusProcessing,
		Source:     batch.SourceDurable,
	}
	return nil
}

func (f *fakeDurableStore) RecordProgress(ctx context.Context, jobID string, processed, successful, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errors.New("durable down")
	}

	f.progress = append(f.progress, processed)
	if job, ok := f.jobs[jobID]; ok {
		job.ProcessedFiles = processed
		job.SuccessfulFiles = successful
		job.FailedFiles = failed
	}
	return nil
}

func (f *fakeDurableStore) Finalize(ctx context.Context, job *batch.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errors.New("durable down")
	}

	f.finalized = append(f.finalized, job)
	if stored, ok := f.jobs[job.JobID]; ok {
		stored.Status = job.Status
		stored.ErrorMessage = job.ErrorMessage
	}
	return nil
}

func (f *fakeDurableStore) Find(ctx context.Context, jobID string) (*batch.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return nil, errors.New("durable down")
	}

	job, ok := f.jobs[jobID]
	if !ok {
		return nil, batch.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeDurableStore) LinkManifest(ctx context.Context, jobID string, manifestID uuid.UUID, order int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return errors.New("durable down")
	}

	f.links = append(f.links, linkCall{jobID: jobID, manifestID: manifestID, order: order})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistry_WritesBothStores(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurableStore()
	r := batch.NewRegistry(durable, discardLogger())

	job := r.Create(ctx, "job-1", 2)
	r.Record(ctx, job, batch.Outcome{Result: &batch.ItemResult{SourceFile: "a.json"}})
	r.Finalize(ctx, job, batch.StatusCompleted, nil)

	if len(durable.created) != 1 || durable.created[0] != "job-1" {
		t.Errorf("durable created = %v, want [job-1]", durable.created)
	}

	if len(durable.progress) != 1 || durable.progress[0] != 1 {
		t.Errorf("durable progress = %v, want [1]", durable.progress)
	}

	if len(durable.finalized) != 1 {
		t.Fatalf("durable finalized = %d calls, want 1", len(durable.finalized))
	}

	if durable.finalized[0].Status != batch.StatusCompleted {
		t.Errorf("finalized status = %q, want %q", durable.finalized[0].Status, batch.StatusCompleted)
	}
}

func TestRegistry_DurableFailuresSwallowed(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurableStore()
	durable.failAll = true
	r := batch.NewRegistry(durable, discardLogger())

	job := r.Create(ctx, "job-1", 1)
	if job == nil {
		t.Fatal("Create() = nil despite durable failure")
	}

	job = r.Record(ctx, job, batch.Outcome{Result: &batch.ItemResult{}})
	if job == nil || job.ProcessedFiles != 1 {
		t.Fatalf("Record() = %+v, want processed 1", job)
	}

	job = r.Finalize(ctx, job, batch.StatusCompleted, nil)
	if job == nil || job.Status != batch.StatusCompleted {
		t.Fatalf("Finalize() = %+v, want completed", job)
	}

	found, err := r.Find(ctx, "job-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if found.Status != batch.StatusCompleted {
		t.Errorf("Find() status = %q, want %q", found.Status, batch.StatusCompleted)
	}
}

func TestRegistry_DeleteDoesNotStallDurableWrites(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurableStore()
	r := batch.NewRegistry(durable, discardLogger())

	job := r.Create(ctx, "job-1", 2)
	r.Delete("job-1")

	r.Record(ctx, job, batch.Outcome{Result: &batch.ItemResult{SourceFile: "a.json"}})
	r.Record(ctx, job, batch.Outcome{Error: &batch.ItemError{SourceFile: "b.json", Message: "bad payload"}})
	r.Finalize(ctx, job, batch.StatusCompleted, nil)

	if len(durable.progress) != 2 || durable.progress[0] != 1 || durable.progress[1] != 2 {
		t.Errorf("durable progress = %v, want [1 2]", durable.progress)
	}

	if len(durable.finalized) != 1 {
		t.Fatalf("durable finalized = %d calls, want 1", len(durable.finalized))
	}

	final := durable.finalized[0]
	if final.Status != batch.StatusCompleted {
		t.Errorf("finalized status = %q, want %q", final.Status, batch.StatusCompleted)
	}

	if final.SuccessfulFiles != 1 || final.FailedFiles != 1 {
		t.Errorf("finalized counts = %d successful / %d failed, want 1/1",
			final.SuccessfulFiles, final.FailedFiles)
	}

	if len(final.Results) != 1 || len(final.Errors) != 1 {
		t.Errorf("finalized results = %d, errors = %d, want 1/1",
			len(final.Results), len(final.Errors))
	}

	found, err := r.Find(ctx, "job-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if found.Source != batch.SourceDurable || found.Status != batch.StatusCompleted {
		t.Errorf("Find() = %q from %q, want %q from %q",
			found.Status, found.Source, batch.StatusCompleted, batch.SourceDurable)
	}
}

func TestRegistry_Find_PrefersMemory(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurableStore()
	r := batch.NewRegistry(durable, discardLogger())

	r.Create(ctx, "job-1", 1)

	job, err := r.Find(ctx, "job-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if job.Source != batch.SourceMemory {
		t.Errorf("Source = %q, want %q", job.Source, batch.SourceMemory)
	}
}

func TestRegistry_Find_FallsBackToDurable(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurableStore()
	r := batch.NewRegistry(durable, discardLogger())

	r.Create(ctx, "job-1", 1)
	r.Delete("job-1")

	job, err := r.Find(ctx, "job-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if job.Source != batch.SourceDurable {
		t.Errorf("Source = %q, want %q", job.Source, batch.SourceDurable)
	}
}

func TestRegistry_Find_Unknown(t *testing.T) {
	r := batch.NewRegistry(newFakeDurableStore(), discardLogger())

	_, err := r.Find(context.Background(), "absent")
	if !errors.Is(err, batch.ErrJobNotFound) {
		t.Errorf("Find() error = %v, want ErrJobNotFound", err)
	}
}

func TestRegistry_Delete_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurableStore()
	r := batch.NewRegistry(durable, discardLogger())

	r.Create(ctx, "job-1", 1)

	if !r.Delete("job-1") {
		t.Error("Delete() = false, want true")
	}

	if r.Delete("job-1") {
		t.Error("second Delete() = true, want false")
	}

	if _, ok := durable.jobs["job-1"]; !ok {
		t.Error("durable copy removed by delete, want untouched")
	}
}
