package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/internal/batch"
	"github.com/tfiliano/dt-route-planner/internal/extraction"
	"github.com/tfiliano/dt-route-planner/internal/manifests"
)

// fakeExtractor fails for paths containing "bad" and panics for paths
// containing "panic".
type fakeExtractor struct{}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (*extraction.Manifest, error) {
	if strings.Contains(path, "panic") {
		panic("extractor exploded")
	}
	if strings.Contains(path, "bad") {
		return nil, &extraction.Error{SourceFile: path, Err: errors.New("unreadable document")}
	}
	return &extraction.Manifest{ManifestID: "MAN-" + path}, nil
}

// fakeManifestStore fails when failAll is set and otherwise returns a
// stored manifest with a fresh id.
type fakeManifestStore struct {
	mu      sync.Mutex
	failAll bool
	stored  []string
}

func (f *fakeManifestStore) Store(ctx context.Context, extracted *extraction.Manifest, meta manifests.ItemMeta) (*manifests.Manifest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return nil, &manifests.StorageError{Op: "insert manifest", Err: errors.New("connection refused")}
	}

	f.stored = append(f.stored, extracted.ManifestID)
	return &manifests.Manifest{ID: uuid.New(), ManifestRef: extracted.ManifestID}, nil
}

func testItems(paths ...string) []batch.Item {
	items := make([]batch.Item, len(paths))
	for i, path := range paths {
		items[i] = batch.Item{
			Path:     path,
			Filename: path + ".json",
		}
	}
	return items
}

func waitForTerminal(t *testing.T, r *batch.Registry, jobID string) *batch.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := r.Find(context.Background(), jobID)
		if err == nil && job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("job %s never reached a terminal status", jobID)
	return nil
}

func newTestProcessor(store *fakeManifestStore) (*batch.Processor, *fakeDurableStore) {
	durable := newFakeDurableStore()
	registry := batch.NewRegistry(durable, discardLogger())
	return batch.NewProcessor(store, &fakeExtractor{}, registry, discardLogger()), durable
}

func TestProcessor_Submit_NoFiles(t *testing.T) {
	p, _ := newTestProcessor(&fakeManifestStore{})

	_, err := p.Submit(context.Background(), nil)
	if !errors.Is(err, batch.ErrNoFiles) {
		t.Errorf("Submit() error = %v, want ErrNoFiles", err)
	}
}

func TestProcessor_MixedBatch(t *testing.T) {
	store := &fakeManifestStore{}
	p, _ := newTestProcessor(store)

	jobID, err := p.Submit(context.Background(), testItems("one", "bad-two", "three"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job := waitForTerminal(t, p.Registry(), jobID)

	if job.Status != batch.StatusCompleted {
		t.Errorf("Status = %q, want %q", job.Status, batch.StatusCompleted)
	}

	if job.ProcessedFiles != 3 || job.SuccessfulFiles != 2 || job.FailedFiles != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1",
			job.ProcessedFiles, job.SuccessfulFiles, job.FailedFiles)
	}

	if len(job.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(job.Results))
	}

	if len(job.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(job.Errors))
	}

	if job.Errors[0].SourceFile != "bad-two.json" {
		t.Errorf("Errors[0].SourceFile = %q, want bad-two.json", job.Errors[0].SourceFile)
	}

	if job.Errors[0].Message == "" {
		t.Error("Errors[0].Message is empty")
	}

	// Submission order survives the failure in the middle.
	if job.Results[0].SourceFile != "one.json" || job.Results[1].SourceFile != "three.json" {
		t.Errorf("result order = [%s %s], want [one.json three.json]",
			job.Results[0].SourceFile, job.Results[1].SourceFile)
	}

	for i, result := range job.Results {
		if result.ManifestID == nil {
			t.Errorf("Results[%d].ManifestID = nil, want stored id", i)
		}
		if result.StorageError != nil {
			t.Errorf("Results[%d].StorageError = %v, want nil", i, *result.StorageError)
		}
	}
}

func TestProcessor_StorageFailureStillReported(t *testing.T) {
	store := &fakeManifestStore{failAll: true}
	p, durable := newTestProcessor(store)

	jobID, err := p.Submit(context.Background(), testItems("one"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job := waitForTerminal(t, p.Registry(), jobID)

	if job.Status != batch.StatusCompleted {
		t.Errorf("Status = %q, want %q", job.Status, batch.StatusCompleted)
	}

	if job.SuccessfulFiles != 1 || job.FailedFiles != 0 {
		t.Errorf("counts = %d successful / %d failed, want 1/0",
			job.SuccessfulFiles, job.FailedFiles)
	}

	if len(job.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(job.Results))
	}

	result := job.Results[0]

	if result.StorageError == nil {
		t.Fatal("StorageError = nil, want annotation")
	}

	if result.ManifestID != nil {
		t.Errorf("ManifestID = %v, want nil", result.ManifestID)
	}

	if result.Extraction == nil {
		t.Error("Extraction = nil, want retained extraction")
	}

	if len(durable.links) != 0 {
		t.Errorf("manifest links = %d, want 0 when storage failed", len(durable.links))
	}
}

func TestProcessor_LinksManifestsInOrder(t *testing.T) {
	store := &fakeManifestStore{}
	p, durable := newTestProcessor(store)

	jobID, err := p.Submit(context.Background(), testItems("one", "two", "three"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	waitForTerminal(t, p.Registry(), jobID)

	durable.mu.Lock()
	defer durable.mu.Unlock()

	if len(durable.links) != 3 {
		t.Fatalf("len(links) = %d, want 3", len(durable.links))
	}

	for i, link := range durable.links {
		if link.order != i+1 {
			t.Errorf("links[%d].order = %d, want %d", i, link.order, i+1)
		}
		if link.jobID != jobID {
			t.Errorf("links[%d].jobID = %q, want %q", i, link.jobID, jobID)
		}
	}
}

func TestProcessor_PanicFinalizesFailed(t *testing.T) {
	store := &fakeManifestStore{}
	p, _ := newTestProcessor(store)

	var mu sync.Mutex
	cleaned := map[string]bool{}
	items := testItems("one", "panic-two", "three")
	for i := range items {
		name := items[i].Filename
		items[i].Cleanup = func() error {
			mu.Lock()
			defer mu.Unlock()
			cleaned[name] = true
			return nil
		}
	}

	jobID, err := p.Submit(context.Background(), items)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	job := waitForTerminal(t, p.Registry(), jobID)

	if job.Status != batch.StatusFailed {
		t.Errorf("Status = %q, want %q", job.Status, batch.StatusFailed)
	}

	if job.ErrorMessage == nil {
		t.Fatal("ErrorMessage = nil, want abort message")
	}

	if !strings.Contains(*job.ErrorMessage, "extractor exploded") {
		t.Errorf("ErrorMessage = %q, want panic value included", *job.ErrorMessage)
	}

	mu.Lock()
	defer mu.Unlock()

	for _, name := range []string{"one.json", "panic-two.json", "three.json"} {
		if !cleaned[name] {
			t.Errorf("item %s never cleaned up", name)
		}
	}
}

func TestProcessor_CleanupRunsPerItem(t *testing.T) {
	store := &fakeManifestStore{}
	p, _ := newTestProcessor(store)

	var mu sync.Mutex
	var order []string
	items := testItems("one", "bad-two")
	for i := range items {
		name := items[i].Filename
		items[i].Cleanup = func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	jobID, err := p.Submit(context.Background(), items)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	waitForTerminal(t, p.Registry(), jobID)

	mu.Lock()
	defer mu.Unlock()

	if len(order) != 2 {
		t.Fatalf("cleanup calls = %d, want 2", len(order))
	}

	want := []string{"one.json", "bad-two.json"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("cleanup[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestProcessor_JobIDIsUnique(t *testing.T) {
	store := &fakeManifestStore{}
	p, _ := newTestProcessor(store)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		jobID, err := p.Submit(context.Background(), testItems(fmt.Sprintf("file-%d", i)))
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if seen[jobID] {
			t.Fatalf("duplicate job id %s", jobID)
		}
		seen[jobID] = true
		waitForTerminal(t, p.Registry(), jobID)
	}
}
