package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/tfiliano/dt-route-planner/pkg/handlers"
	"github.com/tfiliano/dt-route-planner/pkg/routes"
)

// Handler provides HTTP endpoints for batch submission and job status.
type Handler struct {
	processor     *Processor
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a batch handler with the given upload size limit.
func NewHandler(processor *Processor, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		processor:     processor,
		logger:        logger.With("handler", "batch"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the batch endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/manifests/batch",
		Description: "Batch manifest ingestion",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "/{jobID}", Handler: h.Status},
			{Method: "DELETE", Pattern: "/{jobID}", Handler: h.Delete},
		},
	}
}

// Submit accepts one or many manifest documents, spools each to a
// temporary file, and queues the batch. The response returns
// immediately with the job id; outcome is pulled via Status.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooBig)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
		return
	}

	items := make([]Item, 0, len(headers))
	for _, header := range headers {
		item, err := h.spool(header)
		if err != nil {
			releaseAll(items, h.logger)
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		items = append(items, item)
	}

	jobID, err := h.processor.Submit(r.Context(), items)
	if err != nil {
		releaseAll(items, h.logger)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      jobID,
		"status":      StatusProcessing,
		"total_files": len(items),
	})
}

// Status returns the job view, served from memory while the job is
// live and from the durable store otherwise.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.processor.Registry().Find(r.Context(), r.PathValue("jobID"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}

// Delete releases the in-memory job entry. Idempotent; the durable
// copy remains available.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	existed := h.processor.Registry().Delete(r.PathValue("jobID"))

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"deleted": existed,
	})
}

// spool copies one uploaded file to a temporary path and captures its
// metadata. The returned item's Cleanup removes the temporary file.
func (h *Handler) spool(header *multipart.FileHeader) (Item, error) {
	if header.Size > h.maxUploadSize {
		return Item{}, fmt.Errorf("%w: %s", ErrFileTooBig, header.Filename)
	}

	file, err := header.Open()
	if err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrInvalidFile, header.Filename)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrInvalidFile, header.Filename)
	}

	tmp, err := os.CreateTemp("", "manifest-*")
	if err != nil {
		return Item{}, fmt.Errorf("spool %s: %w", header.Filename, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Item{}, fmt.Errorf("spool %s: %w", header.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Item{}, fmt.Errorf("spool %s: %w", header.Filename, err)
	}

	var pageCount *int
	if http.DetectContentType(data) == "application/pdf" {
		if pc, err := pdfPageCount(data); err != nil {
			h.logger.Warn("pdf page count failed", "file", header.Filename, "error", err)
		} else {
			pageCount = pc
		}
	}

	path := tmp.Name()
	return Item{
		Path:      path,
		Filename:  header.Filename,
		SizeBytes: header.Size,
		PageCount: pageCount,
		Cleanup:   func() error { return os.Remove(path) },
	}, nil
}

func pdfPageCount(data []byte) (*int, error) {
	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	return &count, nil
}
