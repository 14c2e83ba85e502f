package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Extractor converts a raw manifest document into its structured form.
// Implementations must wrap failures in *Error so callers can attribute
// them to the source file.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Manifest, error)
}

// Error is an extraction failure attributed to a source document.
type Error struct {
	SourceFile string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.SourceFile, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// JSONExtractor decodes manifest documents already rendered as JSON in
// the collaborator contract shape. It is the default extractor; OCR or
// PDF-table extractors satisfy the same interface.
type JSONExtractor struct {
	logger *slog.Logger
}

// NewJSONExtractor creates a JSONExtractor.
func NewJSONExtractor(logger *slog.Logger) *JSONExtractor {
	return &JSONExtractor{logger: logger.With("system", "extraction")}
}

// Extract reads and decodes one manifest document.
func (e *JSONExtractor) Extract(ctx context.Context, path string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{SourceFile: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{SourceFile: path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &Error{SourceFile: path, Err: fmt.Errorf("decode manifest: %w", err)}
	}

	if m.ManifestID == "" {
		return nil, &Error{SourceFile: path, Err: fmt.Errorf("document has no manifest_id")}
	}

	e.logger.Debug("manifest extracted",
		"manifest_id", m.ManifestID,
		"deliveries", len(m.Deliveries),
	)
	return &m, nil
}
