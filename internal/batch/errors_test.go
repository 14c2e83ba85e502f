package batch_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tfiliano/dt-route-planner/internal/batch"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"job not found", batch.ErrJobNotFound, http.StatusNotFound},
		{"no files", batch.ErrNoFiles, http.StatusBadRequest},
		{"invalid file", batch.ErrInvalidFile, http.StatusBadRequest},
		{"file too big", batch.ErrFileTooBig, http.StatusRequestEntityTooLarge},
		{"wrapped not found", fmt.Errorf("status: %w", batch.ErrJobNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := batch.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
