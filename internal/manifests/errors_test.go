package manifests_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tfiliano/dt-route-planner/internal/manifests"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", manifests.ErrNotFound, http.StatusNotFound},
		{"duplicate", manifests.ErrDuplicate, http.StatusConflict},
		{"wrapped not found", fmt.Errorf("resolve: %w", manifests.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := manifests.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &manifests.StorageError{Op: "insert manifest", Err: cause}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(StorageError, cause) = false, want true")
	}

	want := "storage: insert manifest: connection reset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
