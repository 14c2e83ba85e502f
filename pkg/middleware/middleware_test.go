package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tfiliano/dt-route-planner/pkg/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogger_DoesNotInterfere(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	})

	wrapped := middleware.Logger(testLogger())(handler)

	req := httptest.NewRequest("POST", "/api/manifests/batch", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if !called {
		t.Error("handler was not called")
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	if rec.Body.String() != "created" {
		t.Errorf("body = %q, want created", rec.Body.String())
	}
}

func TestTrimSlash(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantRedirect bool
		wantLocation string
	}{
		{
			name: "no trailing slash passes through",
			path: "/api/manifests",
		},
		{
			name:         "trailing slash redirects",
			path:         "/api/manifests/",
			wantRedirect: true,
			wantLocation: "/api/manifests",
		},
		{
			name: "root preserved",
			path: "/",
		},
		{
			name:         "query string retained",
			path:         "/api/deliveries/?postcode=SW1",
			wantRedirect: true,
			wantLocation: "/api/deliveries?postcode=SW1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			wrapped := middleware.TrimSlash()(handler)

			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if tt.wantRedirect {
				if rec.Code != http.StatusMovedPermanently {
					t.Fatalf("status = %d, want %d", rec.Code, http.StatusMovedPermanently)
				}
				if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
				}
				return
			}

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}
